package posjson

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/praetorian-inc/posjson/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayouts() LayoutSet {
	scale := 2
	return types.NewLayoutSet(
		&types.Layout{Discriminator: "1", Kind: types.KindHeader, Fields: []types.FieldDescriptor{
			{Name: "nota", Type: types.TypeCharacter, Required: true, StartOffset: 2, EndOffset: 5},
		}},
		&types.Layout{Discriminator: "2", Kind: types.KindLineItem, Fields: []types.FieldDescriptor{
			{Name: "desc", Type: types.TypeCharacter, StartOffset: 2, EndOffset: 6},
			{Name: "valor", Type: types.TypeDecimal, DecimalScale: &scale, StartOffset: 7, EndOffset: 10},
		}},
	)
}

func TestNewParser(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "4", "8"}, p.Layouts().Discriminators())
}

func TestNewParser_InvalidOptions(t *testing.T) {
	_, err := NewParser(WithEncoding("klingon"))
	assert.Error(t, err)

	_, err = NewParser(WithLayoutDir("/nonexistent/layouts"))
	assert.Error(t, err)

	_, err = NewParser(WithLayouts(types.NewLayoutSet()))
	assert.Error(t, err, "an empty layout set cannot parse anything")
}

func TestParseString(t *testing.T) {
	p, err := NewParser(WithLayouts(testLayouts()))
	require.NoError(t, err)

	res := p.ParseString("1N001\n2CAFE 1250\n1\n")

	require.Len(t, res.Result, 2)
	nota, ok := res.Result[0].Fields.Get("nota")
	require.True(t, ok)
	assert.Equal(t, "N001", nota)

	require.Len(t, res.Result[0].LineItems, 1)
	valor, _ := res.Result[0].LineItems[0].Fields.Get("valor")
	require.IsType(t, Amount{}, valor)
	assert.Equal(t, "12.5", valor.(Amount).String())

	require.Len(t, res.Errors, 1)
	assert.Equal(t, FieldViolation{LineNumber: 3, FieldName: "nota", Reason: types.ReasonRequiredMissing}, res.Errors[0])
	assert.Len(t, res.RawLines, 4)
}

func TestParseString_Empty(t *testing.T) {
	p, err := NewParser(WithLayouts(testLayouts()))
	require.NoError(t, err)

	res := p.ParseString("")
	assert.NotNil(t, res.Result)
	assert.Empty(t, res.Result)
	assert.Empty(t, res.RawLines)
	assert.Empty(t, res.Errors)
}

func TestParseBytes_Latin1(t *testing.T) {
	p, err := NewParser(WithLayouts(testLayouts()))
	require.NoError(t, err)

	// 0xC7 is Ç in latin1
	res, err := p.ParseBytes([]byte("1N001\n2A\xc7AO 0100\n"))
	require.NoError(t, err)

	desc, _ := res.Result[0].LineItems[0].Fields.Get("desc")
	assert.Equal(t, "AÇAO", desc)
}

func TestParseFile(t *testing.T) {
	p, err := NewParser(WithLayouts(testLayouts()), WithEncoding("utf-8"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "feed.txt")
	require.NoError(t, os.WriteFile(path, []byte("1N001\r\n1N002\r\n"), 0644))

	res, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, res.Result, 2)
	assert.Equal(t, "1N002", res.RawLines[1].Text, "CR is stripped")

	_, err = p.ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestWithLayoutDir(t *testing.T) {
	dir := t.TempDir()
	yml := `layouts:
  - record_type: "1"
    fields:
      - {name: nota, type: Caracter, start: 2, end: 5}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nota.yml"), []byte(yml), 0644))

	p, err := NewParser(WithLayoutDir(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, p.Layouts().Discriminators())

	set, err := LoadLayoutsFromPath(dir)
	require.NoError(t, err)
	assert.Len(t, set, 1)
}

func TestParser_ConcurrentUse(t *testing.T) {
	p, err := NewParser(WithLayouts(testLayouts()))
	require.NoError(t, err)

	feed := strings.Repeat("1N001\n2ITEM 0100\n", 50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := p.ParseString(feed)
			assert.Len(t, res.Result, 50)
		}()
	}
	wg.Wait()
}
