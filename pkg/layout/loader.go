package layout

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/praetorian-inc/posjson/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader handles loading layouts from descriptor files.
type Loader struct {
	fs fs.FS // embedded filesystem for built-in layouts
}

// NewLoader creates a loader with built-in layouts from embedded filesystem.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinLayoutsFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem. The filesystem
// must hold its YAML layouts under "layouts/".
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// LoadLayout loads a single layout from YAML bytes.
// Returns error if YAML is invalid or multiple layouts are present.
func (l *Loader) LoadLayout(data []byte) (*types.Layout, error) {
	layouts, err := l.LoadLayouts(data)
	if err != nil {
		return nil, err
	}
	if len(layouts) > 1 {
		return nil, fmt.Errorf("expected single layout, found %d", len(layouts))
	}
	return layouts[0], nil
}

// LoadLayouts loads every layout in a YAML document.
func (l *Loader) LoadLayouts(data []byte) ([]*types.Layout, error) {
	var yamlFile yamlLayoutsFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(yamlFile.Layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in YAML")
	}

	layouts := make([]*types.Layout, 0, len(yamlFile.Layouts))
	for _, yl := range yamlFile.Layouts {
		layout, err := convertYAMLLayout(yl)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

// LoadLayoutFile loads layouts from a descriptor file, chosen by extension:
// .yml/.yaml (layouts document), .json (generator array), .csv or .xlsx
// (descriptor sheet). For the last three the record type comes from a
// "tipo<X>" token in the file name.
func (l *Loader) LoadLayoutFile(path string) ([]*types.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" || ext == ".yaml" {
		layouts, err := l.LoadLayouts(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return layouts, nil
	}

	disc := DiscriminatorFromName(path)
	if disc == "" {
		return nil, fmt.Errorf("cannot infer record type from file name %s (expected tipo<X>)", filepath.Base(path))
	}

	var layout *types.Layout
	switch ext {
	case ".json":
		layout, err = LoadGeneratorJSON(data, disc)
	case ".csv":
		layout, err = LoadCSV(strings.NewReader(string(data)), disc)
	case ".xlsx":
		layout, err = LoadXLSX(data, disc)
	default:
		return nil, fmt.Errorf("unsupported layout file extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return []*types.Layout{layout}, nil
}

// LoadDir loads every descriptor file in dir (non-recursive) into a set.
func (l *Loader) LoadDir(dir string) (types.LayoutSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading layout directory %s: %w", dir, err)
	}

	set := types.LayoutSet{}
	for _, e := range entries {
		if e.IsDir() || !isLayoutFile(e.Name()) {
			continue
		}
		layouts, err := l.LoadLayoutFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		for _, layout := range layouts {
			set[layout.Discriminator] = layout
		}
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no layout files found in %s", dir)
	}
	return set, nil
}

// LoadPath loads a single descriptor file or a directory of them.
func (l *Loader) LoadPath(path string) (types.LayoutSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("layout path not found: %s", path)
	}
	if info.IsDir() {
		return l.LoadDir(path)
	}
	layouts, err := l.LoadLayoutFile(path)
	if err != nil {
		return nil, err
	}
	return types.NewLayoutSet(layouts...), nil
}

// LoadBuiltinLayouts loads all built-in layouts from embedded filesystem.
func (l *Loader) LoadBuiltinLayouts() (types.LayoutSet, error) {
	set := types.LayoutSet{}

	err := fs.WalkDir(l.fs, "layouts", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		layouts, err := l.LoadLayouts(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, layout := range layouts {
			set[layout.Discriminator] = layout
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return set, nil
}

// LoadGeneratorJSON loads the JSON array format produced from descriptor
// sheets. Entries without a field name are skipped.
func LoadGeneratorJSON(data []byte, discriminator string) (*types.Layout, error) {
	var rows []generatorField
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	layout := newLayout(discriminator)
	for _, row := range rows {
		if strings.TrimSpace(row.Campo) == "" {
			continue
		}
		// decimais 0 means unset, as in the descriptor sheets
		decimals := floatToIntPtr(row.Decimais)
		if decimals != nil && *decimals == 0 {
			decimals = nil
		}
		layout.Fields = append(layout.Fields, descriptor(
			row.Campo, row.Descricao, row.Tipo,
			decimals, row.Obrigatorio,
			floatToInt(row.Inicio), floatToInt(row.Fim),
		))
	}

	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// LoadLayoutsJSON loads a JSON array of layouts as produced by marshaling
// types.Layout. Field types go through Classify unless they are canonical
// names, and a missing kind resolves from the discriminator.
func LoadLayoutsJSON(data []byte) ([]*types.Layout, error) {
	var list []jsonLayout
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	layouts := make([]*types.Layout, 0, len(list))
	for _, jl := range list {
		layout := &types.Layout{
			Discriminator: jl.Discriminator,
			Title:         jl.Title,
			Fields:        []types.FieldDescriptor{},
		}
		if err := layout.Kind.UnmarshalText([]byte(jl.Kind)); err != nil {
			return nil, fmt.Errorf("layout %q: %w", jl.Discriminator, err)
		}

		for _, jf := range jl.Fields {
			if strings.TrimSpace(jf.Name) == "" {
				continue
			}
			fd := descriptor(jf.Name, jf.Description, jf.Type, jf.DecimalScale, jf.Required, jf.StartOffset, jf.EndOffset)
			var canonical types.SemanticType
			if err := canonical.UnmarshalText([]byte(jf.Type)); err == nil {
				fd.Type = canonical
				fd.RawType = strings.TrimSpace(jf.RawType)
			}
			layout.Fields = append(layout.Fields, fd)
		}

		if err := ValidateLayout(layout); err != nil {
			return nil, err
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

var tipoRe = regexp.MustCompile(`(?i)tipo[-_ ]?([0-9a-z])(?:[^0-9a-z]|$)`)

// DiscriminatorFromName extracts the record type from names like
// "layout-txt-integracao-datasul-tipo1.json".
func DiscriminatorFromName(path string) string {
	m := tipoRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return ""
	}
	return m[1]
}

// =============================================================================
// HELPERS
// =============================================================================

func isLayoutFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml", ".json", ".csv", ".xlsx":
		return true
	}
	return false
}

// convertYAMLLayout converts yamlLayout to types.Layout and validates it.
func convertYAMLLayout(yl yamlLayout) (*types.Layout, error) {
	layout := newLayout(yl.RecordType)
	if yl.Title != "" {
		layout.Title = yl.Title
	}
	if yl.Kind != "" {
		if err := layout.Kind.UnmarshalText([]byte(yl.Kind)); err != nil {
			return nil, fmt.Errorf("layout %q: %w", yl.RecordType, err)
		}
	}

	for _, yf := range yl.Fields {
		if strings.TrimSpace(yf.Name) == "" {
			continue
		}
		layout.Fields = append(layout.Fields, descriptor(
			yf.Name, yf.Description, yf.Type, yf.Decimals, yf.Required, yf.Start, yf.End,
		))
	}

	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	return layout, nil
}

func newLayout(discriminator string) *types.Layout {
	return &types.Layout{
		Discriminator: discriminator,
		Title:         "Registro " + discriminator,
		Kind:          types.DefaultKind(discriminator),
		Fields:        []types.FieldDescriptor{},
	}
}

func descriptor(name, description, rawType string, decimals *int, required bool, start, end int) types.FieldDescriptor {
	return types.FieldDescriptor{
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(description),
		Type:         Classify(rawType),
		RawType:      strings.TrimSpace(rawType),
		DecimalScale: decimals,
		Required:     required,
		StartOffset:  start,
		EndOffset:    end,
	}
}

func floatToInt(f *float64) int {
	if f == nil {
		return 0
	}
	return int(*f)
}

func floatToIntPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}
