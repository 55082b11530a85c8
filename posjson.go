// Package posjson converts positional ERP integration feeds into nested
// records.
//
// A feed is a text file of fixed-width lines. The first character of each
// line selects a layout that says which columns hold which fields; decoded
// lines are assembled into headers that own their line items, item details,
// and installments. The Datasul invoice layouts (record types 1, 2, 4 and 8)
// are built in.
//
// # Basic Usage
//
//	p, err := posjson.NewParser()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := p.ParseFile("NOTAS.TXT")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, h := range res.Result {
//	    nota, _ := h.Fields.Get("nr-nota-fis")
//	    fmt.Println(nota, len(h.LineItems))
//	}
//	for _, v := range res.Errors {
//	    fmt.Printf("line %d: %s %s\n", v.LineNumber, v.FieldName, v.Reason)
//	}
//
// # Custom Layouts
//
// Layout descriptors can be YAML, the layout generator's JSON, or the
// descriptor spreadsheets themselves (CSV or XLSX named tipo<X>):
//
//	p, err := posjson.NewParser(posjson.WithLayoutDir("./layouts"))
package posjson

import (
	"fmt"
	"os"

	"github.com/praetorian-inc/posjson/pkg/enum"
	"github.com/praetorian-inc/posjson/pkg/layout"
	"github.com/praetorian-inc/posjson/pkg/parser"
	"github.com/praetorian-inc/posjson/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/posjson" without subpackages.
type (
	// ParseResult is the record tree, raw lines, and field violations of one feed.
	ParseResult = types.ParseResult

	// HeaderRecord is a type 1 record with its children.
	HeaderRecord = types.HeaderRecord

	// LineItemRecord is a type 2 record with its details.
	LineItemRecord = types.LineItemRecord

	// DetailRecord is a type 8 record.
	DetailRecord = types.DetailRecord

	// InstallmentRecord is a type 4 record.
	InstallmentRecord = types.InstallmentRecord

	// Fields is an ordered field-name to value mapping.
	Fields = types.Fields

	// FieldViolation reports a required field that decoded empty.
	FieldViolation = types.FieldViolation

	// RawLine echoes one input line.
	RawLine = types.RawLine

	// Layout describes the columns of one record type.
	Layout = types.Layout

	// LayoutSet maps record type characters to layouts.
	LayoutSet = types.LayoutSet

	// FieldDescriptor describes one column range of a layout.
	FieldDescriptor = types.FieldDescriptor

	// Amount is an exact fixed-point decimal value.
	Amount = types.Amount
)

// Parser decodes feeds with a fixed set of layouts. It holds no per-parse
// state and is safe for concurrent use.
type Parser struct {
	layouts  types.LayoutSet
	encoding string
}

type parserConfig struct {
	layouts   types.LayoutSet
	layoutDir string
	encoding  string
}

// Option configures a Parser.
type Option func(*parserConfig)

// WithLayouts parses with the given layouts instead of the builtin set.
func WithLayouts(layouts LayoutSet) Option {
	return func(c *parserConfig) {
		c.layouts = layouts
	}
}

// WithLayoutDir loads layouts from a file or directory of layout
// descriptors instead of the builtin set.
func WithLayoutDir(path string) Option {
	return func(c *parserConfig) {
		c.layoutDir = path
	}
}

// WithEncoding sets the charset ParseBytes and ParseFile decode with.
// Default is latin1.
func WithEncoding(label string) Option {
	return func(c *parserConfig) {
		c.encoding = label
	}
}

// NewParser creates a Parser. By default it uses the builtin Datasul layouts
// and decodes bytes as latin1.
func NewParser(opts ...Option) (*Parser, error) {
	config := &parserConfig{
		encoding: enum.DefaultEncoding,
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := enum.ValidateEncoding(config.encoding); err != nil {
		return nil, err
	}

	layouts := config.layouts
	switch {
	case layouts != nil:
	case config.layoutDir != "":
		var err error
		layouts, err = layout.NewLoader().LoadPath(config.layoutDir)
		if err != nil {
			return nil, fmt.Errorf("loading layouts: %w", err)
		}
	default:
		var err error
		layouts, err = LoadBuiltinLayouts()
		if err != nil {
			return nil, err
		}
	}

	if err := layout.ValidateLayoutSet(layouts); err != nil {
		return nil, fmt.Errorf("validating layouts: %w", err)
	}

	return &Parser{layouts: layouts, encoding: config.encoding}, nil
}

// ParseString parses already-decoded feed text. It never fails; problems
// with individual fields are reported in the result's Errors.
func (p *Parser) ParseString(text string) *ParseResult {
	return parser.Parse(text, p.layouts)
}

// ParseBytes decodes content with the parser's encoding and parses it.
func (p *Parser) ParseBytes(content []byte) (*ParseResult, error) {
	text, err := enum.DecodeText(content, p.encoding)
	if err != nil {
		return nil, err
	}
	return p.ParseString(text), nil
}

// ParseFile reads, decodes and parses a feed file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return p.ParseBytes(content)
}

// Layouts returns the layouts the parser decodes with.
func (p *Parser) Layouts() LayoutSet {
	return p.layouts
}

// LoadBuiltinLayouts returns the builtin Datasul layouts.
func LoadBuiltinLayouts() (LayoutSet, error) {
	set, err := layout.NewLoader().LoadBuiltinLayouts()
	if err != nil {
		return nil, fmt.Errorf("loading builtin layouts: %w", err)
	}
	return set, nil
}

// LoadLayoutsFromPath loads layouts from a descriptor file or directory.
// Use this with WithLayouts to adjust layouts before parsing.
func LoadLayoutsFromPath(path string) (LayoutSet, error) {
	return layout.NewLoader().LoadPath(path)
}
