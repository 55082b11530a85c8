package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/praetorian-inc/posjson/pkg/layout"
	"github.com/praetorian-inc/posjson/pkg/parser"
	"github.com/praetorian-inc/posjson/pkg/store"
	"github.com/praetorian-inc/posjson/pkg/types"
	"golang.org/x/sync/errgroup"
)

var (
	// cachedBuiltinLayouts holds builtin layouts loaded once per process
	cachedBuiltinLayouts types.LayoutSet
	cachedLayoutsErr     error
	cacheOnce            sync.Once
)

// loadBuiltinLayoutsCached loads builtin layouts once and caches them
func loadBuiltinLayoutsCached() (types.LayoutSet, error) {
	cacheOnce.Do(func() {
		loader := layout.NewLoader()
		cachedBuiltinLayouts, cachedLayoutsErr = loader.LoadBuiltinLayouts()
	})
	return cachedBuiltinLayouts, cachedLayoutsErr
}

// Config configures a Core.
type Config struct {
	// Layouts used for every parse. Nil loads the builtin layouts.
	Layouts types.LayoutSet
	// Store receives every parsed document. Nil creates an in-memory store
	// unless NoStore is set.
	Store store.Store
	// NoStore parses without recording anything. Long-lived callers that
	// never read documents back set it so memory does not grow per parse.
	NoStore bool
	// Logger receives debug output. Nil discards it.
	Logger DebugLogger
	// Concurrency bounds ParseBatch (0 = NumCPU).
	Concurrency int
}

// Core wraps the layouts and store for parse operations
type Core struct {
	layouts     types.LayoutSet
	store       store.Store
	logger      DebugLogger
	concurrency int
}

// NewCore creates a new Core with the given layouts
// layoutsJSON can be:
// - "" or "builtin" to load builtin layouts (cached)
// - JSON string with custom layouts array
func NewCore(layoutsJSON string, logger DebugLogger) (*Core, error) {
	if logger == nil {
		logger = NoopLogger{}
	}

	layouts, err := LayoutsFromJSON(layoutsJSON, logger)
	if err != nil {
		return nil, err
	}
	return New(Config{Layouts: layouts, Logger: logger})
}

// LayoutsFromJSON decodes a custom layouts array. Field types may be
// descriptor text such as "Decimal" or "Sim/Não". It returns nil, meaning
// builtin layouts, for "" or "builtin".
func LayoutsFromJSON(layoutsJSON string, logger DebugLogger) (types.LayoutSet, error) {
	if logger == nil {
		logger = NoopLogger{}
	}
	if layoutsJSON == "" || layoutsJSON == "builtin" {
		return nil, nil
	}

	logger.Log("Parsing custom layouts JSON...")
	list, err := layout.LoadLayoutsJSON([]byte(layoutsJSON))
	if err != nil {
		logger.Log("LoadLayoutsJSON failed: %v", err)
		return nil, fmt.Errorf("parsing layouts JSON: %w", err)
	}
	layouts := types.NewLayoutSet(list...)
	logger.Log("Parsed %d custom layouts", len(layouts))
	return layouts, nil
}

// New creates a Core from a Config.
func New(cfg Config) (*Core, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = NoopLogger{}
	}

	logger.Log("NewCore starting...")

	layouts := cfg.Layouts
	if layouts == nil {
		logger.Log("Loading builtin layouts (cached)...")
		var err error
		layouts, err = loadBuiltinLayoutsCached()
		if err != nil {
			logger.Log("loadBuiltinLayoutsCached failed: %v", err)
			return nil, fmt.Errorf("loading builtin layouts: %w", err)
		}
	}
	logger.Log("Using %d layouts: %v", len(layouts), layouts.Discriminators())

	s := cfg.Store
	if s == nil && !cfg.NoStore {
		// Create in-memory store
		var err error
		s, err = store.New(store.Config{Path: ":memory:"})
		if err != nil {
			logger.Log("store.New failed: %v", err)
			return nil, err
		}
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}

	logger.Log("NewCore complete")
	return &Core{
		layouts:     layouts,
		store:       s,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Layouts returns the layouts this core parses with
func (c *Core) Layouts() types.LayoutSet {
	return c.layouts
}

// Store returns the store parse runs are recorded in, or nil when the core
// was built with NoStore.
func (c *Core) Store() store.Store {
	return c.store
}

// Parse parses a single content string
func (c *Core) Parse(content, source string) (*ParseOutput, error) {
	return c.ParseDocument(content, types.InlineProvenance{Source: source})
}

// ParseDocument parses decoded feed text and records the document and its
// result in the store, if there is one.
func (c *Core) ParseDocument(text string, prov types.Provenance) (*ParseOutput, error) {
	res := parser.Parse(text, c.layouts)
	doc := types.NewDocument(text, prov, res)

	c.logger.Log("Parsed %s: %d lines, %d headers, %d violations",
		prov.Path(), doc.Stats.Lines, doc.Stats.Headers, doc.Stats.Violations)

	if c.store == nil {
		return newParseOutput(prov, doc, res), nil
	}
	if err := c.store.AddDocument(doc); err != nil {
		return nil, fmt.Errorf("storing document %s: %w", prov.Path(), err)
	}
	if err := c.store.AddResult(doc.ID, res); err != nil {
		return nil, fmt.Errorf("storing result for %s: %w", prov.Path(), err)
	}

	return newParseOutput(prov, doc, res), nil
}

func newParseOutput(prov types.Provenance, doc *types.Document, res *types.ParseResult) *ParseOutput {
	return &ParseOutput{
		Source:      prov.Path(),
		DocumentID:  doc.ID,
		Stats:       doc.Stats,
		ParseResult: res,
	}
}

// ParseBatch parses multiple content items concurrently. Items that fail
// are reported in Failures; results keep input order.
func (c *Core) ParseBatch(ctx context.Context, items []ContentItem) (*BatchParseResult, error) {
	outputs := make([]*ParseOutput, len(items))
	errs := make([]error, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outputs[i], errs[i] = c.Parse(item.Content, item.Source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &BatchParseResult{
		Results:  []*ParseOutput{},
		Failures: []BatchFailure{},
	}
	for i, out := range outputs {
		if errs[i] != nil {
			batch.Failures = append(batch.Failures, BatchFailure{Source: items[i].Source, Error: errs[i].Error()})
			continue
		}
		batch.Results = append(batch.Results, out)
		addStats(&batch.Totals, out.Stats)
	}
	return batch, nil
}

// Close releases core resources
func (c *Core) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// GetBuiltinLayouts returns the built-in layouts (cached)
func GetBuiltinLayouts() (types.LayoutSet, error) {
	return loadBuiltinLayoutsCached()
}
