//go:build wasm

package main

import (
	"context"
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/praetorian-inc/posjson/pkg/engine"
	"github.com/praetorian-inc/posjson/pkg/enum"
)

var (
	parsers   = make(map[int]*engine.Core)
	parsersMu sync.RWMutex
	nextID    int
)

func errorResult(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

func lookup(handle int) (*engine.Core, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	core, ok := parsers[handle]
	return core, ok
}

// newParser creates a parser with the given layouts JSON.
// JS: PosjsonNewParser(layoutsJSON) -> {handle} or {error}
func newParser(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("layoutsJSON argument required")
	}

	core, err := newCore(args[0].String())
	if err != nil {
		return errorResult("failed to create parser: " + err.Error())
	}

	parsersMu.Lock()
	id := nextID
	nextID++
	parsers[id] = core
	parsersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

// newCore builds a core that keeps nothing between parses; the page never
// reads stored documents back.
func newCore(layoutsJSON string) (*engine.Core, error) {
	layouts, err := engine.LayoutsFromJSON(layoutsJSON, engine.NoopLogger{})
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{Layouts: layouts, Logger: engine.NoopLogger{}, NoStore: true})
}

// parse parses already-decoded feed text.
// JS: PosjsonParse(handle, content, source) -> JSON result or {error}
func parse(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and content arguments required")
	}

	source := ""
	if len(args) > 2 {
		source = args[2].String()
	}
	return parseText(args[0].Int(), args[1].String(), source)
}

// parseBytes decodes the raw bytes of an uploaded file and parses them,
// which is what reading the file as latin1 in the page did.
// JS: PosjsonParseBytes(handle, uint8Array, encoding, source) -> JSON result or {error}
func parseBytes(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and bytes arguments required")
	}

	content := make([]byte, args[1].Length())
	js.CopyBytesToGo(content, args[1])

	encoding := ""
	if len(args) > 2 {
		encoding = args[2].String()
	}
	source := ""
	if len(args) > 3 {
		source = args[3].String()
	}

	text, err := enum.DecodeText(content, encoding)
	if err != nil {
		return errorResult("decode failed: " + err.Error())
	}
	return parseText(args[0].Int(), text, source)
}

func parseText(handle int, text, source string) interface{} {
	core, ok := lookup(handle)
	if !ok {
		return errorResult("invalid parser handle")
	}

	result, err := core.Parse(text, source)
	if err != nil {
		return errorResult("parse failed: " + err.Error())
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return errorResult("failed to marshal result: " + err.Error())
	}
	return string(jsonBytes)
}

// parseBatch parses multiple feeds.
// JS: PosjsonParseBatch(handle, itemsJSON) -> JSON results or {error}
func parseBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and itemsJSON arguments required")
	}

	core, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid parser handle")
	}

	var items []engine.ContentItem
	if err := json.Unmarshal([]byte(args[1].String()), &items); err != nil {
		return errorResult("failed to parse items JSON: " + err.Error())
	}

	batch, err := core.ParseBatch(context.Background(), items)
	if err != nil {
		return errorResult("batch parse failed: " + err.Error())
	}

	jsonBytes, err := json.Marshal(batch)
	if err != nil {
		return errorResult("failed to marshal results: " + err.Error())
	}
	return string(jsonBytes)
}

// closeParser releases a parser.
// JS: PosjsonCloseParser(handle)
func closeParser(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("handle argument required")
	}

	handle := args[0].Int()

	parsersMu.Lock()
	core, ok := parsers[handle]
	if ok {
		delete(parsers, handle)
	}
	parsersMu.Unlock()

	if !ok {
		return errorResult("invalid parser handle")
	}

	core.Close()
	return nil
}

// getBuiltinLayouts returns the builtin layouts as JSON.
// JS: PosjsonGetBuiltinLayouts() -> JSON layouts array
func getBuiltinLayouts(this js.Value, args []js.Value) interface{} {
	set, err := engine.GetBuiltinLayouts()
	if err != nil {
		return errorResult("failed to load builtin layouts: " + err.Error())
	}

	jsonBytes, err := json.Marshal(set.Layouts())
	if err != nil {
		return errorResult("failed to marshal layouts: " + err.Error())
	}
	return string(jsonBytes)
}
