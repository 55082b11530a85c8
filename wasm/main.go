//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("PosjsonNewParser", js.FuncOf(newParser))
	js.Global().Set("PosjsonParse", js.FuncOf(parse))
	js.Global().Set("PosjsonParseBytes", js.FuncOf(parseBytes))
	js.Global().Set("PosjsonParseBatch", js.FuncOf(parseBatch))
	js.Global().Set("PosjsonCloseParser", js.FuncOf(closeParser))
	js.Global().Set("PosjsonGetBuiltinLayouts", js.FuncOf(getBuiltinLayouts))

	// Keep WASM running
	<-make(chan struct{})
}
