//go:build js && wasm

// Command molang-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `molang` object with the following API:
//
//	molang.version()                 → string
//	molang.parse(source, options?)   → responseJSON
//	molang.format(source, options?)  → responseJSON
//	molang.check(source, options?)   → responseJSON
//
// options is an optional JSON string, e.g. '{"minify":true}'. Every function
// returns the JSON response described in internal/wire and throws only on
// malformed calls.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o molang.wasm ./cmd/wasm/js/
//
// Usage in the browser:
//
//	<script src="wasm_exec.js"></script>
//	<script>
//	  const go = new Go()
//	  WebAssembly.instantiateStreaming(fetch('molang.wasm'), go.importObject)
//	    .then(r => { go.run(r.instance); console.log(molang.format('v.x=1', '{}')) })
//	</script>
package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/internal/wire"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

// operation returns the JS binding of one wire operation.
func operation(op string) js.Func {
	return js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			jsThrow(fmt.Sprintf("molang.%s requires a source string", op))
		}
		req := wire.Request{Op: op, Source: args[0].String()}
		if len(args) > 1 && args[1].Type() == js.TypeString {
			if err := json.Unmarshal([]byte(args[1].String()), &req.Options); err != nil {
				jsThrow(fmt.Sprintf("molang.%s: invalid options JSON: %v", op, err))
			}
		}

		out, err := json.Marshal(wire.Handle(req))
		if err != nil {
			jsThrow(fmt.Sprintf("molang.%s: marshal response: %v", op, err))
		}
		return string(out)
	})
}

func main() {
	api := map[string]interface{}{
		"parse":  operation(wire.OpParse),
		"format": operation(wire.OpFormat),
		"check":  operation(wire.OpCheck),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return gomolang.Version()
		}),
	}
	js.Global().Set("molang", js.ValueOf(api))

	// Block forever; the JS event loop owns execution from here.
	select {}
}
