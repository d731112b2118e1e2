//go:build wasip1

// Command molang-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON request on stdin → single JSON response on stdout.
//
//	stdin:  { "op": "check", "source": "<molang>", "options": { ... } }
//	stdout: { "ok": true, "output": "...", "diagnostics": [ ... ] }
//
// The exit code is 1 when the response is not ok.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o molang.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"op":"format","source":"v.x=1;return v.x"}' | wasmtime molang.wasm
package main

import (
	"encoding/json"
	"os"

	"github.com/sandrolain/gomolang/internal/wire"
)

func writeResponse(r wire.Response) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	if !r.OK {
		os.Exit(1)
	}
	os.Exit(0)
}

func main() {
	var req wire.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(wire.Response{Error: "invalid request JSON: " + err.Error()})
	}
	writeResponse(wire.Handle(req))
}
