package modules

import (
	"strings"

	"github.com/cuemby/corenode/pkg/hash"
)

const (
	wasmSuffix   = ".wasm"
	configSuffix = "_config.toml"
	tomlSuffix   = ".toml"
)

func moduleFileName(h hash.Hash) string {
	return h.Hex() + wasmSuffix
}

func moduleConfigName(h hash.Hash) string {
	return h.Hex() + configSuffix
}

func blueprintFileName(id string) string {
	return id + tomlSuffix
}

func isModuleWasm(name string) bool {
	return strings.HasSuffix(name, wasmSuffix)
}

// extractModuleFileName returns the filename stem of a .wasm file, or ok=false
// if name doesn't look like a module binary.
func extractModuleFileName(name string) (stem string, ok bool) {
	if !isModuleWasm(name) {
		return "", false
	}
	return strings.TrimSuffix(name, wasmSuffix), true
}

func isBlueprintFile(name string) bool {
	return strings.HasSuffix(name, tomlSuffix)
}
