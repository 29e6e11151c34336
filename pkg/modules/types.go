package modules

import (
	"encoding/json"

	"github.com/cuemby/corenode/pkg/hash"
)

// ModuleConfig is the structured configuration persisted alongside a
// module's binary: a logical name plus an opaque payload.
type ModuleConfig struct {
	Name   string      `toml:"name" json:"name"`
	Config interface{} `toml:"config" json:"config"`
}

// Dependency is a tagged reference to a module, either by content hash or
// by its symbolic name in the repository's name index. Exactly one of Hash
// or Name is set.
type Dependency struct {
	Hash *string `toml:"Hash,omitempty" json:"Hash,omitempty"`
	Name *string `toml:"Name,omitempty" json:"Name,omitempty"`
}

// DependencyHash builds a Dependency referencing a module by content hash.
func DependencyHash(h hash.Hash) Dependency {
	s := h.Hex()
	return Dependency{Hash: &s}
}

// DependencyName builds a Dependency referencing a module by logical name.
func DependencyName(name string) Dependency {
	return Dependency{Name: &name}
}

// Blueprint is a persisted, ordered list of module dependencies identified
// by a hash over its resolved dependency hashes.
type Blueprint struct {
	ID           string       `toml:"id" json:"id"`
	Name         string       `toml:"name" json:"name"`
	Dependencies []Dependency `toml:"dependencies" json:"dependencies"`
}

// AddBlueprintRequest is the argument to AddBlueprint: a name plus an
// unresolved dependency list that may mix Hash and Name references.
type AddBlueprintRequest struct {
	Name         string       `json:"name"`
	Dependencies []Dependency `json:"dependencies"`
}

// ModuleDescriptor is what the execution engine consumes: a resolved
// module's hash, logical name, and config payload.
type ModuleDescriptor struct {
	Hash   hash.Hash   `json:"hash"`
	Name   string      `json:"name"`
	Config interface{} `json:"config"`
}

// ModuleListEntry is one element of ListModules' result: either a
// successfully parsed module or an inline error placeholder.
type ModuleListEntry struct {
	Name            string      `json:"name,omitempty"`
	Hash            string      `json:"hash,omitempty"`
	Config          interface{} `json:"config,omitempty"`
	InvalidFileName string      `json:"invalid_file_name,omitempty"`
	Error           string      `json:"error,omitempty"`
}

// InterfaceParser parses a module's exported interface from its config
// file path. It is implemented by the execution engine, an external
// collaborator never implemented by this repository.
type InterfaceParser interface {
	ParseInterface(configPath string) (json.RawMessage, error)
}
