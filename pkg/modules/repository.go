package modules

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cuemby/corenode/pkg/hash"
	"github.com/cuemby/corenode/pkg/log"
	"github.com/pelletier/go-toml/v2"
)

// Repository is the filesystem-backed catalog of modules and blueprints.
// The name index is guarded by a mutex; disk I/O runs on the caller's
// goroutine and never holds the mutex.
type Repository struct {
	modulesDir      string
	blueprintsDir   string
	mu              sync.Mutex
	modulesByName   map[string]hash.Hash
	interfaceParser InterfaceParser
}

// New constructs a Repository, scanning modulesDir and migrating any module
// file whose name doesn't match its content hash. Construction always
// succeeds; per-file errors are logged and the offending file is skipped.
func New(modulesDir, blueprintsDir string, interfaceParser InterfaceParser) *Repository {
	r := &Repository{
		modulesDir:      modulesDir,
		blueprintsDir:   blueprintsDir,
		modulesByName:   make(map[string]hash.Hash),
		interfaceParser: interfaceParser,
	}
	r.scan()
	return r
}

func (r *Repository) logWarn(msg string, err error) {
	log.WithComponent("modules").Warn().Err(err).Msg(msg)
}

func (r *Repository) scan() {
	entries, err := os.ReadDir(r.modulesDir)
	if err != nil {
		r.logWarn("scanning modules dir", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isModuleWasm(entry.Name()) {
			continue
		}
		path := filepath.Join(r.modulesDir, entry.Name())
		name, h, err := r.loadAndMigrate(path, entry.Name())
		if err != nil {
			r.logWarn(fmt.Sprintf("error loading module list entry %s", path), err)
			continue
		}
		r.modulesByName[name] = h
	}
}

func (r *Repository) loadAndMigrate(path, fileName string) (string, hash.Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", hash.Hash{}, fmt.Errorf("%w: read module: %v", ErrIO, err)
	}
	h := hash.Sum(data)

	path = r.maybeMigrateModule(path, fileName, h)

	config, err := r.loadModuleConfig(h)
	if err != nil {
		return "", hash.Hash{}, err
	}
	return config.Name, h, nil
}

// maybeMigrateModule renames the module and its config file in lockstep if
// the filename stem doesn't match the content hash. On failure it logs and
// leaves the module unindexed; it never rolls back a partial rename.
func (r *Repository) maybeMigrateModule(path, fileName string, h hash.Hash) string {
	stem, ok := extractModuleFileName(fileName)
	if !ok || stem == h.Hex() {
		return path
	}

	newPath := filepath.Join(r.modulesDir, moduleFileName(h))
	log.WithComponent("modules").Debug().
		Str("from", fileName).Str("to", moduleFileName(h)).
		Msg("migrating module filename to content hash")
	if err := os.Rename(path, newPath); err != nil {
		r.logWarn(fmt.Sprintf("module %s migration failed", path), err)
		return path
	}

	oldConfig := filepath.Join(r.modulesDir, stem+configSuffix)
	newConfig := filepath.Join(r.modulesDir, moduleConfigName(h))
	if err := os.Rename(oldConfig, newConfig); err != nil {
		r.logWarn(fmt.Sprintf("config for module %s migration failed", path), err)
		return newPath
	}

	return newPath
}

func (r *Repository) loadModuleConfig(h hash.Hash) (ModuleConfig, error) {
	path := filepath.Join(r.modulesDir, moduleConfigName(h))
	data, err := os.ReadFile(path)
	if err != nil {
		return ModuleConfig{}, fmt.Errorf("%w: load config %s: %v", ErrIO, path, err)
	}
	var config ModuleConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return ModuleConfig{}, fmt.Errorf("%w: parse config %s: %v", ErrParse, path, err)
	}
	return config, nil
}

// AddModule decodes module (base64), writes <hash>.wasm and
// <hash>_config.toml under modulesDir (overwriting any existing files), and
// updates the name index. Returns the hex hash.
func (r *Repository) AddModule(moduleB64 string, config ModuleConfig) (string, error) {
	data, err := base64.StdEncoding.DecodeString(moduleB64)
	if err != nil {
		return "", fmt.Errorf("%w: decoding module from base64: %v", ErrParse, err)
	}
	h := hash.Sum(data)

	if err := os.WriteFile(filepath.Join(r.modulesDir, moduleFileName(h)), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write module: %v", ErrIO, err)
	}
	configBytes, err := toml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("%w: encode config: %v", ErrParse, err)
	}
	if err := os.WriteFile(filepath.Join(r.modulesDir, moduleConfigName(h)), configBytes, 0o644); err != nil {
		return "", fmt.Errorf("%w: write config: %v", ErrIO, err)
	}

	r.mu.Lock()
	r.modulesByName[config.Name] = h
	r.mu.Unlock()

	return h.Hex(), nil
}

// AddBlueprint resolves every Name dependency against the name index,
// computes the blueprint id from the resolved hash dependencies, writes the
// blueprint TOML, and returns the id.
func (r *Repository) AddBlueprint(req AddBlueprintRequest) (string, error) {
	resolved := make([]Dependency, 0, len(req.Dependencies))
	for _, dep := range req.Dependencies {
		h, err := r.resolveHash(dep)
		if err != nil {
			return "", err
		}
		resolved = append(resolved, DependencyHash(h))
	}

	id, err := hashDependencies(resolved)
	if err != nil {
		return "", err
	}

	blueprint := Blueprint{
		ID:           id.Hex(),
		Name:         req.Name,
		Dependencies: resolved,
	}
	if err := r.writeBlueprint(blueprint); err != nil {
		return "", err
	}

	return blueprint.ID, nil
}

func (r *Repository) writeBlueprint(b Blueprint) error {
	data, err := toml.Marshal(b)
	if err != nil {
		return fmt.Errorf("%w: encode blueprint: %v", ErrParse, err)
	}
	path := filepath.Join(r.blueprintsDir, blueprintFileName(b.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write blueprint: %v", ErrIO, err)
	}
	return nil
}

// ListModules enumerates modulesDir and reports each entry as a parsed
// module or an inline error placeholder. The call always succeeds.
func (r *Repository) ListModules() []ModuleListEntry {
	entries, err := os.ReadDir(r.modulesDir)
	if err != nil {
		r.logWarn("listing modules dir", err)
		return nil
	}

	var out []ModuleListEntry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem, ok := extractModuleFileName(entry.Name())
		if !ok {
			continue
		}

		h, err := hash.ParseHash(stem)
		if err == nil {
			var config ModuleConfig
			config, err = r.loadModuleConfig(h)
			if err == nil {
				out = append(out, ModuleListEntry{
					Name:   config.Name,
					Hash:   h.Hex(),
					Config: config.Config,
				})
				continue
			}
		}

		r.logWarn(fmt.Sprintf("list_modules error on %s", entry.Name()), err)
		out = append(out, ModuleListEntry{
			InvalidFileName: stem,
			Error:           truncateBacktrace(err.Error()),
		})
	}
	return out
}

// GetInterface builds the path of the module's config file from its hash and
// delegates interface parsing of that file to the configured InterfaceParser.
func (r *Repository) GetInterface(hexHash string) (json.RawMessage, error) {
	h, err := hash.ParseHash(hexHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, truncateBacktrace(err.Error()))
	}
	if r.interfaceParser == nil {
		return nil, fmt.Errorf("%w: no interface parser configured", ErrInterface)
	}

	path := filepath.Join(r.modulesDir, moduleConfigName(h))
	iface, err := r.interfaceParser.ParseInterface(path)
	if err != nil {
		return nil, fmt.Errorf("%w: parse interface %s: %v", ErrInterface, path, truncateBacktrace(err.Error()))
	}
	return iface, nil
}

// GetBlueprints enumerates blueprintsDir, parsing each recognized file as
// TOML. Malformed entries are logged and omitted.
func (r *Repository) GetBlueprints() []Blueprint {
	entries, err := os.ReadDir(r.blueprintsDir)
	if err != nil {
		r.logWarn("listing blueprints dir", err)
		return nil
	}

	var out []Blueprint
	for _, entry := range entries {
		if entry.IsDir() || !isBlueprintFile(entry.Name()) {
			continue
		}
		path := filepath.Join(r.blueprintsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			r.logWarn(fmt.Sprintf("get_blueprints error on file %s", entry.Name()), err)
			continue
		}
		var blueprint Blueprint
		if err := toml.Unmarshal(data, &blueprint); err != nil {
			r.logWarn(fmt.Sprintf("get_blueprints error on file %s", entry.Name()), err)
			continue
		}
		out = append(out, blueprint)
	}
	return out
}

// ModuleCount returns the number of modules currently on disk, for metrics.
func (r *Repository) ModuleCount() int {
	return len(r.ListModules())
}

// BlueprintCount returns the number of blueprints currently on disk, for
// metrics.
func (r *Repository) BlueprintCount() int {
	return len(r.GetBlueprints())
}

// ResolveBlueprint loads the blueprint by id and resolves each dependency
// into a module descriptor, failing fast on the first unresolvable entry.
func (r *Repository) ResolveBlueprint(id string) ([]ModuleDescriptor, error) {
	path := filepath.Join(r.blueprintsDir, blueprintFileName(id))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load blueprint %s: %v", ErrIO, id, err)
	}
	var blueprint Blueprint
	if err := toml.Unmarshal(data, &blueprint); err != nil {
		return nil, fmt.Errorf("%w: parse blueprint %s: %v", ErrParse, id, err)
	}

	descriptors := make([]ModuleDescriptor, 0, len(blueprint.Dependencies))
	for _, dep := range blueprint.Dependencies {
		h, err := r.resolveHash(dep)
		if err != nil {
			return nil, err
		}
		config, err := r.loadModuleConfig(h)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, ModuleDescriptor{
			Hash:   h,
			Name:   config.Name,
			Config: config.Config,
		})
	}
	return descriptors, nil
}

// resolveHash resolves a Dependency to a Hash, consulting the name index
// for Name references. Kept backward-compatible: even though persisted
// blueprints only ever contain Hash dependencies, a hand-edited or legacy
// blueprint file may still contain a Name.
func (r *Repository) resolveHash(dep Dependency) (hash.Hash, error) {
	if dep.Hash != nil {
		return hash.ParseHash(*dep.Hash)
	}
	if dep.Name == nil {
		return hash.Hash{}, fmt.Errorf("%w: dependency has neither Hash nor Name", ErrInvalidModuleReference)
	}

	r.mu.Lock()
	h, ok := r.modulesByName[*dep.Name]
	r.mu.Unlock()
	if !ok {
		return hash.Hash{}, fmt.Errorf("%w: %s", ErrInvalidModuleName, *dep.Name)
	}
	return h, nil
}

// hashDependencies computes the blueprint id: BLAKE3 over the
// concatenation of dependency hash bytes, in order. Every dependency must
// already be a Hash; this is defensive and unreachable once AddBlueprint
// has resolved its input, but resolve_blueprint's backward-compatible Name
// handling means the invariant is worth re-checking here rather than
// trusting the caller.
func hashDependencies(deps []Dependency) (hash.Hash, error) {
	var buf []byte
	for _, d := range deps {
		if d.Hash == nil {
			ref := ""
			if d.Name != nil {
				ref = *d.Name
			}
			return hash.Hash{}, fmt.Errorf("%w: %s", ErrInvalidModuleReference, ref)
		}
		h, err := hash.ParseHash(*d.Hash)
		if err != nil {
			return hash.Hash{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		buf = append(buf, h[:]...)
	}
	return hash.Sum(buf), nil
}
