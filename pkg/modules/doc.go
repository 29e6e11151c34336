/*
Package modules implements the module repository: a content-addressed
catalog of executable binary modules and named blueprints (ordered lists of
module dependencies).

# Disk layout

	<modules_dir>/<hex32>.wasm          raw module bytes, hex32 = hex(BLAKE3(bytes))
	<modules_dir>/<hex32>_config.toml   TOML {name, config}
	<blueprints_dir>/<id>.toml          TOML {id, name, dependencies}

A module file's stem must equal the hex BLAKE3 hash of its contents. On
construction, Repository scans modules_dir and lazily migrates any file
that violates this invariant, renaming both the .wasm and its _config.toml
in lockstep. A blueprint's id is a pure function of its resolved dependency
hashes, so two blueprints submitted with identical (ordered) dependencies
collide on id regardless of name — the later write wins on disk and in
GetBlueprints.

Interface introspection (parsing a module's exported function signatures)
is supplied by the execution engine, an external collaborator injected as
an InterfaceParser; this package never parses module bytes itself.
*/
package modules
