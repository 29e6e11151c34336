/*
Package log provides structured logging for the node using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific child loggers, a configurable level, and a handful of
package-level helpers for the common cases. All logs include timestamps and
support filtering by severity for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - zerolog instance                         │          │
	│  │  - initialized via log.Init()               │          │
	│  │  - safe for concurrent use                  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("modules")                 │          │
	│  │  - WithComponent("scripts")                 │          │
	│  │  - WithPeerID(id)                           │          │
	│  │  - WithScriptID(uuid)                       │          │
	│  │  - WithModuleHash(hex)                      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  JSON (production) or console (dev)         │          │
	│  └──────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────────┘

cmd/corenoded is the exception: interactive command feedback goes through
fmt.Printf/fmt.Println so operators see plain text at the terminal, while
everything background (migration, firing, failure accounting) logs through
this package.
*/
package log
