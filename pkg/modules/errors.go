package modules

import (
	"errors"
	"strings"
)

// Sentinel error kinds, the idiomatic Go analogue of the original's
// ModuleError enum. Wrap with fmt.Errorf("...: %w", err) and check with
// errors.Is.
var (
	ErrInvalidModuleName      = errors.New("invalid module name")
	ErrInvalidModuleReference = errors.New("invalid module reference")
	ErrIO                     = errors.New("io error")
	ErrParse                  = errors.New("parse error")
	ErrInterface              = errors.New("interface error")
)

// backtraceSentinel is the suffix Rust's eyre backtraces are appended
// after; user-visible error strings truncate at it so the contract matches
// byte for byte regardless of which side of the boundary produced it.
const backtraceSentinel = "Stack backtrace:"

func truncateBacktrace(s string) string {
	if idx := strings.Index(s, backtraceSentinel); idx >= 0 {
		return s[:idx]
	}
	return s
}
