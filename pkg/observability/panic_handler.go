package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with its stack. It must be
// called directly in a defer statement:
//
//	defer observability.RecoverPanic(logger, "watch loop")
//
// The panic is not re-raised.
func RecoverPanic(logger *Logger, where string) {
	if r := recover(); r != nil {
		logPanic(logger, where, r)
	}
}

// RecoverToError recovers from a panic, logs it, and stores it in *errp so
// the enclosing function reports a failure instead of crashing:
//
//	func run() (err error) {
//	    defer observability.RecoverToError(logger, "compare", &err)
//	    ...
//	}
func RecoverToError(logger *Logger, where string, errp *error) {
	if r := recover(); r != nil {
		logPanic(logger, where, r)
		*errp = fmt.Errorf("panic in %s: %v", where, r)
	}
}

func logPanic(logger *Logger, where string, r interface{}) {
	logger.WithFields(map[string]interface{}{
		"panic":   fmt.Sprint(r),
		"stack":   string(debug.Stack()),
		"context": where,
	}).Error("PANIC recovered")
}
