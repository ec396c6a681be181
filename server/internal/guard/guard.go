// Package guard reports broken internal invariants loudly without stopping the process, and contains panics
// raised while a unit of work runs.
package guard

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// frames is the amount of stack frames attached to a report.
const frames = 8

// Violation is the value panicked by Panic. It describes a state that should be impossible, such as a cube
// whose generation stage moved backwards.
type Violation struct {
	Msg string
}

// Error ...
func (v Violation) Error() string {
	return "invariant violation: " + v.Msg
}

// Panic panics with a Violation holding the formatted message.
func Panic(format string, a ...any) {
	panic(Violation{Msg: fmt.Sprintf(format, a...)})
}

// Report logs a violation at warn level together with the stack of the caller. Execution continues
// normally after the report.
func Report(log *slog.Logger, msg string, args ...any) {
	if log == nil {
		log = slog.Default()
	}
	log.Warn("invariant violation: "+msg, append(args[:len(args):len(args)], "stack", stack(3))...)
}

// Run calls fn and recovers any panic it raises. A Violation is passed to Report, while any other panic is
// logged at error level. Run returns false if fn panicked.
func Run(log *slog.Logger, fn func(), args ...any) (ok bool) {
	if log == nil {
		log = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if v, isViolation := r.(Violation); isViolation {
				Report(log, v.Msg, args...)
				return
			}
			log.Error("recovered panic: "+fmt.Sprint(r), append(args[:len(args):len(args)], "stack", stack(4))...)
		}
	}()
	fn()
	return true
}

// stack returns up to frames formatted stack frames, skipping the first skip callers.
func stack(skip int) []string {
	pcs := make([]uintptr, frames)
	n := runtime.Callers(skip, pcs)
	it := runtime.CallersFrames(pcs[:n])

	out := make([]string, 0, n)
	for {
		f, more := it.Next()
		fn := f.Function
		if i := strings.LastIndexByte(fn, '/'); i >= 0 {
			fn = fn[i+1:]
		}
		out = append(out, fmt.Sprintf("%v (%v:%d)", fn, f.File, f.Line))
		if !more {
			break
		}
	}
	return out
}
