package thinker

import (
	"fmt"
	"runtime"
)

// Codeplace names a source location, the Go-idiomatic replacement for the
// build-time-injected codeplace/hopefully() assertion macros of the system
// this library's design is descended from: instead of a macro expanding at
// compile time, we capture the caller's program counter at the panic site.
type Codeplace struct {
	File string
	Line int
}

func (cp Codeplace) String() string {
	return fmt.Sprintf("%s:%d", cp.File, cp.Line)
}

func here(skip int) Codeplace {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Codeplace{File: "unknown", Line: 0}
	}
	return Codeplace{File: file, Line: line}
}

// ProgrammingError is what this library panics with for every condition its
// error taxonomy calls a programming error: illegal state transitions,
// control calls issued from a task's own worker, re-entrant write-guards,
// and the like. None of these are meant to be recovered from in normal
// operation; they indicate a caller violated a contract that could have
// been checked at the call site.
type ProgrammingError struct {
	Place Codeplace
	Msg   string
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Place, e.Msg)
}

func fatalf(format string, args ...interface{}) {
	panic(&ProgrammingError{Place: here(2), Msg: fmt.Sprintf(format, args...)})
}
