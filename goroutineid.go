package thinker

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID recovers the calling goroutine's numeric ID by parsing
// the header line of its own stack trace ("goroutine 123 [running]:"). Go
// has no goroutine-local storage and no public API for this; every runner
// that wants to detect "am I being called from the worker that's driving
// me" has to capture this once when the worker starts and compare against
// it later from whichever goroutine calls in.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(line, []byte(prefix)) {
		fatalf("goroutineid: unexpected stack header %q", line)
	}
	line = line[len(prefix):]
	idx := bytes.IndexByte(line, ' ')
	if idx < 0 {
		fatalf("goroutineid: unexpected stack header %q", buf[:n])
	}
	id, err := strconv.ParseUint(string(line[:idx]), 10, 64)
	if err != nil {
		fatalf("goroutineid: could not parse goroutine id: %v", err)
	}
	return id
}
