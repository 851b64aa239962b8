//go:build !linux

package glrender

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentThread returns the goroutine id of the caller. Native contexts are
// current on the goroutine that locked its OS thread, so the goroutine is
// the unit of ownership where no portable thread id is available.
func currentThread() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
