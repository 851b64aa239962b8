//go:build linux

package glrender

import "golang.org/x/sys/unix"

// currentThread returns the OS thread id of the caller.
func currentThread() int64 { return int64(unix.Gettid()) }
