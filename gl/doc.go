// Package gl describes the native graphics API surface that glrender drives.
//
// The binding layer itself lives outside this module. Any type that
// implements [Functions] (a cgo binding, a WebGL shim or the recording fake
// in gl/gltest) can back a glrender device. The surface is intentionally
// flat: one method per native entry point, no retries and no hidden state.
//
// # Handles
//
// Native objects are represented by small integer handle types. The zero
// value of every handle means "no object", matching the native convention
// where name 0 is reserved.
//
// # Client memory
//
// Entry points that read caller memory during the call (client-side vertex
// and index arrays, pixel uploads) take an unsafe.Pointer. Callers must keep
// the memory pinned for the duration of the call; glrender does this with
// runtime.Pinner.
package gl
