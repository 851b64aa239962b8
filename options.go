package glrender

import "log/slog"

// Option configures a Device during creation.
//
// Example:
//
//	dev, err := glrender.NewDevice(fns, nil,
//	    glrender.WithBackBufferSize(1280, 720),
//	    glrender.WithErrorChecks(false),
//	)
type Option func(*options)

type options struct {
	logger       *slog.Logger
	errorChecks  bool
	backBufferW  int
	backBufferH  int
	threadID     func() int64
	samplerLimit int
}

func defaultOptions() options {
	return options{
		errorChecks:  true,
		threadID:     currentThread,
		samplerLimit: 256,
	}
}

// WithLogger sets the device logger. Without it the device uses the
// package logger current at creation time (see SetLogger).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithErrorChecks enables or disables reading the native error flag after
// each state group, draw and resource operation. Enabled by default.
func WithErrorChecks(on bool) Option {
	return func(o *options) {
		o.errorChecks = on
	}
}

// WithBackBufferSize sets the size of the default framebuffer. Contexts use
// it for the initial viewport, for window-space flips and when the render
// targets are reset to the back buffer.
func WithBackBufferSize(width, height int) Option {
	return func(o *options) {
		o.backBufferW = width
		o.backBufferH = height
	}
}

// WithThreadID replaces the function identifying the calling thread.
// Hosts that multiplex native contexts onto their own scheduler supply
// their own notion of ownership here.
func WithThreadID(fn func() int64) Option {
	return func(o *options) {
		if fn != nil {
			o.threadID = fn
		}
	}
}

// WithSamplerCacheLimit sets the soft limit of the device's sampler object
// cache. Zero means unlimited.
func WithSamplerCacheLimit(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.samplerLimit = n
		}
	}
}
