// Package caps holds the capability table of a native graphics device.
//
// A Table is produced once when a device is initialized, either by the host
// application or by Probe, and is read-only afterwards. Every downstream
// decision that depends on driver support branches on these fields rather
// than on the build platform.
package caps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/glrender/gl"
)

// MaxRenderTargets is the upper bound on simultaneously bound color targets.
const MaxRenderTargets = 8

var (
	// ErrBadVersion is returned when a version string cannot be parsed.
	ErrBadVersion = errors.New("caps: unrecognized GL version string")

	// ErrNotSupported is wrapped by every error reporting a feature the
	// table says the driver lacks.
	ErrNotSupported = errors.New("glrender: feature not supported by the driver, update drivers")
)

// Table is the capability table of a device.
type Table struct {
	// Version is the (major, minor) native API version.
	Version [2]int

	// GLES reports an embedded-profile context.
	GLES bool

	MaxTextureSlots       int
	MaxVertexTextureSlots int
	MaxVertexAttributes   int
	MaxRenderTargets      int
	MaxSamples            int

	SupportsInstancing            bool
	SupportsBaseVertex            bool
	SupportsBaseInstance          bool
	SupportsSeparateBlendStates   bool
	SupportsMultisampling         bool
	SupportsInvalidateFramebuffer bool
	SupportsSamplerObjects        bool
	SupportsBinaryShaders         bool
	SupportsAnisotropicFiltering  bool

	// HalfPixelOffset nudges sample points to pixel centers through the
	// position fixup vector.
	HalfPixelOffset bool
}

// Default returns a conservative table for a desktop GL 3.3 core context.
func Default() *Table {
	return &Table{
		Version:                [2]int{3, 3},
		MaxTextureSlots:        16,
		MaxVertexTextureSlots:  0,
		MaxVertexAttributes:    16,
		MaxRenderTargets:       MaxRenderTargets,
		MaxSamples:             4,
		SupportsInstancing:     true,
		SupportsBaseVertex:     true,
		SupportsMultisampling:  true,
		SupportsSamplerObjects: true,
	}
}

// Probe queries the native API for its version, extensions and limits.
func Probe(f gl.Functions) (*Table, error) {
	major, minor, gles, err := ParseVersion(f.GetString(gl.VERSION))
	if err != nil {
		return nil, err
	}
	exts := strings.Fields(f.GetString(gl.EXTENSIONS))
	has := func(name string) bool {
		for _, e := range exts {
			if e == name {
				return true
			}
		}
		return false
	}
	atLeast := func(maj, min int) bool {
		return major > maj || (major == maj && minor >= min)
	}

	t := &Table{
		Version:               [2]int{major, minor},
		GLES:                  gles,
		MaxTextureSlots:       int(f.GetInteger(gl.MAX_TEXTURE_IMAGE_UNITS)),
		MaxVertexTextureSlots: int(f.GetInteger(gl.MAX_VERTEX_TEXTURE_IMAGE_UNITS)),
		MaxVertexAttributes:   int(f.GetInteger(gl.MAX_VERTEX_ATTRIBS)),
		MaxRenderTargets:      int(f.GetInteger(gl.MAX_DRAW_BUFFERS)),
		MaxSamples:            int(f.GetInteger(gl.MAX_SAMPLES)),
	}
	if t.MaxRenderTargets > MaxRenderTargets {
		t.MaxRenderTargets = MaxRenderTargets
	}
	if t.MaxRenderTargets < 1 {
		t.MaxRenderTargets = 1
	}
	if t.MaxVertexAttributes > 64 {
		t.MaxVertexAttributes = 64
	}

	if gles {
		t.SupportsInstancing = atLeast(3, 0) || has("GL_EXT_instanced_arrays")
		t.SupportsBaseVertex = atLeast(3, 2) || has("GL_EXT_draw_elements_base_vertex")
		t.SupportsBaseInstance = has("GL_EXT_base_instance")
		t.SupportsSeparateBlendStates = atLeast(3, 2) || has("GL_EXT_draw_buffers_indexed")
		t.SupportsMultisampling = atLeast(3, 0)
		t.SupportsInvalidateFramebuffer = atLeast(3, 0)
		t.SupportsSamplerObjects = atLeast(3, 0)
	} else {
		t.SupportsInstancing = atLeast(3, 3) || has("GL_ARB_instanced_arrays")
		t.SupportsBaseVertex = atLeast(3, 2) || has("GL_ARB_draw_elements_base_vertex")
		t.SupportsBaseInstance = atLeast(4, 2) || has("GL_ARB_base_instance")
		t.SupportsSeparateBlendStates = atLeast(4, 0) || has("GL_ARB_draw_buffers_blend")
		t.SupportsMultisampling = atLeast(3, 0)
		t.SupportsInvalidateFramebuffer = atLeast(4, 3) || has("GL_ARB_invalidate_subdata")
		t.SupportsSamplerObjects = atLeast(3, 3) || has("GL_ARB_sampler_objects")
		t.SupportsBinaryShaders = atLeast(4, 6) || has("GL_ARB_gl_spirv")
	}
	t.SupportsAnisotropicFiltering = (!gles && atLeast(4, 6)) ||
		has("GL_EXT_texture_filter_anisotropic") || has("GL_ARB_texture_filter_anisotropic")
	if !t.SupportsMultisampling {
		t.MaxSamples = 0
	}
	return t, nil
}

// ParseVersion parses a GL_VERSION string such as "4.6.0 NVIDIA 535.54"
// or "OpenGL ES 3.2 Mesa 23.0".
func ParseVersion(s string) (major, minor int, gles bool, err error) {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"OpenGL ES-CM ", "OpenGL ES-CL ", "OpenGL ES "} {
		if strings.HasPrefix(s, prefix) {
			gles = true
			s = s[len(prefix):]
			break
		}
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, 0, false, ErrBadVersion
	}
	parts := strings.SplitN(fields[0], ".", 3)
	if len(parts) < 2 {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
	return major, minor, gles, nil
}
