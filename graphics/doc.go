// Package graphics defines the value descriptors callers use to describe
// render state: blend, depth-stencil, rasterizer and sampler states,
// viewports, clear options and vertex declarations.
//
// Every descriptor is a comparable value type. Two descriptors with equal
// fields are the same state; the render-state cache relies on this to skip
// redundant native calls and to key native sampler objects.
//
// Enumerations come from github.com/gogpu/gputypes (blend factors, compare
// functions, cull mode, topology, vertex and texture formats) and stencil
// face descriptions from github.com/gogpu/wgpu/hal, so descriptors written
// for a WebGPU backend translate without conversion.
package graphics
