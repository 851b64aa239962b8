// Package program caches linked programs keyed by their (vertex, pixel)
// stage pair.
package program

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/cache"
	"github.com/gogpu/glrender/shader"
)

// ErrNilStage is returned when a draw is issued without both stages set.
var ErrNilStage = errors.New("glrender: vertex and pixel shaders must both be set")

// LinkError carries the native link log of a program that failed to link.
type LinkError struct {
	Key Key
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("glrender: program %016x/%016x failed to link: %s", e.Key.Vertex, e.Key.Pixel, e.Log)
}

// Key identifies a stage pair. Both hashes are kept so distinct pairs never
// share a program.
type Key struct {
	Vertex uint64
	Pixel  uint64
}

// KeyOf returns the key of a stage pair.
func KeyOf(vs, ps *shader.Stage) Key {
	return Key{Vertex: vs.HashKey, Pixel: ps.HashKey}
}

type attribKey struct {
	usage graphics.VertexElementUsage
	index int
}

// Program is a linked program and its memoised locations.
type Program struct {
	Handle gl.Program
	Key    Key

	f        gl.Functions
	vertex   *shader.Stage
	pixel    *shader.Stage
	attribs  map[attribKey]gl.Attrib
	uniforms *cache.Cache[string, gl.Uniform]
}

// Vertex returns the vertex stage the program was linked from.
func (p *Program) Vertex() *shader.Stage { return p.vertex }

// Pixel returns the pixel stage the program was linked from.
func (p *Program) Pixel() *shader.Stage { return p.pixel }

// UniformLocation returns the location of a uniform. The native query runs
// once per name; inactive uniforms report gl.InvalidUniform.
func (p *Program) UniformLocation(name string) gl.Uniform {
	return p.uniforms.GetOrCreate(name, func() gl.Uniform {
		return p.f.GetUniformLocation(p.Handle, name)
	})
}

// AttribLocation returns the location of the vertex-stage input with the
// given usage, or false if the program does not read it.
func (p *Program) AttribLocation(usage graphics.VertexElementUsage, index int) (gl.Attrib, bool) {
	a, ok := p.attribs[attribKey{usage, index}]
	return a, ok
}

// Cache maps stage pairs to linked programs. It is owned by a device and
// used only from the device's thread.
type Cache struct {
	f      gl.Functions
	log    *slog.Logger
	checks bool

	// vertexUnitBase is the first texture unit of vertex-stage samplers.
	vertexUnitBase int

	programs map[Key]*Program
	hits     uint64
	misses   uint64
}

// New creates an empty program cache. Vertex-stage samplers are assigned
// texture units starting at vertexUnitBase.
func New(f gl.Functions, log *slog.Logger, checks bool, vertexUnitBase int) *Cache {
	return &Cache{
		f:              f,
		log:            log,
		checks:         checks,
		vertexUnitBase: vertexUnitBase,
		programs:       make(map[Key]*Program),
	}
}

// Get returns the program linked from vs and ps, linking it on first use.
// A freshly linked program is left bound and fresh is true.
// Programs that fail to link are not cached.
func (c *Cache) Get(vs, ps *shader.Stage) (p *Program, fresh bool, err error) {
	if vs == nil || ps == nil {
		return nil, false, ErrNilStage
	}
	key := KeyOf(vs, ps)
	if cached, ok := c.programs[key]; ok {
		c.hits++
		return cached, false, nil
	}
	c.misses++

	p, err = c.link(key, vs, ps)
	if err != nil {
		return nil, false, err
	}
	c.programs[key] = p
	c.log.Debug("glrender: program linked",
		"program", p.Handle,
		"vertex", fmt.Sprintf("%016x", key.Vertex),
		"pixel", fmt.Sprintf("%016x", key.Pixel))
	return p, true, nil
}

func (c *Cache) link(key Key, vs, ps *shader.Stage) (*Program, error) {
	f := c.f
	h := f.CreateProgram()
	f.AttachShader(h, vs.Handle)
	f.AttachShader(h, ps.Handle)
	f.LinkProgram(h)
	if f.GetProgrami(h, gl.LINK_STATUS) != gl.TRUE {
		log := f.GetProgramInfoLog(h)
		f.DetachShader(h, vs.Handle)
		f.DetachShader(h, ps.Handle)
		f.DeleteProgram(h)
		c.log.Warn("glrender: program link failed", "log", log)
		return nil, &LinkError{Key: key, Log: log}
	}

	p := &Program{
		Handle:   h,
		Key:      key,
		f:        f,
		vertex:   vs,
		pixel:    ps,
		attribs:  make(map[attribKey]gl.Attrib, len(vs.Attributes)),
		uniforms: cache.New[string, gl.Uniform](0),
	}

	f.UseProgram(h)
	for _, a := range vs.Attributes {
		if loc := f.GetAttribLocation(h, a.Name); loc >= 0 {
			p.attribs[attribKey{a.Usage, a.UsageIndex}] = gl.Attrib(loc)
		}
	}
	for _, s := range ps.Samplers {
		if u := p.UniformLocation(s.Name); u.Valid() {
			f.Uniform1i(u, int32(s.Unit))
		}
	}
	for _, s := range vs.Samplers {
		if u := p.UniformLocation(s.Name); u.Valid() {
			f.Uniform1i(u, int32(c.vertexUnitBase+s.Unit))
		}
	}

	if c.checks {
		if err := gl.Check(f, "link program"); err != nil {
			f.DeleteProgram(h)
			return nil, err
		}
	}
	return p, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int { return len(c.programs) }

// Stats returns the cache hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) { return c.hits, c.misses }

// DestroyAll deletes every cached program and empties the cache.
func (c *Cache) DestroyAll() {
	for key, p := range c.programs {
		c.f.DeleteProgram(p.Handle)
		delete(c.programs, key)
	}
}
