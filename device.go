package glrender

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/cache"
	"github.com/gogpu/glrender/internal/framebuffer"
	"github.com/gogpu/glrender/internal/program"
	"github.com/gogpu/glrender/shader"
)

// samplerKey identifies a sampler object. Mipmaps is folded with the
// texture's level count so single-level textures never sample missing levels.
type samplerKey struct {
	state   graphics.SamplerState
	mipmaps bool
}

// Device owns the caches shared by every context created from it: linked
// programs, framebuffers and sampler objects. A device and its contexts
// must be used from the thread that created the device. Contexts share the
// native surface and may be interleaved: a context drawing after another
// reissues all of its state.
type Device struct {
	f     gl.Functions
	caps  *caps.Table
	log   *slog.Logger
	opts  options
	owner owner

	programs     *program.Cache
	framebuffers *framebuffer.Cache
	samplers     *cache.Cache[samplerKey, gl.Sampler]

	backBufferW, backBufferH int

	contexts []*Context

	// current is the context that last issued native calls.
	current *Context

	destroyed bool
}

// NewDevice creates a device on the native surface f. A nil table is
// probed from f.
func NewDevice(f gl.Functions, t *caps.Table, opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	if t == nil {
		var err error
		if t, err = caps.Probe(f); err != nil {
			return nil, fmt.Errorf("glrender: probe capabilities: %w", err)
		}
	}

	d := &Device{
		f:           f,
		caps:        t,
		log:         o.logger,
		opts:        o,
		owner:       newOwner(o.threadID),
		backBufferW: o.backBufferW,
		backBufferH: o.backBufferH,
	}
	d.programs = program.New(f, o.logger, o.errorChecks, pixelUnits(t))
	d.framebuffers = framebuffer.New(f, t, o.logger, o.errorChecks)
	d.samplers = cache.New[samplerKey, gl.Sampler](o.samplerLimit)
	d.samplers.OnEvict(d.releaseSampler)
	d.samplers.Retain(d.samplerWanted)

	d.log.Info("glrender: device created",
		"version", fmt.Sprintf("%d.%d", t.Version[0], t.Version[1]),
		"gles", t.GLES,
		"textureSlots", t.MaxTextureSlots,
		"vertexTextureSlots", t.MaxVertexTextureSlots)
	return d, nil
}

// Caps returns the device capability table. It must not be modified.
func (d *Device) Caps() *caps.Table { return d.caps }

func (d *Device) guard() error {
	if err := d.owner.check(); err != nil {
		return err
	}
	if d.destroyed {
		return ErrDestroyed
	}
	return nil
}

func (d *Device) check(op string) error {
	if !d.opts.errorChecks {
		return nil
	}
	return gl.Check(d.f, op)
}

// NewContext creates a render-state context. Its viewport and scissor
// rectangle cover the back buffer.
func (d *Device) NewContext() (*Context, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	c := newContext(d)
	d.contexts = append(d.contexts, c)
	return c, nil
}

// SetBackBufferSize records a new default framebuffer size, for example
// after a window resize. Contexts rendering to the back buffer reset their
// viewport and scissor rectangle to it.
func (d *Device) SetBackBufferSize(width, height int) error {
	if err := d.guard(); err != nil {
		return err
	}
	d.backBufferW, d.backBufferH = width, height
	for _, c := range d.contexts {
		if c.targets.Len() == 0 {
			c.resetViewport(width, height)
		}
	}
	return nil
}

// BackBufferSize returns the default framebuffer size.
func (d *Device) BackBufferSize() (width, height int) {
	return d.backBufferW, d.backBufferH
}

// LoadShader creates a shader stage from a SPIR-V binary.
func (d *Device) LoadShader(kind shader.Kind, spirv []byte, entry string, r shader.Reflection) (*shader.Stage, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	if !d.caps.SupportsBinaryShaders {
		return nil, fmt.Errorf("%w: SPIR-V shader binaries", ErrNotSupported)
	}
	s, err := shader.Load(d.f, kind, spirv, entry, r)
	if err != nil {
		d.log.Warn("glrender: shader load failed", "kind", kind, "err", err)
		return nil, err
	}
	return s, nil
}

// LoadWGSL compiles WGSL source to SPIR-V and loads it as a stage.
func (d *Device) LoadWGSL(kind shader.Kind, source, entry string, r shader.Reflection) (*shader.Stage, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	if !d.caps.SupportsBinaryShaders {
		return nil, fmt.Errorf("%w: SPIR-V shader binaries", ErrNotSupported)
	}
	s, err := shader.LoadWGSL(d.f, kind, source, entry, r)
	if err != nil {
		d.log.Warn("glrender: shader load failed", "kind", kind, "err", err)
		return nil, err
	}
	return s, nil
}

// DestroyShader deletes a stage's native shader. Programs already linked
// from it stay cached and usable.
func (d *Device) DestroyShader(s *shader.Stage) error {
	if err := d.guard(); err != nil {
		return err
	}
	s.Destroy(d.f)
	return nil
}

// DeviceStats reports the sizes and hit rates of the device caches.
type DeviceStats struct {
	Programs            int
	ProgramHits         uint64
	ProgramMisses       uint64
	Framebuffers        int
	ResolveFramebuffers int
	Samplers            cache.Stats
}

// Stats returns the current cache statistics.
func (d *Device) Stats() DeviceStats {
	hits, misses := d.programs.Stats()
	primary, resolve := d.framebuffers.Len()
	return DeviceStats{
		Programs:            d.programs.Len(),
		ProgramHits:         hits,
		ProgramMisses:       misses,
		Framebuffers:        primary,
		ResolveFramebuffers: resolve,
		Samplers:            d.samplers.Stats(),
	}
}

// Destroy deletes every cached native object. The device and its contexts
// are unusable afterwards; resources must be destroyed separately.
func (d *Device) Destroy() error {
	if err := d.guard(); err != nil {
		return err
	}
	d.programs.DestroyAll()
	d.framebuffers.DestroyAll()
	d.samplers.Clear()
	d.contexts = nil
	d.current = nil
	d.destroyed = true
	d.log.Info("glrender: device destroyed")
	return nil
}

// sampler returns the sampler object for k, creating it on first use.
func (d *Device) sampler(k samplerKey) gl.Sampler {
	return d.samplers.GetOrCreate(k, func() gl.Sampler {
		h := d.f.CreateSampler()
		for _, p := range samplerParams(k.state, k.mipmaps, d.caps) {
			if p.float {
				d.f.SamplerParameterf(h, p.name, p.f)
			} else {
				d.f.SamplerParameteri(h, p.name, p.i)
			}
		}
		return h
	})
}

// samplerWanted keeps sampler objects that a context's bound textures
// sample with out of eviction.
func (d *Device) samplerWanted(k samplerKey, _ gl.Sampler) bool {
	for _, c := range d.contexts {
		if c.units.wants(k) {
			return true
		}
	}
	return false
}

func (d *Device) releaseSampler(_ samplerKey, s gl.Sampler) {
	d.f.DeleteSampler(s)
	for _, c := range d.contexts {
		c.units.forgetSampler(s)
	}
}

// bindScratch binds t on texture unit 0 for resource setup. Contexts treat
// unit 0 as changed afterwards.
func (d *Device) bindScratch(target gl.Enum, t gl.Texture) {
	d.f.ActiveTexture(gl.TEXTURE0)
	d.f.BindTexture(target, t)
	for _, c := range d.contexts {
		c.units.scratched()
	}
}

// forget drops every context reference to a destroyed resource.
func (d *Device) forget(fn func(c *Context)) {
	for _, c := range d.contexts {
		fn(c)
	}
}
