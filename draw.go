package glrender

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/glconv"
	"github.com/gogpu/glrender/shader"
)

// PositionFixupUniform is the vertex-stage uniform receiving the position
// fixup vector before every draw. Vertex shaders apply it as
//
//	pos.xy = pos.xy * posFixup.xy + posFixup.zw * pos.ww
//
// which flips Y when rendering to a texture and applies the half-pixel
// offset where the device needs one.
const PositionFixupUniform = "posFixup"

// halfPixel is the fixup offset in pixels. It is slightly below one half
// so edge samples stay inside the primitive.
const halfPixel = 63.0 / 64.0

func primitive(t gputypes.PrimitiveTopology, primitiveCount int) (gl.Enum, int, error) {
	mode, err := glconv.PrimitiveMode(t)
	if err != nil {
		return 0, 0, err
	}
	count, err := glconv.ElementCount(t, primitiveCount)
	if err != nil {
		return 0, 0, err
	}
	return mode, count, nil
}

// positionFixup returns the fixup vector for the current viewport and target.
func (c *Context) positionFixup() [4]float32 {
	fix := [4]float32{1, 1, 0, 0}
	if c.caps.HalfPixelOffset {
		vp := c.pipeline.Viewport()
		if vp.Width > 0 {
			fix[2] = halfPixel / float32(vp.Width)
		}
		if vp.Height > 0 {
			fix[3] = -halfPixel / float32(vp.Height)
		}
	}
	if c.targets.Len() > 0 {
		fix[1] = -fix[1]
		fix[3] = -fix[3]
	}
	return fix
}

// activateProgram makes the program of the current stage pair current,
// linking it on first use. Nothing is issued while the stages are unchanged.
func (c *Context) activateProgram() (changed bool, err error) {
	if !c.shadersDirty && c.program != nil {
		return false, nil
	}
	p, fresh, err := c.dev.programs.Get(c.vs, c.ps)
	if err != nil {
		// A failed link may have left another program current.
		c.program = nil
		return false, err
	}
	if fresh {
		c.metrics.ProgramLinks++
	} else if p != c.program {
		c.f.UseProgram(p.Handle)
	}
	changed = p != c.program
	c.program = p
	c.shadersDirty = false
	return changed, nil
}

// applyConstants uploads the constant buffers the bound stages declare.
// After a program change every declared block is uploaded.
func (c *Context) applyConstants(programChanged bool) {
	p := c.program
	for _, s := range [2]*shader.Stage{p.Vertex(), p.Pixel()} {
		for _, cb := range s.ConstantBuffers {
			if cb.Slot < 0 || cb.Slot >= maxConstantBuffers {
				continue
			}
			if !programChanged && c.constantsDirty&(1<<cb.Slot) == 0 {
				continue
			}
			data := c.constants[cb.Slot]
			n := min(len(data), cb.Size/4)
			n -= n % 4
			if n == 0 {
				continue
			}
			if loc := p.UniformLocation(cb.Name); loc.Valid() {
				c.f.Uniform4fv(loc, data[:n])
			}
		}
	}
	c.constantsDirty = 0
}

// applyState issues every pending state change ahead of a draw, in the
// order pipeline state, index buffer, program and position fixup, textures
// and samplers, constant buffers. Vertex bindings are left to the caller.
func (c *Context) applyState(ib *IndexBuffer) error {
	if err := c.acquire(); err != nil {
		return err
	}
	if err := c.pipeline.Apply(c.surface()); err != nil {
		return err
	}
	if ib != nil {
		c.bindIndex(ib.handle)
	}
	changed, err := c.activateProgram()
	if err != nil {
		return err
	}
	if loc := c.program.UniformLocation(PositionFixupUniform); loc.Valid() {
		fix := c.positionFixup()
		c.f.Uniform4f(loc, fix[0], fix[1], fix[2], fix[3])
	}
	if err := c.applyTextures(); err != nil {
		return err
	}
	c.applyConstants(changed)
	return c.check("apply shader state")
}

func (c *Context) finishDraw(op string, primitives, instances int) error {
	if err := c.check(op); err != nil {
		return err
	}
	c.metrics.DrawCount++
	c.metrics.PrimitiveCount += uint64(primitives * instances)
	return nil
}

// DrawPrimitives draws non-indexed primitives from the bound vertex buffers.
func (c *Context) DrawPrimitives(t gputypes.PrimitiveTopology, vertexStart, primitiveCount int) error {
	if err := c.guard(); err != nil {
		return err
	}
	mode, count, err := primitive(t, primitiveCount)
	if err != nil {
		return err
	}
	if err := c.applyState(nil); err != nil {
		return err
	}
	if err := c.vertices.Apply(c.vertexBindings, c.program, 0); err != nil {
		return err
	}
	c.f.DrawArrays(mode, int32(vertexStart), int32(count))
	return c.finishDraw("draw primitives", primitiveCount, 1)
}

// DrawIndexedPrimitives draws indexed primitives. baseVertex is added to
// every index; without native base-vertex support it is folded into the
// vertex attribute offsets.
func (c *Context) DrawIndexedPrimitives(t gputypes.PrimitiveTopology, baseVertex, startIndex, primitiveCount int) error {
	if err := c.guard(); err != nil {
		return err
	}
	mode, count, err := primitive(t, primitiveCount)
	if err != nil {
		return err
	}
	ib := c.indexBuffer
	if ib == nil {
		return ErrNoIndexBuffer
	}
	if err := c.applyState(ib); err != nil {
		return err
	}
	offset := startIndex * ib.size
	if c.caps.SupportsBaseVertex {
		if err := c.vertices.Apply(c.vertexBindings, c.program, 0); err != nil {
			return err
		}
		c.f.DrawElementsBaseVertex(mode, int32(count), ib.typ, offset, int32(baseVertex))
	} else {
		if err := c.vertices.Apply(c.vertexBindings, c.program, baseVertex); err != nil {
			return err
		}
		c.f.DrawElements(mode, int32(count), ib.typ, offset)
	}
	return c.finishDraw("draw indexed primitives", primitiveCount, 1)
}

// DrawInstancedPrimitives draws instanceCount instances of indexed
// primitives. A non-zero baseInstance requires native base-instance support.
// Missing capabilities are reported before any native call.
func (c *Context) DrawInstancedPrimitives(t gputypes.PrimitiveTopology, baseVertex, startIndex, primitiveCount, baseInstance, instanceCount int) error {
	if err := c.guard(); err != nil {
		return err
	}
	if !c.caps.SupportsInstancing {
		return fmt.Errorf("%w: instanced drawing", ErrNotSupported)
	}
	if baseInstance != 0 && !c.caps.SupportsBaseInstance {
		return fmt.Errorf("%w: base instance %d", ErrNotSupported, baseInstance)
	}
	mode, count, err := primitive(t, primitiveCount)
	if err != nil {
		return err
	}
	ib := c.indexBuffer
	if ib == nil {
		return ErrNoIndexBuffer
	}
	if err := c.applyState(ib); err != nil {
		return err
	}
	offset := startIndex * ib.size
	switch {
	case baseInstance != 0:
		if err := c.vertices.Apply(c.vertexBindings, c.program, 0); err != nil {
			return err
		}
		c.f.DrawElementsInstancedBaseVertexBaseInstance(mode, int32(count), ib.typ, offset,
			int32(instanceCount), int32(baseVertex), uint32(baseInstance))
	case c.caps.SupportsBaseVertex:
		if err := c.vertices.Apply(c.vertexBindings, c.program, 0); err != nil {
			return err
		}
		c.f.DrawElementsInstancedBaseVertex(mode, int32(count), ib.typ, offset, int32(instanceCount), int32(baseVertex))
	default:
		if err := c.vertices.Apply(c.vertexBindings, c.program, baseVertex); err != nil {
			return err
		}
		c.f.DrawElementsInstanced(mode, int32(count), ib.typ, offset, int32(instanceCount))
	}
	return c.finishDraw("draw instanced primitives", primitiveCount, instanceCount)
}

// DrawUserPrimitives draws non-indexed primitives from caller memory laid
// out by decl, starting at vertices[vertexOffset]. The slice is pinned
// until the native draw returns.
func DrawUserPrimitives[V any](c *Context, t gputypes.PrimitiveTopology, vertices []V, vertexOffset, primitiveCount int, decl *graphics.VertexDeclaration) error {
	if err := c.guard(); err != nil {
		return err
	}
	if decl == nil {
		return ErrNoDeclaration
	}
	mode, count, err := primitive(t, primitiveCount)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if vertexOffset < 0 || vertexOffset+count > len(vertices) {
		return fmt.Errorf("%w: %d vertices from %d, %d supplied", ErrDataTooShort, count, vertexOffset, len(vertices))
	}
	if err := c.applyState(nil); err != nil {
		return err
	}

	var pin runtime.Pinner
	pin.Pin(&vertices[vertexOffset])
	defer pin.Unpin()

	if err := c.vertices.ApplyClient(decl, c.program, unsafe.Pointer(&vertices[vertexOffset])); err != nil {
		return err
	}
	c.f.DrawArrays(mode, 0, int32(count))
	return c.finishDraw("draw user primitives", primitiveCount, 1)
}

// DrawUserIndexedPrimitives draws indexed primitives from caller memory.
// Indices are read from indices[indexOffset] and are relative to
// vertices[vertexOffset]. Both slices are pinned until the native draw
// returns.
func DrawUserIndexedPrimitives[V any, I uint16 | uint32](c *Context, t gputypes.PrimitiveTopology, vertices []V, vertexOffset int, indices []I, indexOffset, primitiveCount int, decl *graphics.VertexDeclaration) error {
	if err := c.guard(); err != nil {
		return err
	}
	if decl == nil {
		return ErrNoDeclaration
	}
	mode, count, err := primitive(t, primitiveCount)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if indexOffset < 0 || indexOffset+count > len(indices) {
		return fmt.Errorf("%w: %d indices from %d, %d supplied", ErrDataTooShort, count, indexOffset, len(indices))
	}
	if vertexOffset < 0 || vertexOffset >= len(vertices) {
		return fmt.Errorf("%w: vertex offset %d, %d supplied", ErrDataTooShort, vertexOffset, len(vertices))
	}
	typ := gl.Enum(gl.UNSIGNED_SHORT)
	if unsafe.Sizeof(indices[0]) == 4 {
		typ = gl.UNSIGNED_INT
	}
	if err := c.applyState(nil); err != nil {
		return err
	}
	c.bindIndex(0)

	var pin runtime.Pinner
	pin.Pin(&vertices[vertexOffset])
	pin.Pin(&indices[indexOffset])
	defer pin.Unpin()

	if err := c.vertices.ApplyClient(decl, c.program, unsafe.Pointer(&vertices[vertexOffset])); err != nil {
		return err
	}
	c.f.ClientDrawElements(mode, int32(count), typ, unsafe.Pointer(&indices[indexOffset]))
	return c.finishDraw("draw user indexed primitives", primitiveCount, 1)
}
