package render

import "icarus/internal/gpu"

// meshScope holds a bound vertex array with its attributes enabled.
type meshScope struct {
	backend Backend
	slots   []uint32
	done    bool
}

// bindMesh binds m and enables the attribute slots it carries. The returned
// scope must be released before the next mesh is bound.
func bindMesh(b Backend, m gpu.Mesh) *meshScope {
	b.BindVertexArray(m.VAO)
	for _, s := range m.Slots {
		b.EnableAttribute(s)
	}
	return &meshScope{backend: b, slots: m.Slots}
}

// Release disables the attributes and unbinds the vertex array. Calling it
// more than once has no further effect.
func (s *meshScope) Release() {
	if s.done {
		return
	}
	s.done = true
	for i := len(s.slots) - 1; i >= 0; i-- {
		s.backend.DisableAttribute(s.slots[i])
	}
	s.backend.BindVertexArray(0)
}

// cullScope turns back-face culling off for transparent materials and back on
// when released.
type cullScope struct {
	backend  Backend
	disabled bool
}

func disableCullingIf(b Backend, transparent bool) cullScope {
	if transparent {
		b.SetBackFaceCulling(false)
	}
	return cullScope{backend: b, disabled: transparent}
}

func (s cullScope) Release() {
	if s.disabled {
		s.backend.SetBackFaceCulling(true)
	}
}
