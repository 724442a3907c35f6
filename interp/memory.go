package interp

const pageSize = 4096
const pageMask = pageSize - 1

// Memory is a sparse little-endian guest memory backed by a page map.
// Untouched pages read as zero; writes allocate their page on demand.
type Memory struct {
	pages map[uint64]*[pageSize]byte
}

// NewMemory creates an empty guest memory.
func NewMemory() *Memory {
	return &Memory{pages: map[uint64]*[pageSize]byte{}}
}

func (m *Memory) page(addr uint64, create bool) *[pageSize]byte {
	base := addr &^ uint64(pageMask)
	p := m.pages[base]
	if p == nil && create {
		p = &[pageSize]byte{}
		m.pages[base] = p
	}
	return p
}

// Read returns the size-byte little-endian value at addr. Accesses may
// cross page boundaries.
func (m *Memory) Read(addr uint64, size int) uint64 {
	var v uint64
	for i := 0; i < size; i++ {
		a := addr + uint64(i)
		if p := m.page(a, false); p != nil {
			v |= uint64(p[a&pageMask]) << (8 * i)
		}
	}
	return v
}

// Write stores the low size bytes of val at addr, little-endian.
func (m *Memory) Write(addr uint64, size int, val uint64) {
	for i := 0; i < size; i++ {
		a := addr + uint64(i)
		m.page(a, true)[a&pageMask] = byte(val >> (8 * i))
	}
}

// WriteBytes copies data into guest memory starting at addr.
func (m *Memory) WriteBytes(addr uint64, data []byte) {
	for i, b := range data {
		a := addr + uint64(i)
		m.page(a, true)[a&pageMask] = b
	}
}

// ReadBytes copies n bytes of guest memory starting at addr.
func (m *Memory) ReadBytes(addr uint64, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		a := addr + uint64(i)
		if p := m.page(a, false); p != nil {
			out[i] = p[a&pageMask]
		}
	}
	return out
}

// ReadInsn returns the 32-bit opcode word at addr, satisfying the
// translator's code reader.
func (m *Memory) ReadInsn(addr uint64) uint32 {
	return uint32(m.Read(addr, 4))
}
