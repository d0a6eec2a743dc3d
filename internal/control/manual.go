package control

import (
	"sync"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// Manual holds the pointer last reported by the user. It is written from the
// UI goroutine and sampled from the simulation loop.
type Manual struct {
	mu  sync.Mutex
	ptr mpm.Pointer
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Set(ptr mpm.Pointer) {
	m.mu.Lock()
	m.ptr = ptr
	m.mu.Unlock()
}

// Move updates the position without changing the pressed state.
func (m *Manual) Move(ptr mpm.Pointer) {
	m.mu.Lock()
	m.ptr.Pos, m.ptr.HasPos = ptr.Pos, ptr.HasPos
	m.mu.Unlock()
}

// Release lifts the pointer but keeps its last position.
func (m *Manual) Release() {
	m.mu.Lock()
	m.ptr.Pressed = false
	m.mu.Unlock()
}

func (m *Manual) Sample(tick int) mpm.Pointer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ptr
}
