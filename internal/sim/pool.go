package sim

import (
	"sync"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// FramePool recycles particle view buffers between frames.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(size int) *FramePool {
	return &FramePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]mpm.ParticleView, size)
			},
		},
	}
}

func (p *FramePool) Size() int { return p.size }

func (p *FramePool) Get() []mpm.ParticleView {
	return p.pool.Get().([]mpm.ParticleView)
}

func (p *FramePool) Put(v []mpm.ParticleView) {
	if cap(v) >= p.size {
		p.pool.Put(v[:p.size])
	}
}
