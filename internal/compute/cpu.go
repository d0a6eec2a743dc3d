package compute

import (
	"runtime"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

// minChunk keeps tiny loops off the goroutine path.
const minChunk = 64

type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{
		workers: workers,
	}
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }
func (c *CPUBackend) Cleanup()     {}

func (c *CPUBackend) For(n int, fn func(worker, start, end int)) {
	dynamo.ParallelFor(n, c.workers, minChunk, fn)
}
