package compute

import (
	"fmt"
	"runtime"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

type Backend interface {
	Name() string
	// Workers is the upper bound on distinct worker indices passed to For.
	Workers() int
	For(n int, fn func(worker, start, end int))
	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelectBackend picks the CPU backend when more than one core is available.
func AutoSelectBackend() Backend {
	if runtime.NumCPU() > 1 {
		return NewCPUBackend(0)
	}
	return NewSerialBackend()
}

// NewBackend builds a backend by name. workers <= 0 means runtime.NumCPU.
func NewBackend(name string, workers int) (Backend, error) {
	switch name {
	case "", "auto":
		return AutoSelectBackend(), nil
	case "cpu":
		return NewCPUBackend(workers), nil
	case "serial":
		return NewSerialBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownBackend, name, Names())
	}
}

func Names() []string {
	return []string{"auto", "cpu", "serial"}
}
