package compute

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		workers  int
		wantName string
	}{
		{"serial", "serial", 0, "serial"},
		{"cpu explicit workers", "cpu", 3, "cpu"},
		{"cpu default workers", "cpu", 0, "cpu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(tt.backend, tt.workers)
			if err != nil {
				t.Fatalf("NewBackend failed: %v", err)
			}
			if b.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", b.Name(), tt.wantName)
			}
			if b.Workers() < 1 {
				t.Errorf("Workers() = %d, want >= 1", b.Workers())
			}
			if tt.workers > 0 && b.Workers() != tt.workers {
				t.Errorf("Workers() = %d, want %d", b.Workers(), tt.workers)
			}
		})
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := NewBackend("cuda", 0)
	if !errors.Is(err, dynamo.ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestBackendFor_CoversRange(t *testing.T) {
	backends := []Backend{NewSerialBackend(), NewCPUBackend(1), NewCPUBackend(4), NewCPUBackend(16)}
	sizes := []int{0, 1, 63, 64, 65, 1000, 4097}

	for _, b := range backends {
		for _, n := range sizes {
			hits := make([]int32, n)
			b.For(n, func(worker, start, end int) {
				if worker < 0 || worker >= b.Workers() {
					t.Errorf("%s: worker %d out of range", b.Name(), worker)
				}
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("%s n=%d: index %d visited %d times", b.Name(), n, i, h)
				}
			}
		}
	}
}

func TestSetBackend(t *testing.T) {
	prev := GetBackend()
	defer SetBackend(prev)

	SetBackend(NewSerialBackend())
	if GetBackend().Name() != "serial" {
		t.Errorf("expected serial backend, got %s", GetBackend().Name())
	}
}

func BenchmarkCPUFor(b *testing.B) {
	backend := NewCPUBackend(0)
	data := make([]float64, 1<<16)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.For(len(data), func(worker, start, end int) {
			for j := start; j < end; j++ {
				data[j] += 1
			}
		})
	}
}
