package compute

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

func (s *SerialBackend) Name() string { return "serial" }
func (s *SerialBackend) Workers() int { return 1 }
func (s *SerialBackend) Cleanup()     {}

func (s *SerialBackend) For(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	fn(0, 0, n)
}
