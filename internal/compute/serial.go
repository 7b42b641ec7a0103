package compute

// SerialBackend runs every batch on the calling goroutine. The scatter still
// goes through a private buffer so that its semantics match CPUBackend.
type SerialBackend struct {
	acc *Accumulator
}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

func (s *SerialBackend) Name() string { return "serial" }
func (s *SerialBackend) Workers() int { return 1 }

func (s *SerialBackend) ParallelFor(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}

func (s *SerialBackend) ScatterAdd(dst []float64, width, n int, fn func(i int, acc *Accumulator)) {
	if n <= 0 {
		return
	}
	if s.acc == nil || len(s.acc.buf) != len(dst) || s.acc.width != width {
		s.acc = newAccumulator(len(dst), width)
	} else {
		s.acc.reset()
	}
	for i := 0; i < n; i++ {
		fn(i, s.acc)
	}
	for k, v := range s.acc.buf {
		dst[k] += v
	}
}
