package compute

// Backend executes batched per-item work. Scatter operations reduce into a
// shared destination with sum semantics, so the result does not depend on
// which item touched a slot first.
type Backend interface {
	Name() string
	Workers() int
	ParallelFor(n int, fn func(start, end int))
	ScatterAdd(dst []float64, width, n int, fn func(i int, acc *Accumulator))
}

// Accumulator is a private, zero-initialised buffer laid out like the
// destination of a ScatterAdd call: slot (key, comp) lives at key*width+comp.
type Accumulator struct {
	buf   []float64
	width int
}

func newAccumulator(size, width int) *Accumulator {
	return &Accumulator{buf: make([]float64, size), width: width}
}

// Add sums v into component comp of key.
func (a *Accumulator) Add(key, comp int, v float64) {
	a.buf[key*a.width+comp] += v
}

// AddVec sums every component of v into key.
func (a *Accumulator) AddVec(key int, v []float64) {
	off := key * a.width
	for c, x := range v {
		a.buf[off+c] += x
	}
}

func (a *Accumulator) reset() {
	clear(a.buf)
}

// Default returns a CPU backend sized to the machine.
func Default() Backend {
	return NewCPUBackend(0)
}
