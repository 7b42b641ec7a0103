package compute

import (
	"runtime"
	"sync"
)

const defaultMinChunk = 64

// CPUBackend splits items into contiguous chunks, one per worker. Scatter
// work lands in per-worker buffers that are summed into the destination in
// worker order once every worker has finished.
type CPUBackend struct {
	workers  int
	minChunk int
}

// NewCPUBackend returns a backend with the given number of workers; workers
// <= 0 uses runtime.NumCPU().
func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{
		workers:  workers,
		minChunk: defaultMinChunk,
	}
}

// WithMinChunk sets the batch size under which work runs serially.
func (c *CPUBackend) WithMinChunk(n int) *CPUBackend {
	if n < 1 {
		n = 1
	}
	c.minChunk = n
	return c
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) split(n int) (workers, chunkSize int) {
	workers = c.workers
	if n/c.minChunk < workers {
		workers = n / c.minChunk
	}
	if workers < 1 {
		workers = 1
	}
	chunkSize = (n + workers - 1) / workers
	return workers, chunkSize
}

func (c *CPUBackend) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers, chunkSize := c.split(n)
	if workers == 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

func (c *CPUBackend) ScatterAdd(dst []float64, width, n int, fn func(i int, acc *Accumulator)) {
	if n <= 0 {
		return
	}
	workers, chunkSize := c.split(n)

	local := make([]*Accumulator, workers)
	for w := range local {
		local[w] = newAccumulator(len(dst), width)
	}

	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i, local[0])
		}
	} else {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			start := w * chunkSize
			end := start + chunkSize
			if end > n {
				end = n
			}
			if start >= end {
				continue
			}

			wg.Add(1)
			go func(acc *Accumulator, s, e int) {
				defer wg.Done()
				for i := s; i < e; i++ {
					fn(i, acc)
				}
			}(local[w], start, end)
		}
		wg.Wait()
	}

	for w := 0; w < workers; w++ {
		for k, v := range local[w].buf {
			dst[k] += v
		}
	}
}
