package stream

import (
	"runtime"
	"sync"
)

// ParallelFor executes fn over [0, n) in parallel chunks and waits for all
// chunks to complete before returning. Work units must be independent: fn
// may not write to state shared with another chunk. Ranges smaller than
// minChunk run on the calling goroutine to avoid scheduling overhead.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if minChunk > 0 && n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			if s < e {
				fn(s, e)
			}
		}(start, end)
	}

	wg.Wait()
}
