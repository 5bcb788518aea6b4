package generator

import "sync"

const numWorkers = 4

// parallelFor splits [0, n) into at most numWorkers contiguous chunks of at
// least minChunk elements. Chunk boundaries depend only on n and minChunk.
func parallelFor(n, minChunk int, fn func(start, end int)) {
	if n <= minChunk {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
