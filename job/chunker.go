package job

import "iter"

// chunksPerWorker is how many chunks each worker gets on average; more than
// one per worker evens out load when element costs vary.
const chunksPerWorker = 4

// Chunk is a contiguous run of input elements. Index is its position in the
// input and the only key used to order results.
type Chunk[T any] struct {
	Index int
	Items []T
}

// Len returns the number of elements in the chunk.
func (c Chunk[T]) Len() int {
	return len(c.Items)
}

// ChunkSize returns the default chunk size for n elements on a pool of the
// given number of workers: ceil(n / (workers*4)). It is 0 when n is 0.
func ChunkSize(n, workers int) int {
	if n <= 0 {
		return 0
	}
	d := max(workers, 1) * chunksPerWorker
	return (n + d - 1) / d
}

// ChunkCount returns how many chunks Split produces for n elements.
func ChunkCount(n, size int) int {
	if n <= 0 {
		return 0
	}
	if size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Split partitions items into chunks of size elements (the last one may be
// shorter). A non-positive size puts everything into one chunk. Chunks share
// the backing array of items but are capped so they cannot grow into each
// other.
func Split[T any](items []T, size int) []Chunk[T] {
	n := len(items)
	if n == 0 {
		return nil
	}
	if size <= 0 {
		size = n
	}

	chunks := make([]Chunk[T], 0, ChunkCount(n, size))
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		chunks = append(chunks, Chunk[T]{
			Index: len(chunks),
			Items: items[lo:hi:hi],
		})
	}
	return chunks
}

// SplitSeq chunks src as it is pulled, for sources whose length is unknown.
// A non-positive size is treated as 1.
func SplitSeq[T any](src iter.Seq[T], size int) iter.Seq[Chunk[T]] {
	size = max(size, 1)

	return func(yield func(Chunk[T]) bool) {
		index := 0
		buf := make([]T, 0, size)

		for v := range src {
			buf = append(buf, v)
			if len(buf) < size {
				continue
			}
			if !yield(Chunk[T]{Index: index, Items: buf}) {
				return
			}
			index++
			buf = make([]T, 0, size)
		}

		if len(buf) > 0 {
			yield(Chunk[T]{Index: index, Items: buf})
		}
	}
}
