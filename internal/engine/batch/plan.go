package batch

// Chunk is one unit of work: a consecutive slice of the planned items.
type Chunk[T any] struct {
	// Index is the 0-based position of the chunk in the plan.
	Index int

	// Items are the chunk's elements in their original order.
	Items []T
}

// Plan partitions items into consecutive chunks of at most size elements.
// The last chunk may be smaller. Concatenating the chunks yields items.
// size must be at least 1.
func Plan[T any](items []T, size int) []Chunk[T] {
	if size < MinChunkSize {
		panic("batch: chunk size must be at least 1")
	}

	bounds := CalculateBatches(len(items), size)
	chunks := make([]Chunk[T], len(bounds))
	for i, b := range bounds {
		chunks[i] = Chunk[T]{Index: i, Items: items[b[0]:b[1]:b[1]]}
	}
	return chunks
}

// CalculateBatches returns the [start, end) index pairs of each chunk.
func CalculateBatches(totalItems, size int) [][2]int {
	total := TotalBatches(totalItems, size)
	batches := make([][2]int, total)

	for i := range total {
		start := i * size
		end := min(start+size, totalItems)
		batches[i] = [2]int{start, end}
	}

	return batches
}

// TotalBatches returns ceil(totalItems/size).
func TotalBatches(totalItems, size int) int {
	if totalItems <= 0 || size <= 0 {
		return 0
	}
	batches := totalItems / size
	if totalItems%size > 0 {
		batches++
	}
	return batches
}
