package stream

// Batch carries rows read by one partition reader to the next pipeline step.
// A row holds the scanned column values in query order, with nil for NULL.
type Batch struct {
	Partition int
	Rows      [][]interface{}
}

// NewBatch returns an empty batch with room for capacity rows.
func NewBatch(partition int, capacity int) Batch {
	if capacity < 0 {
		capacity = 0
	}
	return Batch{Partition: partition, Rows: make([][]interface{}, 0, capacity)}
}

func (b *Batch) Append(row []interface{}) {
	b.Rows = append(b.Rows, row)
}

func (b Batch) Len() int {
	return len(b.Rows)
}

// IsFull is true once the batch holds at least size rows. A size of 0 or less never fills.
func (b Batch) IsFull(size int) bool {
	return size > 0 && len(b.Rows) >= size
}
