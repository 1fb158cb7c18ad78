package task

// OwnedRows
// Rows are dealt out round-robin: rank k owns k, k+size, k+2*size, ... below imageSize
func OwnedRows(rank int, size int, imageSize int) []int {
	if size < 1 || rank < 0 || rank >= size {
		return nil
	}
	rows := make([]int, 0, imageSize/size+1)
	for row := rank; row < imageSize; row += size {
		rows = append(rows, row)
	}
	return rows
}

func Owner(row int, size int) int {
	return row % size
}

// Wave
// Returns the rows computed across all ranks in the round-robin iteration starting at base. They are contiguous and
// increasing, so appending them in rank order keeps the image in row-major order.
func Wave(base int, size int, imageSize int) []int {
	rows := make([]int, 0, size)
	for rank := 0; rank < size && base+rank < imageSize; rank++ {
		rows = append(rows, base+rank)
	}
	return rows
}
