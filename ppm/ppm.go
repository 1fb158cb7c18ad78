// Package ppm writes square binary portable pixmaps (P6) one row at a time, either appended in order or placed at
// their fixed byte offsets.
package ppm

import (
	"errors"
	"fmt"
)

const (
	Magic    = "P6"
	MaxValue = 255

	// BytesPerPixel is one byte each for red, green and blue
	BytesPerPixel = 3
)

var (
	ErrOutOfOrder = errors.New("row appended out of order")
	ErrRowLength  = errors.New("row has the wrong length")
	ErrRowRange   = errors.New("row outside of the image")
)

func Header(size int) string {
	return fmt.Sprintf("%s\n%d %d %d\n", Magic, size, size, MaxValue)
}

// HeaderLength depends only on size, so every process computes the same value without asking the one that wrote it
func HeaderLength(size int) int64 {
	return int64(len(Header(size)))
}

func RowBytes(size int) int {
	return BytesPerPixel * size
}

// RowOffset is where row's pixel data begins, no matter which process writes it
func RowOffset(size int, row int) int64 {
	return HeaderLength(size) + int64(RowBytes(size))*int64(row)
}

// FileLength is the length of a complete image
func FileLength(size int) int64 {
	return RowOffset(size, size)
}

func checkRow(size int, row int, data []byte) error {
	if row < 0 || row >= size {
		return fmt.Errorf("%w: row %d of %d", ErrRowRange, row, size)
	}
	if len(data) != RowBytes(size) {
		return fmt.Errorf("%w: row %d has %d bytes, want %d", ErrRowLength, row, len(data), RowBytes(size))
	}
	return nil
}
