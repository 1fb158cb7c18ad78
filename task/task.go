package task

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// NoMoreWork is the assignment sent to a worker once every row has been handed out
const NoMoreWork = -1

// AssignmentBytes is the encoded size of a single row assignment
const AssignmentBytes = 8

// AssignmentTag marks assignments sent to workers. Completed rows travel back tagged with their row index.
const AssignmentTag = 0

// RowRenderer turns a row index into the color bytes of that row. The buffer is reused when it is large enough.
type RowRenderer interface {
	RenderRow(row int, buffer []byte) []byte
	RowBytes() int
}

// Scanline holds the iteration counts of one image row in column order
type Scanline struct {
	Row        int
	Iterations []int
}

func (s *Scanline) String() string {
	output := "{Scanline "
	output += fmt.Sprintf("Row: %d ", s.Row)
	output += fmt.Sprintf("Columns: %d}", len(s.Iterations))
	return output
}

func EncodeAssignment(row int) []byte {
	payload := make([]byte, AssignmentBytes)
	binary.BigEndian.PutUint64(payload, uint64(int64(row)))
	return payload
}

func DecodeAssignment(payload []byte) (int, error) {
	if len(payload) != AssignmentBytes {
		return 0, fmt.Errorf("assignment must be %d bytes, got %d", AssignmentBytes, len(payload))
	}
	row := int(int64(binary.BigEndian.Uint64(payload)))
	if row < NoMoreWork {
		return 0, errors.New("assignment holds a negative row")
	}
	return row, nil
}
