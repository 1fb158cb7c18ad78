package ppm

import (
	"bufio"
	"fmt"
	"os"

	"mandelbrot/misc"
)

// File is an image file being filled in. Appends are buffered, positional writes go straight to the file.
type File struct {
	appended int
	file     *os.File
	size     int
	writer   *bufio.Writer
}

// Create truncates or creates path and writes the header
func Create(path string, size int) (*File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create image %s - %w", path, err)
	}
	f := &File{
		file:   file,
		size:   size,
		writer: bufio.NewWriterSize(file, RowBytes(size)*4),
	}
	if _, err := f.writer.WriteString(Header(size)); err != nil {
		file.Close()
		return nil, fmt.Errorf("unable to write header of %s - %w", path, err)
	}
	return f, nil
}

// Open opens an image another process already created, for positional writes only
func Open(path string, size int) (*File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open image %s - %w", path, err)
	}
	return &File{
		appended: size,
		file:     file,
		size:     size,
		writer:   bufio.NewWriter(file),
	}, nil
}

func (f *File) Name() string {
	return f.file.Name()
}

func (f *File) Size() int {
	return f.size
}

// AppendRow writes the next row in sequence. Rows must arrive as 0, 1, 2, ... since appends cannot seek.
func (f *File) AppendRow(row int, data []byte) error {
	if err := checkRow(f.size, row, data); err != nil {
		return err
	}
	if row != f.appended {
		return fmt.Errorf("%w: got row %d, want row %d", ErrOutOfOrder, row, f.appended)
	}
	if _, err := f.writer.Write(data); err != nil {
		return fmt.Errorf("unable to append row %d to %s - %w", row, f.Name(), err)
	}
	f.appended++
	return nil
}

// WriteRow writes row at its fixed offset, independent of the append position
func (f *File) WriteRow(row int, data []byte) error {
	if err := checkRow(f.size, row, data); err != nil {
		return err
	}
	// The header may still be sitting in the append buffer
	if err := f.writer.Flush(); err != nil {
		return fmt.Errorf("unable to flush %s - %w", f.Name(), err)
	}
	if _, err := f.file.WriteAt(data, RowOffset(f.size, row)); err != nil {
		return fmt.Errorf("unable to write row %d to %s - %w", row, f.Name(), err)
	}
	return nil
}

// Allocate extends the file to the length of a complete image
func (f *File) Allocate() error {
	if err := f.writer.Flush(); err != nil {
		return fmt.Errorf("unable to flush %s - %w", f.Name(), err)
	}
	if err := f.file.Truncate(FileLength(f.size)); err != nil {
		return fmt.Errorf("unable to allocate %s - %w", f.Name(), err)
	}
	return nil
}

// Close flushes buffered rows and syncs the file to stable storage
func (f *File) Close() error {
	if err := f.writer.Flush(); err != nil {
		f.file.Close()
		return fmt.Errorf("unable to flush %s - %w", f.Name(), err)
	}
	return misc.SyncClose(f.file)
}
