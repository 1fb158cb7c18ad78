package misc

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func ReadFile(fileName string) ([]byte, error) {
	if fileName == "" {
		return nil, errors.New("no filename supplied")
	}
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s - %w", fileName, err)
	}
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("unable to read %s - %w", fileName, err)
	}
	err = file.Close()
	if err != nil {
		return nil, fmt.Errorf("unable to close %s - %w", fileName, err)
	}

	return fileBytes, nil
}

// SyncClose flushes the file to stable storage before closing it
func SyncClose(file *os.File) error {
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("unable to sync %s - %w", file.Name(), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("unable to close %s - %w", file.Name(), err)
	}
	return nil
}
