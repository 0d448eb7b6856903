package reward

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileHeader is written as the first line of a new rewards file.
const fileHeader = "Miner Address, Amount\n"

// File represents the storage implementation for appending reward entries
// to a text file, one line per reward. This implements the Storer interface.
type File struct {
	mu   sync.Mutex
	file *os.File
}

// NewFile opens the rewards file for appending, creating it with a header
// line if it doesn't exist.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	_, err := os.Stat(path)
	isNew := errors.Is(err, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	if isNew {
		if _, err := f.WriteString(fileHeader); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &File{file: f}, nil
}

// Write appends the entry to the rewards file.
func (f *File) Write(entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := fmt.Fprintf(f.file, "%s: %v\n", entry.Miner, entry.Amount); err != nil {
		return fmt.Errorf("write reward: %w", err)
	}

	return nil
}

// Close closes the rewards file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.file.Close()
}
