package stats

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileHeader is written as the first line of a new metrics file.
const fileHeader = "Chain Length, Block Generation Time, Transactions Per Block, Confirmed Transaction Rate, Accumulated Rewards\n"

// File appends snapshots to a text file, one comma separated line each.
type File struct {
	mu   sync.Mutex
	file *os.File
}

// NewFile opens the metrics file for appending, creating it with a header
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

// Write appends the snapshot to the metrics file.
func (f *File) Write(snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := fmt.Fprintf(f.file, "%d, %v, %v, %v, %v\n",
		snap.ChainLength,
		snap.BlockGenerationTime,
		snap.TransPerBlock,
		snap.ConfirmedTransRate,
		snap.AccumulatedRewards,
	)
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return nil
}

// Close closes the metrics file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.file.Close()
}
