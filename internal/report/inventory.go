package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/pgzip"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// InventoryWriter streams file descriptors as gzip-compressed JSON lines.
// Write is safe for concurrent use.
type InventoryWriter struct {
	mu    sync.Mutex
	file  *os.File
	gz    *pgzip.Writer
	enc   *json.Encoder
	count uint64
}

// NewInventoryWriter creates path and returns a writer for it
func NewInventoryWriter(path string) (*InventoryWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}
	gz := pgzip.NewWriter(f)
	return &InventoryWriter{
		file: f,
		gz:   gz,
		enc:  json.NewEncoder(gz),
	}, nil
}

// Write appends one descriptor
func (w *InventoryWriter) Write(fd *models.FileDescriptor) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(fd); err != nil {
		return fmt.Errorf("failed to write inventory entry %s: %w", fd.Path, err)
	}
	w.count++
	return nil
}

// Count returns the number of descriptors written so far
func (w *InventoryWriter) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes the compressor and closes the file
func (w *InventoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.gz.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush inventory: %w", err)
	}
	return w.file.Close()
}

// ReadInventory decodes every descriptor from a gzip JSON lines stream
func ReadInventory(r io.Reader) ([]models.FileDescriptor, error) {
	gz, err := pgzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer gz.Close()

	var files []models.FileDescriptor
	dec := json.NewDecoder(gz)
	for {
		var fd models.FileDescriptor
		if err := dec.Decode(&fd); err == io.EOF {
			break
		} else if err != nil {
			return files, fmt.Errorf("failed to decode inventory: %w", err)
		}
		files = append(files, fd)
	}
	return files, nil
}
