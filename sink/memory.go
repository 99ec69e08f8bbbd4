package sink

import (
	"context"
	"sort"
	"sync"

	"github.com/ZaguanLabs/sitelai"
)

// MemoryWriter keeps documents in memory. It is used by dry runs and
// tests and is safe for concurrent use.
type MemoryWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemoryWriter creates an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{files: make(map[string][]byte)}
}

// Write implements Writer.
func (w *MemoryWriter) Write(ctx context.Context, name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return &sitelai.WriteError{Path: name, Cause: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[clean] = append([]byte(nil), data...)
	return nil
}

// File returns the content written under name.
func (w *MemoryWriter) File(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, ok := w.files[name]
	return string(data), ok
}

// Names returns the written names in sorted order.
func (w *MemoryWriter) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.files))
	for name := range w.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verify MemoryWriter implements Writer
var _ Writer = (*MemoryWriter)(nil)
