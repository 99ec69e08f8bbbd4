package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaguanLabs/sitelai"
)

// DirWriter writes documents below a local directory, creating parent
// directories as needed. Each file is written to a temporary name and
// renamed into place.
type DirWriter struct {
	root string
	perm os.FileMode
}

// NewDirWriter creates a writer rooted at dir.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{root: dir, perm: 0o644}
}

// Root returns the output directory.
func (w *DirWriter) Root() string {
	return w.root
}

// Write implements Writer.
func (w *DirWriter) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &sitelai.WriteError{Path: name, Cause: err}
	}

	clean, err := cleanName(name)
	if err != nil {
		return &sitelai.WriteError{Path: name, Cause: err}
	}

	target := filepath.Join(w.root, filepath.FromSlash(clean))
	if err := w.writeFile(target, data); err != nil {
		return &sitelai.WriteError{Path: target, Cause: err}
	}
	return nil
}

func (w *DirWriter) writeFile(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sitelai-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing: %w", err)
	}
	if err := tmp.Chmod(w.perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Verify DirWriter implements Writer
var _ Writer = (*DirWriter)(nil)
