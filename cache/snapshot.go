package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SnapshotVersion is the format version written by Save.
const SnapshotVersion = "1"

// Snapshot is the JSON file a build keeps next to the site so the next
// build starts with the translations of the previous one.
type Snapshot struct {
	Version string            `json:"version"`
	SavedAt string            `json:"saved_at"`
	Entries []SnapshotEntry   `json:"entries"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// SnapshotEntry is a single cache entry.
type SnapshotEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Enumerable is a cache whose live entries can be listed.
type Enumerable interface {
	Entries() map[string]string
}

// Save writes the live entries of c as JSON, sorted by key.
func Save(w io.Writer, c Enumerable, meta map[string]string) error {
	data := c.Entries()
	entries := make([]SnapshotEntry, 0, len(data))
	for key, value := range data {
		entries = append(entries, SnapshotEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(Snapshot{
		Version: SnapshotVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Entries: entries,
		Meta:    meta,
	}); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot into c and returns the number of entries stored.
func Load(r io.Reader, c TranslationCache) (int, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return 0, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return 0, fmt.Errorf("unsupported snapshot version %q", snap.Version)
	}

	loaded := 0
	for _, e := range snap.Entries {
		if err := c.Set(e.Key, e.Value); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// SaveFile writes a snapshot atomically: to a temporary file in the same
// directory, renamed over path.
func SaveFile(path string, c Enumerable, meta map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sitelai-cache-*")
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Save(tmp, c, meta); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile loads a snapshot file. A missing file loads nothing.
func LoadFile(path string, c TranslationCache) (int, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	return Load(f, c)
}
