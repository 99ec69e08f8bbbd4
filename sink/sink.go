// Package sink persists translated pages: to a local directory, to an S3
// bucket, or to memory for tests and dry runs.
package sink

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Writer stores one translated document under a slash-separated name
// such as "es/about.html".
type Writer interface {
	Write(ctx context.Context, name string, data []byte) error
}

// ErrInvalidName is returned for names that are empty, absolute or that
// climb out of the output root.
var ErrInvalidName = errors.New("invalid output name")

// cleanName validates a document name and returns its clean form.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return "", ErrInvalidName
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidName
	}
	return clean, nil
}

// contentType guesses the MIME type of a page from its extension.
func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}
