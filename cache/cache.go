// Package cache provides translation caching implementations.
//
// Keys are built by the dispatcher from the text hash, the language pair
// and the payload format, so a single cache can serve every language of
// a site.
package cache

import "github.com/ZaguanLabs/sitelai"

// TranslationCache is an alias to the main package interface.
type TranslationCache = sitelai.TranslationCache

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
}
