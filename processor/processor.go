// Package processor provides content processing implementations.
//
// The HTML processor parses a page into a lightweight tree, schedules one
// translation per text-bearing element and per allow-listed attribute,
// waits for every pending translation and serializes the result.
package processor

import "github.com/ZaguanLabs/sitelai"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = sitelai.ContentProcessor

// Failure is an alias to the main package type.
type Failure = sitelai.Failure
