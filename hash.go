package sitelai

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a text hash and the language pair.
func CacheKey(hash, sourceLang, targetLang string) string {
	return hash + ":" + sourceLang + ":" + targetLang
}

// CacheKeyExtended generates a cache key that also separates payload formats,
// so a plain-text and a markup translation of the same string never collide.
func CacheKeyExtended(hash, sourceLang, targetLang string, format TextFormat) string {
	return CacheKey(hash, sourceLang, targetLang) + ":" + string(format)
}
