package scan

import (
	"path/filepath"
	"strings"
)

// ContainsBanWord reports whether s contains any of words as a literal,
// case-sensitive substring. An empty word list never matches.
func ContainsBanWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FolderBanned matches folder ban-words against the whole path.
func FolderBanned(path string, words []string) bool {
	return ContainsBanWord(path, words)
}

// ExecutableBanned matches executable ban-words against the file name only.
func ExecutableBanned(path string, words []string) bool {
	return ContainsBanWord(filepath.Base(path), words)
}
