package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
)

// Characters that are illegal inside a single path segment on at least one
// supported filesystem. Stripped, not replaced.
const illegalSegmentChars = `\/*?:"<>|`

// GetFileExtension extracts the lower-cased file extension from a path,
// or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// SanitizeSegment makes name safe to use as a single path segment by
// stripping illegal characters and surrounding whitespace. If nothing
// survives, fallback is returned so callers never produce an empty segment.
//
// SanitizeSegment is pure: identical inputs always yield identical output.
func SanitizeSegment(name string, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(illegalSegmentChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	sanitized := strings.TrimSpace(b.String())
	if sanitized == "" {
		return fallback
	}
	return sanitized
}

// IsNonEmptyFile reports whether a regular file exists at path with size > 0.
// It is a pure filesystem probe; it never touches the network.
func IsNonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}
