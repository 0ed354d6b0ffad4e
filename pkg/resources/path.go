package resources

import (
	"path/filepath"
	"strings"
)

// Both separators are stripped on every platform; archives built on Windows
// and on Unix are read the same way.
const entryPathSeparators = "/\\"

// SanitizeEntryPath strips leading separators so an entry path can never be
// taken as absolute. Embedded ".." segments are left alone; see EscapesRoot.
func SanitizeEntryPath(entryPath string) string {
	return strings.TrimLeft(entryPath, entryPathSeparators)
}

// EscapesRoot reports whether a sanitized relative path resolves outside the
// directory it is joined onto.
func EscapesRoot(relPath string) bool {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	return cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator))
}
