package constants

import (
	"path/filepath"
	"strings"
)

// AllowedExtensions holds the file extensions accepted for paper ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// XLSXContentType is the MIME type of the batch export.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowed reports whether name carries an accepted extension.
func IsAllowed(name string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(name))]
	return ok
}

// SafeFileName drops directory components and replaces spaces with underscores.
func SafeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "document.pdf"
	}
	return strings.ReplaceAll(base, " ", "_")
}
