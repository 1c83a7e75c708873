package constants

import "strings"

// FileTypes holds the recognized input kinds for an upload.
var FileTypes = []string{"IMAGE", "TXT"}

// AllowedExtensions holds the default allowed file extensions for receipt
// ingestion. Text files carry pre-extracted OCR output and skip the OCR stage.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"txt":  {},
}

// ImageExtensions holds the extensions routed through the OCR adapter.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether the extension belongs to an image upload.
func IsImageExt(ext string) bool {
	_, ok := ImageExtensions[NormalizeExt(ext)]
	return ok
}
