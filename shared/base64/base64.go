// Package base64 inspects data-URI payloads submitted as base64 strings.
package base64

import "strings"

const (
	schemePrefix = "data:"
	encodingMark = ";base64,"
)

// GetContentType extracts the MIME type from a data URI such as
// "data:image/png;base64,...". It returns an empty string when the
// input is not a well-formed data URI.
func GetContentType(file string) string {
	start := len(schemePrefix)
	end := strings.Index(file, encodingMark)

	if end == -1 || end < start {
		return ""
	}

	return file[start:end]
}
