package util

import (
	"regexp"
	"unicode"
)

var nonRFC1123 = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// Sanitizes a name so it is compliant with RFC 1123, which is the Kubernetes standard
// for object names. See https://kubernetes.io/docs/concepts/overview/working-with-objects/names/
func SanitizeNameRFC1123(name string) string {
	sanitized := nonRFC1123.ReplaceAllString(name, "")

	// The name must start with a letter
	if sanitized == "" || !unicode.IsLetter(rune(sanitized[0])) {
		sanitized = "a" + sanitized
	}

	lengthLimit := 253
	if len(sanitized) > lengthLimit {
		sanitized = sanitized[:lengthLimit]
	}

	return sanitized
}
