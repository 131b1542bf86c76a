package utils

import "github.com/microcosm-cc/bluemonday"

// User-generated content policy, applied to journal entries and chat
// messages before they are stored.
var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips markup the UGC policy disallows.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
