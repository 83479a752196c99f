package service

import (
	"regexp"
	"strings"
)

// Contact-info patterns stripped from free text before storage. The
// community exchanges contact details only after a confirmed booking.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	urlPattern   = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{5,}\d`)
	spacePattern = regexp.MustCompile(`\s+`)
)

const removedPlaceholder = "[removed]"

// SanitizeText strips email addresses, URLs, and phone-number shapes
// from free text, replacing each with a placeholder, and collapses
// whitespace.
func SanitizeText(text string) string {
	text = emailPattern.ReplaceAllString(text, removedPlaceholder)
	text = urlPattern.ReplaceAllString(text, removedPlaceholder)
	text = phonePattern.ReplaceAllString(text, removedPlaceholder)
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
