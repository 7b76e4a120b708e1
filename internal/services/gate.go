// Package services – authorization gate and trigger parsing
//
// Pure decision helpers for the webhook pipeline. They carry no state and no
// I/O: the caller passes the current settings snapshot in.

package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsAuthorized reports whether the sender may use the assistant. An empty
// allow list means the gate is open and every sender is authorized.
func IsAuthorized(sender string, allowList map[string]struct{}) bool {
	if len(allowList) == 0 {
		return true
	}
	_, ok := allowList[sender]
	return ok
}

// ParseTrigger checks text for the trigger word, case-insensitively, anywhere
// in the message. On a match it returns the text with the first occurrence of
// the trigger removed and surrounding whitespace trimmed, and ok=true. The
// returned query may still be empty when the message was only the trigger.
func ParseTrigger(text, trigger string) (query string, ok bool) {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return "", false
	}
	start, end := foldIndex(text, trigger)
	if start < 0 {
		return "", false
	}
	query = text[:start] + text[end:]
	return strings.TrimSpace(query), true
}

// foldIndex returns the byte range [start, end) of the first
// case-insensitive occurrence of substr in s, or (-1, -1). The range is
// computed on s itself: lower-casing s can change rune byte lengths
// (U+0130 and friends), so offsets into a lowered copy do not transfer.
func foldIndex(s, substr string) (start, end int) {
	for i := range s {
		if n, ok := foldPrefixLen(s[i:], substr); ok {
			return i, i + n
		}
	}
	return -1, -1
}

// foldPrefixLen reports how many bytes of s a case-insensitive match of
// prefix consumes.
func foldPrefixLen(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || unicode.ToLower(r) != unicode.ToLower(pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}
