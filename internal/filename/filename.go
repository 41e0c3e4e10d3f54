// Package filename derives screenshot file names from window labels.
package filename

import (
	"strings"
	"time"
)

const (
	// TimestampLayout renders as YYYYMMDD-HHMMSS.
	TimestampLayout = "20060102-150405"
	// Extension is appended to every generated name.
	Extension = ".png"
	// FallbackLabel replaces labels that sanitize to nothing.
	FallbackLabel = "screenshot"
)

var separators = strings.NewReplacer("/", "_", " ", "_")

// Sanitize makes label safe to embed in a file name: surrounding whitespace
// is trimmed, slashes and spaces become underscores and leading underscores
// are dropped. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(label string) string {
	s := strings.TrimLeft(separators.Replace(strings.TrimSpace(label)), "_")
	// Stripping underscores can expose whitespace other than ' ' (tabs, NBSP).
	for {
		next := strings.TrimLeft(strings.TrimSpace(s), "_")
		if next == s {
			return s
		}
		s = next
	}
}

// Build returns "{label}-{YYYYMMDD-HHMMSS}.png" for the capture taken at t.
// Two captures of the same label within one second get the same name.
func Build(label string, t time.Time) string {
	safe := Sanitize(label)
	if safe == "" {
		safe = FallbackLabel
	}
	return safe + "-" + t.Format(TimestampLayout) + Extension
}
