// Package prompt normalizes user prompts and produces the acknowledgement
// returned by the ack CLI and the control API.
package prompt

import (
	"fmt"
	"strings"
	"unicode"

	apperrors "github.com/yanqian/twilight-hud/pkg/errors"
)

// EmptyResponse is returned when a prompt sanitizes to nothing.
const EmptyResponse = "Empty prompt."

// AckPrefix precedes every non-empty response. There is no separator space.
const AckPrefix = "ACK:"

// Result is the record produced by Pipeline.
type Result struct {
	Input  string `json:"input"`
	Clean  string `json:"clean"`
	Output string `json:"output"`
}

// Sanitize trims s and collapses every internal whitespace run into a single space.
// Whitespace is unicode.IsSpace plus the ASCII file, group, record and unit
// separators (U+001C to U+001F).
func Sanitize(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// SanitizeValue is Sanitize for untyped input such as decoded JSON. Anything
// that is not a string fails with a type_error.
func SanitizeValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperrors.Wrap(apperrors.CodeTypeError, fmt.Sprintf("prompt must be a string, got %T", v), nil)
	}
	return Sanitize(s), nil
}

// Respond acknowledges the sanitized prompt.
func Respond(prompt string) string {
	clean := Sanitize(prompt)
	if clean == "" {
		return EmptyResponse
	}
	return AckPrefix + clean
}

// Pipeline returns the raw input, its sanitized form and the response derived
// from the sanitized form.
func Pipeline(raw string) Result {
	clean := Sanitize(raw)
	return Result{
		Input:  raw,
		Clean:  clean,
		Output: Respond(clean),
	}
}
