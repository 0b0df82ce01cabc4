package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputSize bounds one command line.
const MaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput enforces the size limit, validates UTF-8 and strips control characters
// (ANSI escapes, NUL, BEL) that would corrupt the terminal or the logs. Tabs become spaces.
func SanitizeInput(input string) (string, error) {
	if len(input) > MaxInputSize {
		// Rejected rather than truncated so a command is never half-applied.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), MaxInputSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	var sb strings.Builder
	sb.Grow(len(input))
	for _, r := range input {
		switch {
		case r == '\t':
			sb.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
