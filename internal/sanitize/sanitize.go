// Package sanitize rewrites file names so they can be persisted on file
// systems with restrictive naming rules.
//
// Two independent settings select the behavior: how illegal characters are
// replaced (IllegalChars) and what happens to spaces (SpaceMode).
package sanitize

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// IllegalChars selects how characters that some file systems reject are
// rewritten.
type IllegalChars int

const (
	// ASCII replaces illegal characters with printable ASCII look-alikes.
	ASCII IllegalChars = iota
	// Unicode replaces illegal characters with visually similar Unicode symbols.
	Unicode
	// SpacesOnly leaves punctuation alone; only separators and spaces are handled.
	SpacesOnly
)

// SpaceMode selects what happens to spaces.
type SpaceMode int

const (
	// Underscore converts spaces to underscores.
	Underscore SpaceMode = iota
	// Remove deletes spaces.
	Remove
	// Keep leaves spaces in place.
	Keep
)

// Policy is one combination of the two sanitizing settings.
type Policy struct {
	Illegal IllegalChars
	Spaces  SpaceMode
}

// DefaultPolicy returns the ASCII/underscore policy.
func DefaultPolicy() Policy {
	return Policy{Illegal: ASCII, Spaces: Underscore}
}

// Policies returns every supported combination.
func Policies() []Policy {
	var out []Policy
	for _, ic := range []IllegalChars{ASCII, Unicode, SpacesOnly} {
		for _, sm := range []SpaceMode{Underscore, Remove, Keep} {
			out = append(out, Policy{Illegal: ic, Spaces: sm})
		}
	}
	return out
}

func (ic IllegalChars) String() string {
	switch ic {
	case ASCII:
		return "ascii"
	case Unicode:
		return "unicode"
	case SpacesOnly:
		return "spaces"
	}
	return fmt.Sprintf("IllegalChars(%d)", int(ic))
}

func (sm SpaceMode) String() string {
	switch sm {
	case Underscore:
		return "underscore"
	case Remove:
		return "remove"
	case Keep:
		return "keep"
	}
	return fmt.Sprintf("SpaceMode(%d)", int(sm))
}

func (p Policy) String() string {
	return p.Illegal.String() + "/" + p.Spaces.String()
}

// ParseIllegalChars maps a configuration value to an IllegalChars setting.
func ParseIllegalChars(s string) (IllegalChars, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascii", "":
		return ASCII, nil
	case "unicode":
		return Unicode, nil
	case "spaces", "none":
		return SpacesOnly, nil
	}
	return ASCII, fmt.Errorf("unknown illegal character mode %q", s)
}

// ParseSpaceMode maps a configuration value to a SpaceMode setting.
func ParseSpaceMode(s string) (SpaceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "underscore", "":
		return Underscore, nil
	case "remove":
		return Remove, nil
	case "keep":
		return Keep, nil
	}
	return Underscore, fmt.Errorf("unknown space mode %q", s)
}

// sentinel stands in for a structural path separator while a path is
// sanitized. U+FFFF is a noncharacter, so it never appears in real names.
const sentinel = '\uFFFF'

var asciiReplacements = map[rune]string{
	'\\': "-",
	'/':  "-",
	':':  "-",
	'|':  "-",
	'*':  "+",
	'?':  "_",
	'"':  "'",
	'<':  "(",
	'>':  ")",
}

var unicodeReplacements = map[rune]rune{
	'\\': '∖', // U+2216 SET MINUS
	'/':  '∕', // U+2215 DIVISION SLASH
	':':  '∶', // U+2236 RATIO
	'|':  '∣', // U+2223 DIVIDES
	'*':  '∗', // U+2217 ASTERISK OPERATOR
	'?':  '‽', // U+203D INTERROBANG
	'"':  '”', // U+201D RIGHT DOUBLE QUOTATION MARK
	'<':  '≺', // U+227A PRECEDES
	'>':  '≻', // U+227B SUCCEEDS
}

func isControl(r rune) bool {
	return (r >= 0x01 && r <= 0x1F) || r == 0x7F
}

// Sanitize rewrites s under policy p. Bytes before start are copied
// unchanged; start is clamped to the string and moved back to a rune
// boundary.
func Sanitize(s string, start int, p Policy) string {
	start = clampStart(s, start)

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:start])

	for _, r := range s[start:] {
		switch {
		case r == 0, r == '\r':
			// dropped under every policy
		case r == ' ':
			switch p.Spaces {
			case Underscore:
				b.WriteByte('_')
			case Remove:
			case Keep:
				b.WriteByte(' ')
			}
		default:
			writeReplacement(&b, r, p.Illegal)
		}
	}

	return trailingSpaces(b.String(), start, p.Spaces)
}

func writeReplacement(b *strings.Builder, r rune, ic IllegalChars) {
	switch ic {
	case ASCII:
		if rep, ok := asciiReplacements[r]; ok {
			b.WriteString(rep)
			return
		}
		if isControl(r) {
			b.WriteByte('_')
			return
		}
	case Unicode:
		if rep, ok := unicodeReplacements[r]; ok {
			b.WriteRune(rep)
			return
		}
		switch {
		case r == 0x7F:
			b.WriteRune('␡') // SYMBOL FOR DELETE
			return
		case isControl(r):
			b.WriteRune(0x2400 + r) // control pictures block
			return
		}
	case SpacesOnly:
		if r == '/' || r == '\\' {
			b.WriteByte('-')
			return
		}
	}
	b.WriteRune(r)
}

// trailingSpaces applies the trailing-space rule to the part of s after
// start, scanning backward while the last character is a space.
func trailingSpaces(s string, start int, mode SpaceMode) string {
	end := len(s)
	for end > start && s[end-1] == ' ' {
		end--
	}
	if end == len(s) {
		return s
	}
	switch mode {
	case Remove:
		return s[:end]
	case Underscore:
		return s[:end] + strings.Repeat("_", len(s)-end)
	case Keep:
	}
	return s
}

func clampStart(s string, start int) int {
	if start <= 0 {
		return 0
	}
	if start >= len(s) {
		return len(s)
	}
	for start > 0 && !utf8.RuneStart(s[start]) {
		start--
	}
	return start
}

// MarkSeparators replaces every structural path separator in s with a
// sentinel that Sanitize leaves alone. Any sentinel already present is
// dropped.
func MarkSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == sentinel:
			return -1
		case r == '/' || r == os.PathSeparator:
			return sentinel
		}
		return r
	}, s)
}

// RestoreSeparators turns sentinels back into path separators.
func RestoreSeparators(s string) string {
	return strings.ReplaceAll(s, string(sentinel), string(os.PathSeparator))
}

// StripSentinel removes sentinels from text that must not introduce
// structural separators, such as tag values spliced into a marked path.
func StripSentinel(s string) string {
	return strings.ReplaceAll(s, string(sentinel), "")
}

// SanitizePath sanitizes a whole path while keeping its separators. The
// bytes before start (typically a root directory already on disk) are left
// untouched.
func SanitizePath(path string, start int, p Policy) string {
	start = clampStart(path, start)
	head, tail := path[:start], path[start:]
	return head + RestoreSeparators(Sanitize(MarkSeparators(tail), 0, p))
}
