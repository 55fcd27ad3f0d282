package parser

import (
	"regexp"
	"strings"
)

// Section header names, matched against a fully trimmed line.
const (
	headerMetadata = "[METADATA]"
	headerDefaults = "[DEFAULTS]"
	headerContent  = "[CONTENT]"
)

// keyPattern is the key syntax shared by metadata keys, defaults keys, and
// content placeholders.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsValidName reports whether name is a well-formed key or placeholder name.
func IsValidName(name string) bool {
	return keyPattern.MatchString(name)
}

// NormalizeNewlines converts CRLF line endings to LF.
func NormalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// splitLines splits normalized text into physical lines. A single trailing
// newline does not produce a trailing empty line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// StripComments removes every (% ... %) span from s. Spans may cross
// newlines. If an opening (% is never closed, everything from it to the end
// of s is consumed and its byte offset is returned; otherwise the second
// result is -1.
func StripComments(s string) (string, int) {
	var b strings.Builder
	i := 0
	for {
		open := strings.Index(s[i:], "(%")
		if open < 0 {
			b.WriteString(s[i:])
			return b.String(), -1
		}
		open += i
		b.WriteString(s[i:open])
		close := strings.Index(s[open+2:], "%)")
		if close < 0 {
			return b.String(), open
		}
		i = open + 2 + close + 2
	}
}

// stripLineComments removes (% ... %) spans from a single physical line. A
// delimiter that does not close on the same line consumes the rest of the
// line and is reported as unterminated.
func stripLineComments(line string) (clean string, unterminated bool) {
	clean, at := StripComments(line)
	return clean, at >= 0
}

// lineKind classifies a physical line after comment stripping.
type lineKind int

const (
	lineBlank lineKind = iota
	lineHeader
	lineUnknownHeader
	lineEntry
	lineOther
)

// token is one classified line.
type token struct {
	kind    lineKind
	line    int    // 1-based
	section string // header name for lineHeader
	key     string // entry key for lineEntry
	value   string // entry value for lineEntry; ">" marks multi-line mode
	text    string // trimmed text for lineOther
}

// classify turns a comment-stripped line into a token. Malformed entry lines
// (an @ not followed by a well-formed key, a space, and a value) come back as
// lineOther so the caller can record a warning.
func classify(trimmed string, lineNo int) token {
	switch trimmed {
	case "":
		return token{kind: lineBlank, line: lineNo}
	case headerMetadata, headerDefaults, headerContent:
		return token{kind: lineHeader, line: lineNo, section: trimmed}
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return token{kind: lineUnknownHeader, line: lineNo, text: trimmed}
	}
	if strings.HasPrefix(trimmed, "@") {
		key, value, ok := strings.Cut(trimmed[1:], " ")
		value = strings.TrimSpace(value)
		if ok && IsValidName(key) && value != "" {
			return token{kind: lineEntry, line: lineNo, key: key, value: value}
		}
		return token{kind: lineOther, line: lineNo, text: trimmed}
	}
	return token{kind: lineOther, line: lineNo, text: trimmed}
}
