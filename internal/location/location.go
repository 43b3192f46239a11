// Package location parses note location expressions.
//
// An expression takes one of two mutually exclusive surface forms:
//
//	relative: [topic/]path[:-N]   e.g. "work/main:-2", "HEAD", "draft:-0"
//	absolute: an 8-hex-digit short identifier, or a full hyphenated
//	          identifier of which only the leading 8 digits matter
//
// The middle token of the relative form is either the literal HEAD (the
// current path of the topic) or a path name. A token made up entirely of
// hex digits is reserved for absolute lookup and never names a path.
// Anything matching neither form, including the empty string, is invalid.
//
// Both forms are recognized by explicit hand-written scanners; the grammar
// is small enough that a regexp engine would only obscure it.
package location

import (
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/ident"
)

// Head is the relative-form token naming the current path of a topic.
const Head = "HEAD"

// Kind discriminates the two surface forms.
type Kind int

const (
	// Relative locates a note through a topic's path, optionally walking
	// parent links backwards.
	Relative Kind = iota
	// Absolute locates a note by the short form of its identifier.
	Absolute
)

// Expression is a parsed location expression.
type Expression struct {
	Kind Kind

	// Relative form fields.
	Topic string // empty means the current topic
	Path  string // path name or the literal Head
	Back  int    // number of parent links to walk

	// Absolute form field: the lowercase 8-hex-digit short identifier.
	Short string
}

// Parse classifies and parses raw. It returns InvalidLocationError when raw
// matches neither surface form.
func Parse(raw string) (*Expression, error) {
	if raw == "" {
		return nil, &apperr.InvalidLocationError{Expression: raw}
	}
	if short, ok := parseAbsolute(raw); ok {
		return &Expression{Kind: Absolute, Short: short}, nil
	}
	if expr, ok := parseRelative(raw); ok {
		return expr, nil
	}
	return nil, &apperr.InvalidLocationError{Expression: raw}
}

// parseAbsolute accepts exactly ident.ShortLen hex digits, or a full
// hyphenated identifier. Only the leading digits are significant.
func parseAbsolute(raw string) (string, bool) {
	if len(raw) == ident.ShortLen && isHex(raw) {
		return strings.ToLower(raw), true
	}
	if len(raw) == 36 && raw[ident.ShortLen] == '-' {
		if _, err := ident.Parse(raw); err == nil {
			return strings.ToLower(raw[:ident.ShortLen]), true
		}
	}
	return "", false
}

func parseRelative(raw string) (*Expression, bool) {
	expr := &Expression{Kind: Relative}

	rest := raw
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		n, ok := parseModifier(rest[i+1:])
		if !ok {
			return nil, false
		}
		expr.Back = n
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		expr.Topic = rest[:i]
		rest = rest[i+1:]
		if expr.Topic == "" || strings.ContainsRune(rest, '/') {
			return nil, false
		}
	}
	if rest == "" {
		return nil, false
	}
	// Purely-hex tokens belong to the absolute grammar; a path may not be
	// named after one.
	if isHex(rest) {
		return nil, false
	}
	expr.Path = rest
	return expr, true
}

// parseModifier validates the history-walk suffix after the colon: a dash
// followed by a non-negative decimal integer.
func parseModifier(s string) (int, bool) {
	if len(s) < 2 || s[0] != '-' {
		return 0, false
	}
	digits := s[1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
