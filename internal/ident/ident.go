// Package ident mints and parses the unique identifiers assigned to notes.
package ident

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortLen is the number of leading hex characters that form the short
// identifier used for absolute lookups.
const ShortLen = 8

// ID is the globally unique identifier of a note. The zero value is Nil,
// meaning "no identifier" (e.g. the parent of a chain-starting note).
type ID uuid.UUID

// Nil is the absent identifier.
var Nil ID

// New mints a fresh random identifier.
func New() ID {
	return ID(uuid.New())
}

// Parse parses the canonical hyphenated text form.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("ident: parse %q: %w", s, err)
	}
	return ID(u), nil
}

// String returns the canonical lowercase hyphenated form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first ShortLen hex characters of the canonical form.
func (id ID) Short() string {
	return id.String()[:ShortLen]
}

// IsNil reports whether the identifier is absent.
func (id ID) IsNil() bool {
	return id == Nil
}

// MatchesShort reports whether prefix equals the identifier's short form.
// Matching is case-insensitive since the canonical form is lowercase.
func (id ID) MatchesShort(prefix string) bool {
	return strings.ToLower(prefix) == id.Short()
}
