// Package note defines the note metadata record and its line-oriented
// on-disk codec.
package note

import (
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/ident"
)

// Metadata is the structured record stored next to a note's content.
// Content is immutable after creation; References may grow afterwards,
// in which case the whole record is rewritten.
type Metadata struct {
	ID         ident.ID
	ParentID   ident.ID // Nil when this note started its path
	Topic      string   // topic name at the moment of insertion
	Path       string   // path name at the moment of insertion
	References []ident.ID
}

// Encode serializes the record: line 1 parent identifier (empty when none),
// line 2 topic, line 3 path, then one reference identifier per line.
func (m *Metadata) Encode() []byte {
	var b strings.Builder
	if !m.ParentID.IsNil() {
		b.WriteString(m.ParentID.String())
	}
	b.WriteByte('\n')
	b.WriteString(m.Topic)
	b.WriteByte('\n')
	b.WriteString(m.Path)
	b.WriteByte('\n')
	for _, ref := range m.References {
		b.WriteString(ref.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Decode parses a stored record for the note identified by id. Trailing
// blank lines are ignored; an empty topic or path line, or any malformed
// identifier, rejects the record.
func Decode(id ident.ID, data []byte) (*Metadata, error) {
	lines := strings.Split(string(data), "\n")
	// Only the reference region may carry trailing blank lines.
	for len(lines) > 3 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 3 {
		return nil, &apperr.MetadataError{Field: "record", Detail: "fewer than three lines"}
	}

	m := &Metadata{ID: id}
	if lines[0] != "" {
		parent, err := ident.Parse(lines[0])
		if err != nil {
			return nil, &apperr.MetadataError{Field: "parent", Detail: "malformed identifier", Err: err}
		}
		m.ParentID = parent
	}
	if lines[1] == "" {
		return nil, &apperr.MetadataError{Field: "topic", Detail: "empty"}
	}
	m.Topic = lines[1]
	if lines[2] == "" {
		return nil, &apperr.MetadataError{Field: "path", Detail: "empty"}
	}
	m.Path = lines[2]

	for _, line := range lines[3:] {
		ref, err := ident.Parse(line)
		if err != nil {
			return nil, &apperr.MetadataError{Field: "reference", Detail: "malformed identifier", Err: err}
		}
		m.References = append(m.References, ref)
	}
	return m, nil
}
