package store

import (
	"os"
	"path/filepath"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/ident"
	"github.com/starford/ansuz/internal/note"
)

// AddNote mints an identifier, records the path's previous head (if any) as
// the parent, persists content then metadata, and finally advances the path
// head. The head moves last so a crash mid-way can orphan a blob but never
// leaves a ref pointing at a note that does not exist.
func (s *Store) AddNote(topic, path string, content []byte) (*note.Metadata, error) {
	var meta *note.Metadata
	err := s.locked("add note", func() error {
		id := ident.New()
		if exists(s.metaFile(id)) || exists(s.noteFile(id)) {
			// 128 random bits collided with an existing note. Give up
			// rather than overwrite immutable content.
			return &apperr.IntegrityError{Detail: "identifier collision on " + id.String()}
		}

		parent := ident.Nil
		if s.PathExists(topic, path) {
			head, err := s.PathHead(topic, path)
			if err != nil {
				return err
			}
			parent = head
		}

		if err := s.writeFileAtomic(s.noteFile(id), content); err != nil {
			return err
		}
		m := &note.Metadata{ID: id, ParentID: parent, Topic: topic, Path: path}
		if err := s.writeFileAtomic(s.metaFile(id), m.Encode()); err != nil {
			return err
		}
		if err := s.writeFileAtomic(s.pathFile(topic, path), []byte(id.String()+"\n")); err != nil {
			return err
		}
		meta = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// NoteContent returns the raw content bytes of a note.
func (s *Store) NoteContent(id ident.ID) ([]byte, error) {
	data, err := os.ReadFile(s.noteFile(id))
	if os.IsNotExist(err) {
		return nil, &apperr.IntegrityError{Detail: "content blob for " + id.String() + " is missing", Err: err}
	}
	if err != nil {
		return nil, &apperr.IOError{Op: "read note content", Err: err}
	}
	return data, nil
}

// NoteMetadata returns the metadata record of a note, or nil when no such
// note is stored.
func (s *Store) NoteMetadata(id ident.ID) (*note.Metadata, error) {
	data, err := os.ReadFile(s.metaFile(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperr.IOError{Op: "read note metadata", Err: err}
	}
	return note.Decode(id, data)
}

// WriteNoteMetadata rewrites a note's metadata record. Used when a
// reference is appended; content is never rewritten.
func (s *Store) WriteNoteMetadata(m *note.Metadata) error {
	return s.locked("write note metadata", func() error {
		return s.writeFileAtomic(s.metaFile(m.ID), m.Encode())
	})
}

// FindByShortID scans stored metadata for a note whose identifier starts
// with the given short prefix and returns the first match, or nil when
// none matches. On duplicate prefixes the winner is whichever the
// directory iteration yields first; callers must not rely on any
// particular tie-break.
func (s *Store) FindByShortID(prefix string) (*note.Metadata, error) {
	entries, err := os.ReadDir(filepath.Join(s.base, metaDirName))
	if err != nil {
		return nil, &apperr.IOError{Op: "scan note metadata", Err: err}
	}
	for _, e := range entries {
		id, err := ident.Parse(e.Name())
		if err != nil {
			continue // stray file, not a note
		}
		if id.MatchesShort(prefix) {
			return s.NoteMetadata(id)
		}
	}
	return nil, nil
}
