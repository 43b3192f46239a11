package store

import (
	"os"
	"path/filepath"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/ident"
	"github.com/starford/ansuz/internal/keyword"
)

// loadIndex reads and decodes the whole keyword index. The file is part of
// the required repository shape, so its absence is an integrity failure.
func (s *Store) loadIndex() (*keyword.Index, error) {
	abs := filepath.Join(s.base, indexFileName)
	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil, &apperr.IntegrityError{Detail: "index file is missing", Err: err}
	}
	if err != nil {
		return nil, &apperr.IOError{Op: "read index", Err: err}
	}
	ix, err := keyword.Decode(data)
	if err != nil {
		return nil, &apperr.IntegrityError{Detail: "index file is malformed", Err: err}
	}
	return ix, nil
}

// AddKeywordEntry files a note under a keyword and rewrites the index file
// in full.
func (s *Store) AddKeywordEntry(kw string, id ident.ID) error {
	return s.locked("add keyword entry", func() error {
		ix, err := s.loadIndex()
		if err != nil {
			return err
		}
		ix.Add(kw, id)
		data, err := ix.Encode()
		if err != nil {
			return &apperr.IOError{Op: "encode index", Err: err}
		}
		return s.writeFileAtomic(filepath.Join(s.base, indexFileName), data)
	})
}

// NotesForKeyword returns the identifiers filed under a keyword, in
// insertion order.
func (s *Store) NotesForKeyword(kw string) ([]ident.ID, error) {
	ix, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	return ix.Notes(kw), nil
}

// KeywordCounts returns every keyword with its entry count; ordering
// across keywords is unspecified.
func (s *Store) KeywordCounts() ([]keyword.Count, error) {
	ix, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	return ix.Counts(), nil
}
