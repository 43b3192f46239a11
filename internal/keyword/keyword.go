// Package keyword implements the inverted index mapping keywords to the
// notes filed under them. The whole index is held in memory and serialized
// as a single YAML document; every mutation rewrites it in full. Fine for
// a personal store, a known scaling limit beyond that.
package keyword

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/ident"
)

// Index is the keyword → ordered note-identifier-list mapping. Entries are
// append-only: there is no removal, and filing the same note twice under
// one keyword records it twice.
type Index struct {
	entries map[string][]ident.ID
}

// Count pairs a keyword with the number of notes filed under it.
type Count struct {
	Keyword string
	Notes   int
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[string][]ident.ID)}
}

// Decode loads an index from its serialized form. Empty input yields an
// empty index.
func Decode(data []byte) (*Index, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keyword: decode index: %w", err)
	}
	ix := New()
	for kw, ids := range raw {
		for _, s := range ids {
			id, err := ident.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("keyword: entry %q: %w", kw, err)
			}
			ix.entries[kw] = append(ix.entries[kw], id)
		}
	}
	return ix, nil
}

// Encode serializes the index as a single YAML document.
func (ix *Index) Encode() ([]byte, error) {
	raw := make(map[string][]string, len(ix.entries))
	for kw, ids := range ix.entries {
		ss := make([]string, len(ids))
		for i, id := range ids {
			ss[i] = id.String()
		}
		raw[kw] = ss
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("keyword: encode index: %w", err)
	}
	return data, nil
}

// Add appends id to the keyword's list.
func (ix *Index) Add(keyword string, id ident.ID) {
	ix.entries[keyword] = append(ix.entries[keyword], id)
}

// Notes returns the identifiers filed under keyword, in insertion order.
func (ix *Index) Notes(keyword string) []ident.ID {
	return ix.entries[keyword]
}

// Counts returns every keyword with its entry count. Ordering across
// keywords follows map iteration and is unspecified.
func (ix *Index) Counts() []Count {
	out := make([]Count, 0, len(ix.entries))
	for kw, ids := range ix.entries {
		out = append(out, Count{Keyword: kw, Notes: len(ids)})
	}
	return out
}
