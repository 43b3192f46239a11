// Package organization is the domain engine on top of the store. It
// enforces naming rules, manages the current-topic and current-path
// defaults, and implements note insertion and location resolution.
package organization

import (
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/ident"
	"github.com/starford/ansuz/internal/keyword"
	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/store"
)

// DefaultPath is the path name created implicitly for a topic's first note.
const DefaultPath = "main"

// NoteReport describes a completed note insertion.
type NoteReport struct {
	NoteID   ident.ID
	ParentID ident.ID // Nil when the note started its path
	Topic    string
	Path     string
}

// Organization wraps a store handle with the in-memory current-topic
// cache. The cache is authoritative once loaded, so every topic switch
// must go through this instance; it must not be shared across processes.
type Organization struct {
	store *store.Store

	topicLoaded  bool
	currentTopic string // empty means none, meaningful only when loaded
}

// New creates an engine over an attached store.
func New(st *store.Store) *Organization {
	return &Organization{store: st}
}

// CurrentTopic returns the current topic name, or "" when none is set.
// The persisted marker is read once and cached for the lifetime of this
// instance.
func (o *Organization) CurrentTopic() (string, error) {
	if !o.topicLoaded {
		name, err := o.store.CurrentTopic()
		if err != nil {
			return "", err
		}
		o.currentTopic = name
		o.topicLoaded = true
	}
	return o.currentTopic, nil
}

// CreateTopic creates a new topic. The first topic ever created becomes
// the current topic.
func (o *Organization) CreateTopic(name string) error {
	if o.store.TopicExists(name) {
		return &apperr.TopicExistsError{Name: name}
	}
	if err := o.store.CreateTopic(name); err != nil {
		return err
	}
	current, err := o.CurrentTopic()
	if err != nil {
		return err
	}
	if current == "" {
		return o.SetCurrentTopic(name)
	}
	return nil
}

// SetCurrentTopic switches the current topic, persisting the marker and
// updating the cache.
func (o *Organization) SetCurrentTopic(name string) error {
	if !o.store.TopicExists(name) {
		return &apperr.TopicNotFoundError{Name: name}
	}
	if err := o.store.SetCurrentTopic(name); err != nil {
		return err
	}
	o.currentTopic = name
	o.topicLoaded = true
	return nil
}

// Topics lists every topic name, sorted.
func (o *Organization) Topics() ([]string, error) {
	return o.store.ListTopics()
}

// resolveTopic picks the explicit topic when given (it must exist),
// otherwise the current topic (one must be set).
func (o *Organization) resolveTopic(explicit string) (string, error) {
	if explicit != "" {
		if !o.store.TopicExists(explicit) {
			return "", &apperr.TopicNotFoundError{Name: explicit}
		}
		return explicit, nil
	}
	current, err := o.CurrentTopic()
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", apperr.ErrNoDefaultTopic
	}
	return current, nil
}

// Paths lists the path names of a topic (current topic when empty), sorted.
func (o *Organization) Paths(topic string) ([]string, error) {
	topic, err := o.resolveTopic(topic)
	if err != nil {
		return nil, err
	}
	return o.store.ListPaths(topic)
}

// CurrentPath returns a topic's current path name, or "" when none is set.
func (o *Organization) CurrentPath(topic string) (string, error) {
	topic, err := o.resolveTopic(topic)
	if err != nil {
		return "", err
	}
	return o.store.CurrentPath(topic)
}

// SetCurrentPath switches a topic's current path; the path must exist.
func (o *Organization) SetCurrentPath(topic, name string) error {
	topic, err := o.resolveTopic(topic)
	if err != nil {
		return err
	}
	if !o.store.PathExists(topic, name) {
		return &apperr.PathNotFoundError{Topic: topic, Name: name}
	}
	return o.store.SetCurrentPath(topic, name)
}

// CreatePath branches a new path from a source path. The topic defaults to
// the current topic and the source to the topic's current path. Branching
// copies the head pointer only; no note is duplicated.
func (o *Organization) CreatePath(topic, newPath, source string) error {
	topic, err := o.resolveTopic(topic)
	if err != nil {
		return err
	}
	if o.store.PathExists(topic, newPath) {
		return &apperr.PathExistsError{Topic: topic, Name: newPath}
	}
	if source == "" {
		source, err = o.store.CurrentPath(topic)
		if err != nil {
			return err
		}
		if source == "" {
			return apperr.ErrNoDefaultPath
		}
	}
	if !o.store.PathExists(topic, source) {
		return &apperr.PathNotFoundError{Topic: topic, Name: source}
	}
	head, err := o.store.PathHead(topic, source)
	if err != nil {
		return err
	}
	return o.store.WritePathHead(topic, newPath, head)
}

// AddNote inserts content at the resolved (topic, path) and reports the
// insertion. An explicit topic switches the current topic. An explicit
// path switches to it when it exists, branches from the topic's current
// path when one is set, and otherwise starts fresh. With no explicit path
// the topic's current path is used, defaulting to "main" for a topic that
// has none yet.
func (o *Organization) AddNote(content []byte, topic, path string) (*NoteReport, error) {
	if topic != "" {
		if err := o.SetCurrentTopic(topic); err != nil {
			return nil, err
		}
	} else {
		resolved, err := o.resolveTopic("")
		if err != nil {
			return nil, err
		}
		topic = resolved
	}

	if path != "" {
		if !o.store.PathExists(topic, path) {
			current, err := o.store.CurrentPath(topic)
			if err != nil {
				return nil, err
			}
			if current != "" && o.store.PathExists(topic, current) {
				head, err := o.store.PathHead(topic, current)
				if err != nil {
					return nil, err
				}
				if err := o.store.WritePathHead(topic, path, head); err != nil {
					return nil, err
				}
			}
		}
		if err := o.store.SetCurrentPath(topic, path); err != nil {
			return nil, err
		}
	} else {
		current, err := o.store.CurrentPath(topic)
		if err != nil {
			return nil, err
		}
		if current == "" {
			path = DefaultPath
			if err := o.store.SetCurrentPath(topic, path); err != nil {
				return nil, err
			}
		} else {
			path = current
		}
	}

	meta, err := o.store.AddNote(topic, path, content)
	if err != nil {
		return nil, err
	}
	return &NoteReport{NoteID: meta.ID, ParentID: meta.ParentID, Topic: topic, Path: path}, nil
}

// RemovePath deletes a path pointer and returns the metadata of the note
// that was at its head. The notes themselves remain reachable through
// other paths or direct identifier lookup.
func (o *Organization) RemovePath(path, topic string) (*note.Metadata, error) {
	topic, err := o.resolveTopic(topic)
	if err != nil {
		return nil, err
	}
	if !o.store.PathExists(topic, path) {
		return nil, &apperr.PathNotFoundError{Topic: topic, Name: path}
	}
	meta, err := o.headMetadata(topic, path)
	if err != nil {
		return nil, err
	}
	if err := o.store.RemovePath(topic, path); err != nil {
		return nil, err
	}
	return meta, nil
}

// ResetPath points a path at the note a location expression resolves to,
// returning the previous and the new head metadata.
func (o *Organization) ResetPath(path, topic, location string) (prev, head *note.Metadata, err error) {
	topic, err = o.resolveTopic(topic)
	if err != nil {
		return nil, nil, err
	}
	if !o.store.PathExists(topic, path) {
		return nil, nil, &apperr.PathNotFoundError{Topic: topic, Name: path}
	}
	prev, err = o.headMetadata(topic, path)
	if err != nil {
		return nil, nil, err
	}
	head, err = o.mustResolve(location)
	if err != nil {
		return nil, nil, err
	}
	if err := o.store.WritePathHead(topic, path, head.ID); err != nil {
		return nil, nil, err
	}
	return prev, head, nil
}

// AddKeyword files the note a location resolves to under a keyword. The
// location defaults to HEAD, the head of the current path.
func (o *Organization) AddKeyword(kw, location string) error {
	if location == "" {
		location = "HEAD"
	}
	meta, err := o.mustResolve(location)
	if err != nil {
		return err
	}
	return o.store.AddKeywordEntry(kw, meta.ID)
}

// NotesForKeyword returns the metadata of every note filed under a
// keyword, in filing order.
func (o *Organization) NotesForKeyword(kw string) ([]*note.Metadata, error) {
	ids, err := o.store.NotesForKeyword(kw)
	if err != nil {
		return nil, err
	}
	out := make([]*note.Metadata, 0, len(ids))
	for _, id := range ids {
		meta, err := o.store.NoteMetadata(id)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			return nil, &apperr.IntegrityError{Detail: "indexed note " + id.String() + " is missing"}
		}
		out = append(out, meta)
	}
	return out, nil
}

// KeywordCounts returns every keyword with its entry count.
func (o *Organization) KeywordCounts() ([]keyword.Count, error) {
	return o.store.KeywordCounts()
}

// AddNoteReference resolves both locations and appends the target note's
// identifier to the source note's reference list, rewriting its metadata.
func (o *Organization) AddNoteReference(from, to string) error {
	fromMeta, err := o.mustResolve(from)
	if err != nil {
		return err
	}
	toMeta, err := o.mustResolve(to)
	if err != nil {
		return err
	}
	fromMeta.References = append(fromMeta.References, toMeta.ID)
	return o.store.WriteNoteMetadata(fromMeta)
}

// NoteContent returns a note's raw content.
func (o *Organization) NoteContent(id ident.ID) ([]byte, error) {
	return o.store.NoteContent(id)
}

// headMetadata reads the metadata of a path's head note. The path was
// checked to exist; anything missing past that point is an integrity
// failure, never a panic.
func (o *Organization) headMetadata(topic, path string) (*note.Metadata, error) {
	head, err := o.store.PathHead(topic, path)
	if err != nil {
		return nil, err
	}
	meta, err := o.store.NoteMetadata(head)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, &apperr.IntegrityError{Detail: "head note " + head.String() + " of " + topic + "/" + path + " is missing"}
	}
	return meta, nil
}
