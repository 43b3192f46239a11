// Package store owns all on-disk repository state: topic directories,
// path-ref files, note content and metadata blobs, and the keyword index.
// It exposes atomic primitives with no business-rule validation; naming
// rules and defaults live in the organization engine on top.
//
// Repository layout under the base directory:
//
//	meta/<id>              serialized note metadata, one file per note
//	notes/<id>             raw note content, one file per note
//	topics/<name>/paths/<path>   head identifier of the path, as text
//	topics/<name>/_HEAD    current path name of the topic (optional)
//	index                  keyword index, one YAML document
//	_CURRENT               current topic name (optional)
package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/ident"
)

const (
	metaDirName      = "meta"
	notesDirName     = "notes"
	topicsDirName    = "topics"
	pathsDirName     = "paths"
	indexFileName    = "index"
	currentTopicFile = "_CURRENT"
	currentPathFile  = "_HEAD"
	lockFileName     = ".lock"
	tmpPattern       = ".ansuz-tmp-*"
)

// Store is a handle on one repository. It is not safe for concurrent use
// by multiple processes unless WithAdvisoryLock is enabled, and even then
// the lock only serializes individual mutations, not sequences of them.
type Store struct {
	base string
	lock *flock.Flock
}

// Option configures a Store handle.
type Option func(*Store)

// WithAdvisoryLock makes every mutating operation take an advisory file
// lock on the repository. Off by default: the documented contract is a
// single process per repository, and the lock is an opt-in extension for
// callers that cannot guarantee that.
func WithAdvisoryLock() Option {
	return func(s *Store) {
		s.lock = flock.New(filepath.Join(s.base, lockFileName))
	}
}

// Init creates a fresh, empty repository at base. It fails when anything
// already exists there.
func Init(base string, opts ...Option) (*Store, error) {
	if _, err := os.Stat(base); err == nil {
		return nil, &apperr.IntegrityError{Detail: "location already exists: " + base}
	} else if !os.IsNotExist(err) {
		return nil, &apperr.IOError{Op: "stat repository location", Err: err}
	}
	for _, dir := range []string{base,
		filepath.Join(base, metaDirName),
		filepath.Join(base, notesDirName),
		filepath.Join(base, topicsDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &apperr.IOError{Op: "create repository directory", Err: err}
		}
	}
	if err := os.WriteFile(filepath.Join(base, indexFileName), nil, 0o644); err != nil {
		return nil, &apperr.IOError{Op: "create index file", Err: err}
	}
	return newStore(base, opts), nil
}

// Attach opens an existing repository, verifying the expected internal
// structure is present. This is a structural-integrity check only.
func Attach(base string, opts ...Option) (*Store, error) {
	if !isDir(base) {
		return nil, &apperr.IntegrityError{Detail: "not a directory: " + base}
	}
	for _, dir := range []string{metaDirName, notesDirName, topicsDirName} {
		if !isDir(filepath.Join(base, dir)) {
			return nil, &apperr.IntegrityError{Detail: "missing directory " + dir + " in " + base}
		}
	}
	if !isFile(filepath.Join(base, indexFileName)) {
		return nil, &apperr.IntegrityError{Detail: "missing index file in " + base}
	}
	return newStore(base, opts), nil
}

func newStore(base string, opts []Option) *Store {
	s := &Store{base: base}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// locked runs fn under the advisory lock when one is configured.
func (s *Store) locked(op string, fn func() error) error {
	if s.lock == nil {
		return fn()
	}
	if err := s.lock.Lock(); err != nil {
		return &apperr.IOError{Op: "lock repository for " + op, Err: err}
	}
	defer s.lock.Unlock() //nolint:errcheck // best-effort release
	return fn()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// writeFileAtomic writes content via tmp file → fsync → rename so readers
// never observe a partial file.
func (s *Store) writeFileAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperr.IOError{Op: "create directory", Err: err}
	}
	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return &apperr.IOError{Op: "create temp file", Err: err}
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return &apperr.IOError{Op: "write temp file", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &apperr.IOError{Op: "fsync temp file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &apperr.IOError{Op: "close temp file", Err: err}
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return &apperr.IOError{Op: "rename temp file", Err: err}
	}
	success = true
	return nil
}

func (s *Store) topicDir(topic string) string {
	return filepath.Join(s.base, topicsDirName, topic)
}

func (s *Store) pathFile(topic, path string) string {
	return filepath.Join(s.topicDir(topic), pathsDirName, path)
}

func (s *Store) metaFile(id ident.ID) string {
	return filepath.Join(s.base, metaDirName, id.String())
}

func (s *Store) noteFile(id ident.ID) string {
	return filepath.Join(s.base, notesDirName, id.String())
}

// TopicExists reports whether a topic directory is present.
func (s *Store) TopicExists(name string) bool {
	return isDir(s.topicDir(name))
}

// CreateTopic creates the topic directory and its paths/ subdirectory.
func (s *Store) CreateTopic(name string) error {
	return s.locked("create topic", func() error {
		if err := os.MkdirAll(filepath.Join(s.topicDir(name), pathsDirName), 0o755); err != nil {
			return &apperr.IOError{Op: "create topic directory", Err: err}
		}
		return nil
	})
}

// ListTopics returns every topic name in lexicographic order.
func (s *Store) ListTopics() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.base, topicsDirName))
	if err != nil {
		return nil, &apperr.IOError{Op: "list topics", Err: err}
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// CurrentTopic returns the persisted current topic name, or "" when none
// is recorded.
func (s *Store) CurrentTopic() (string, error) {
	return s.readMarker(filepath.Join(s.base, currentTopicFile), "read current topic")
}

// SetCurrentTopic persists the current topic marker.
func (s *Store) SetCurrentTopic(name string) error {
	return s.locked("set current topic", func() error {
		return s.writeFileAtomic(filepath.Join(s.base, currentTopicFile), []byte(name+"\n"))
	})
}

// PathExists reports whether a path ref is present in the topic.
func (s *Store) PathExists(topic, name string) bool {
	return exists(s.pathFile(topic, name))
}

// PathHead returns the identifier a path ref points at. The ref must
// exist; a missing ref is an integrity failure, since callers are expected
// to check existence first.
func (s *Store) PathHead(topic, name string) (ident.ID, error) {
	data, err := os.ReadFile(s.pathFile(topic, name))
	if os.IsNotExist(err) {
		return ident.Nil, &apperr.IntegrityError{Detail: "path ref " + topic + "/" + name + " is missing", Err: err}
	}
	if err != nil {
		return ident.Nil, &apperr.IOError{Op: "read path head", Err: err}
	}
	id, err := ident.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return ident.Nil, &apperr.IntegrityError{Detail: "path ref " + topic + "/" + name + " is malformed", Err: err}
	}
	return id, nil
}

// WritePathHead creates or overwrites a path ref.
func (s *Store) WritePathHead(topic, name string, id ident.ID) error {
	return s.locked("write path head", func() error {
		return s.writeFileAtomic(s.pathFile(topic, name), []byte(id.String()+"\n"))
	})
}

// RemovePath deletes a path ref. The notes it pointed at remain.
func (s *Store) RemovePath(topic, name string) error {
	return s.locked("remove path", func() error {
		err := os.Remove(s.pathFile(topic, name))
		if os.IsNotExist(err) {
			return &apperr.IntegrityError{Detail: "path ref " + topic + "/" + name + " is missing", Err: err}
		}
		if err != nil {
			return &apperr.IOError{Op: "remove path", Err: err}
		}
		return nil
	})
}

// ListPaths returns every path name in the topic in lexicographic order.
func (s *Store) ListPaths(topic string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.topicDir(topic), pathsDirName))
	if os.IsNotExist(err) {
		return nil, &apperr.IntegrityError{Detail: "topic " + topic + " has no paths directory", Err: err}
	}
	if err != nil {
		return nil, &apperr.IOError{Op: "list paths", Err: err}
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// CurrentPath returns the topic's persisted current path name, or "" when
// none is recorded.
func (s *Store) CurrentPath(topic string) (string, error) {
	return s.readMarker(filepath.Join(s.topicDir(topic), currentPathFile), "read current path")
}

// SetCurrentPath persists the topic's current path marker.
func (s *Store) SetCurrentPath(topic, name string) error {
	return s.locked("set current path", func() error {
		return s.writeFileAtomic(filepath.Join(s.topicDir(topic), currentPathFile), []byte(name+"\n"))
	})
}

// readMarker reads a single-name marker file; absence means "none".
func (s *Store) readMarker(abs, op string) (string, error) {
	data, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", &apperr.IOError{Op: op, Err: err}
	}
	return strings.TrimSpace(string(data)), nil
}
