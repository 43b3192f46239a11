package organization

import (
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/location"
	"github.com/starford/ansuz/internal/note"
)

// SolveLocation resolves a location expression to a note's metadata, or to
// nil when the expression is well-formed but names no note. A string
// matching neither grammar fails with InvalidLocationError.
func (o *Organization) SolveLocation(raw string) (*note.Metadata, error) {
	expr, err := location.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch expr.Kind {
	case location.Absolute:
		return o.store.FindByShortID(expr.Short)
	default:
		return o.resolveRelative(expr)
	}
}

// resolveRelative walks topic → path → head, then follows parent links
// for the history-walk modifier. A missing path, an unknown explicit
// topic, or a chain shorter than the modifier all yield "no note" rather
// than an error.
func (o *Organization) resolveRelative(expr *location.Expression) (*note.Metadata, error) {
	topic := expr.Topic
	if topic == "" {
		current, err := o.CurrentTopic()
		if err != nil {
			return nil, err
		}
		if current == "" {
			return nil, apperr.ErrNoDefaultTopic
		}
		topic = current
	} else if !o.store.TopicExists(topic) {
		return nil, nil
	}

	pathName := expr.Path
	if pathName == location.Head {
		current, err := o.store.CurrentPath(topic)
		if err != nil {
			return nil, err
		}
		if current == "" {
			current = DefaultPath
		}
		pathName = current
	}
	if !o.store.PathExists(topic, pathName) {
		return nil, nil
	}

	meta, err := o.headMetadata(topic, pathName)
	if err != nil {
		return nil, err
	}
	for remaining := expr.Back; remaining > 0; remaining-- {
		if meta.ParentID.IsNil() {
			return nil, nil // chain ended before the walk did
		}
		parent, err := o.store.NoteMetadata(meta.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, &apperr.IntegrityError{Detail: "parent note " + meta.ParentID.String() + " is missing"}
		}
		meta = parent
	}
	return meta, nil
}

// mustResolve is SolveLocation for callers that need a note: resolving to
// none fails with LocationUnresolvedError.
func (o *Organization) mustResolve(raw string) (*note.Metadata, error) {
	meta, err := o.SolveLocation(raw)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, &apperr.LocationUnresolvedError{Expression: raw}
	}
	return meta, nil
}
