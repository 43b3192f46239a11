package organization

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/store"
)

func testOrg(t *testing.T) *Organization {
	t.Helper()
	s, err := store.Init(filepath.Join(t.TempDir(), "repo"))
	if err != nil {
		t.Fatal(err)
	}
	return New(s)
}

func TestCreateTopicTwice(t *testing.T) {
	o := testOrg(t)
	if err := o.CreateTopic("T1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := o.CreateTopic("T1")
	var exists *apperr.TopicExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("second create = %v, want TopicExistsError", err)
	}
	if exists.Name != "T1" {
		t.Errorf("error names %q, want T1", exists.Name)
	}
}

func TestFirstTopicBecomesCurrent(t *testing.T) {
	o := testOrg(t)

	current, err := o.CurrentTopic()
	if err != nil || current != "" {
		t.Fatalf("fresh repo current topic = (%q, %v), want none", current, err)
	}

	if err := o.CreateTopic("T1"); err != nil {
		t.Fatal(err)
	}
	if current, _ = o.CurrentTopic(); current != "T1" {
		t.Errorf("current topic = %q, want T1", current)
	}

	// A second topic does not steal the default.
	if err := o.CreateTopic("T2"); err != nil {
		t.Fatal(err)
	}
	if current, _ = o.CurrentTopic(); current != "T1" {
		t.Errorf("current topic = %q after second create, want T1", current)
	}
}

func TestSetCurrentTopicUnknown(t *testing.T) {
	o := testOrg(t)
	err := o.SetCurrentTopic("ghost")
	var nf *apperr.TopicNotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("err = %v, want TopicNotFoundError", err)
	}
}

func TestAddNoteDefaultsAndParentChain(t *testing.T) {
	// Concrete scenario: first note on an empty topic creates "main";
	// the second chains onto the first.
	o := testOrg(t)
	if err := o.CreateTopic("T1"); err != nil {
		t.Fatal(err)
	}

	first, err := o.AddNote([]byte("one"), "", "")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if first.Topic != "T1" || first.Path != "main" {
		t.Errorf("insertion at %s/%s, want T1/main", first.Topic, first.Path)
	}
	if !first.ParentID.IsNil() {
		t.Errorf("first note parent = %s, want none", first.ParentID)
	}

	second, err := o.AddNote([]byte("two"), "", "")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if second.ParentID != first.NoteID {
		t.Errorf("second note parent = %s, want %s", second.ParentID, first.NoteID)
	}
	if current, _ := o.CurrentPath(""); current != "main" {
		t.Errorf("current path = %q, want main", current)
	}
	head, _ := o.SolveLocation("HEAD")
	if head == nil || head.ID != second.NoteID {
		t.Errorf("HEAD = %+v, want the second note", head)
	}
}

func TestParentChainCorrectness(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")

	var prev *NoteReport
	for i := 0; i < 5; i++ {
		r, err := o.AddNote([]byte{byte('a' + i)}, "", "")
		if err != nil {
			t.Fatal(err)
		}
		if prev == nil {
			if !r.ParentID.IsNil() {
				t.Errorf("note %d parent = %s, want none", i, r.ParentID)
			}
		} else if r.ParentID != prev.NoteID {
			t.Errorf("note %d parent = %s, want %s", i, r.ParentID, prev.NoteID)
		}
		prev = r
	}
}

func TestAddNoteWithNoTopic(t *testing.T) {
	o := testOrg(t)
	_, err := o.AddNote([]byte("x"), "", "")
	if !errors.Is(err, apperr.ErrNoDefaultTopic) {
		t.Errorf("err = %v, want ErrNoDefaultTopic", err)
	}
}

func TestAddNoteExplicitTopicSwitches(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	_ = o.CreateTopic("T2")

	if _, err := o.AddNote([]byte("x"), "T2", ""); err != nil {
		t.Fatal(err)
	}
	if current, _ := o.CurrentTopic(); current != "T2" {
		t.Errorf("current topic = %q, want T2", current)
	}

	_, err := o.AddNote([]byte("x"), "ghost", "")
	var nf *apperr.TopicNotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("unknown topic err = %v, want TopicNotFoundError", err)
	}
}

func TestAddNoteExplicitPathBranches(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")

	base, err := o.AddNote([]byte("base"), "", "")
	if err != nil {
		t.Fatal(err)
	}

	// A new explicit path branches from the current one: the new note's
	// parent is main's head.
	branched, err := o.AddNote([]byte("branched"), "", "draft")
	if err != nil {
		t.Fatal(err)
	}
	if branched.Path != "draft" {
		t.Errorf("path = %q, want draft", branched.Path)
	}
	if branched.ParentID != base.NoteID {
		t.Errorf("branched parent = %s, want %s", branched.ParentID, base.NoteID)
	}
	if current, _ := o.CurrentPath(""); current != "draft" {
		t.Errorf("current path = %q, want draft", current)
	}

	// An existing explicit path just switches back.
	again, err := o.AddNote([]byte("again"), "", "main")
	if err != nil {
		t.Fatal(err)
	}
	if again.ParentID != base.NoteID {
		t.Errorf("parent = %s, want %s", again.ParentID, base.NoteID)
	}
	if current, _ := o.CurrentPath(""); current != "main" {
		t.Errorf("current path = %q, want main", current)
	}
}

func TestAddNoteExplicitPathOnFreshTopic(t *testing.T) {
	// No current path to branch from: the explicit path starts fresh.
	o := testOrg(t)
	_ = o.CreateTopic("T1")

	r, err := o.AddNote([]byte("x"), "", "scratch")
	if err != nil {
		t.Fatal(err)
	}
	if r.Path != "scratch" || !r.ParentID.IsNil() {
		t.Errorf("report = %+v, want fresh scratch path", r)
	}
}

func TestCreatePathBranchCopy(t *testing.T) {
	// Concrete scenario: branching copies the pointer; later notes on the
	// source do not move the branch.
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	first, err := o.AddNote([]byte("one"), "", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := o.CreatePath("", "main2", ""); err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	main2, _ := o.SolveLocation("main2")
	if main2 == nil || main2.ID != first.NoteID {
		t.Fatalf("main2 head = %+v, want the first note", main2)
	}

	if _, err := o.AddNote([]byte("two"), "", "main"); err != nil {
		t.Fatal(err)
	}
	main2, _ = o.SolveLocation("main2")
	if main2 == nil || main2.ID != first.NoteID {
		t.Errorf("main2 moved to %+v after a note on main", main2)
	}
}

func TestCreatePathErrors(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")

	// No current path yet.
	if err := o.CreatePath("", "b", ""); !errors.Is(err, apperr.ErrNoDefaultPath) {
		t.Errorf("err = %v, want ErrNoDefaultPath", err)
	}

	if _, err := o.AddNote([]byte("x"), "", ""); err != nil {
		t.Fatal(err)
	}

	var pnf *apperr.PathNotFoundError
	if err := o.CreatePath("", "b", "ghost"); !errors.As(err, &pnf) {
		t.Errorf("unknown source err = %v, want PathNotFoundError", err)
	}

	if err := o.CreatePath("", "b", "main"); err != nil {
		t.Fatal(err)
	}
	var pex *apperr.PathExistsError
	if err := o.CreatePath("", "b", "main"); !errors.As(err, &pex) {
		t.Errorf("duplicate err = %v, want PathExistsError", err)
	}
}

func TestRemovePath(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	first, err := o.AddNote([]byte("one"), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := o.CreatePath("", "main2", ""); err != nil {
		t.Fatal(err)
	}

	removed, err := o.RemovePath("main2", "")
	if err != nil {
		t.Fatalf("RemovePath: %v", err)
	}
	if removed.ID != first.NoteID {
		t.Errorf("removed head = %s, want %s", removed.ID, first.NoteID)
	}

	// main is untouched, the note is still reachable.
	if head, _ := o.SolveLocation("main"); head == nil || head.ID != first.NoteID {
		t.Error("main should be untouched")
	}
	if meta, _ := o.SolveLocation(first.NoteID.Short()); meta == nil {
		t.Error("the note should remain reachable by identifier")
	}

	var pnf *apperr.PathNotFoundError
	if _, err := o.RemovePath("main2", ""); !errors.As(err, &pnf) {
		t.Errorf("second removal = %v, want PathNotFoundError", err)
	}
}

func TestResetPath(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	first, _ := o.AddNote([]byte("one"), "", "")
	second, _ := o.AddNote([]byte("two"), "", "")

	prev, head, err := o.ResetPath("main", "", first.NoteID.Short())
	if err != nil {
		t.Fatalf("ResetPath: %v", err)
	}
	if prev.ID != second.NoteID || head.ID != first.NoteID {
		t.Errorf("reset = (%s, %s), want (%s, %s)", prev.ID, head.ID, second.NoteID, first.NoteID)
	}
	if now, _ := o.SolveLocation("HEAD"); now == nil || now.ID != first.NoteID {
		t.Errorf("HEAD = %+v after reset, want the first note", now)
	}

	_, _, err = o.ResetPath("main", "", "00000000")
	var unres *apperr.LocationUnresolvedError
	if !errors.As(err, &unres) {
		t.Errorf("reset to nothing = %v, want LocationUnresolvedError", err)
	}
}

func TestHistoryWalk(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	var reports []*NoteReport
	for i := 0; i < 3; i++ {
		r, err := o.AddNote([]byte{byte('0' + i)}, "", "")
		if err != nil {
			t.Fatal(err)
		}
		reports = append(reports, r)
	}

	cases := []struct {
		expr string
		want int // index into reports, -1 for no note
	}{
		{"HEAD", 2},
		{"HEAD:-0", 2},
		{"HEAD:-1", 1},
		{"HEAD:-2", 0},
		{"HEAD:-3", -1}, // walks off the end of the chain
		{"HEAD:-99", -1},
		{"main:-1", 1},
		{"T1/main:-2", 0},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			meta, err := o.SolveLocation(tc.expr)
			if err != nil {
				t.Fatalf("SolveLocation: %v", err)
			}
			if tc.want < 0 {
				if meta != nil {
					t.Errorf("resolved to %s, want no note", meta.ID)
				}
				return
			}
			if meta == nil || meta.ID != reports[tc.want].NoteID {
				t.Errorf("resolved to %+v, want note %d", meta, tc.want)
			}
		})
	}
}

func TestSolveLocationAbsolute(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	r, err := o.AddNote([]byte("x"), "", "")
	if err != nil {
		t.Fatal(err)
	}

	meta, err := o.SolveLocation(r.NoteID.Short())
	if err != nil {
		t.Fatalf("SolveLocation: %v", err)
	}
	if meta == nil || meta.ID != r.NoteID {
		t.Errorf("short lookup = %+v, want note %s", meta, r.NoteID)
	}

	// Full identifier works too; only the leading digits matter.
	meta, err = o.SolveLocation(r.NoteID.String())
	if err != nil || meta == nil || meta.ID != r.NoteID {
		t.Errorf("full lookup = (%+v, %v)", meta, err)
	}

	var inv *apperr.InvalidLocationError
	if _, err := o.SolveLocation("44a0f45f44a0f"); !errors.As(err, &inv) {
		t.Errorf("13 hex digits = %v, want InvalidLocationError", err)
	}
	if _, err := o.SolveLocation(""); !errors.As(err, &inv) {
		t.Errorf("empty expression = %v, want InvalidLocationError", err)
	}
}

func TestSolveLocationMissingPieces(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")

	// Known topic, no paths yet: no note, no error.
	meta, err := o.SolveLocation("HEAD")
	if err != nil || meta != nil {
		t.Errorf("empty topic HEAD = (%+v, %v), want (nil, nil)", meta, err)
	}

	// Unknown explicit topic: no note.
	meta, err = o.SolveLocation("ghost/main")
	if err != nil || meta != nil {
		t.Errorf("unknown topic = (%+v, %v), want (nil, nil)", meta, err)
	}

	// Unknown path: no note.
	meta, err = o.SolveLocation("ghost")
	if err != nil || meta != nil {
		t.Errorf("unknown path = (%+v, %v), want (nil, nil)", meta, err)
	}
}

func TestKeywords(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	first, _ := o.AddNote([]byte("one"), "", "")
	second, _ := o.AddNote([]byte("two"), "", "")

	// Default location is HEAD.
	if err := o.AddKeyword("golang", ""); err != nil {
		t.Fatalf("AddKeyword: %v", err)
	}
	if err := o.AddKeyword("storage", first.NoteID.Short()); err != nil {
		t.Fatal(err)
	}
	if err := o.AddKeyword("golang", first.NoteID.Short()); err != nil {
		t.Fatal(err)
	}

	notes, err := o.NotesForKeyword("golang")
	if err != nil {
		t.Fatalf("NotesForKeyword: %v", err)
	}
	if len(notes) != 2 || notes[0].ID != second.NoteID || notes[1].ID != first.NoteID {
		t.Errorf("golang notes = %v", notes)
	}
	notes, _ = o.NotesForKeyword("storage")
	if len(notes) != 1 || notes[0].ID != first.NoteID {
		t.Errorf("storage notes = %v", notes)
	}

	counts, err := o.KeywordCounts()
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]int)
	for _, c := range counts {
		got[c.Keyword] = c.Notes
	}
	if got["golang"] != 2 || got["storage"] != 1 {
		t.Errorf("counts = %v", got)
	}

	var unres *apperr.LocationUnresolvedError
	if err := o.AddKeyword("x", "00000000"); !errors.As(err, &unres) {
		t.Errorf("unresolved location = %v, want LocationUnresolvedError", err)
	}
}

func TestAddNoteReference(t *testing.T) {
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	first, _ := o.AddNote([]byte("one"), "", "")
	second, _ := o.AddNote([]byte("two"), "", "")

	if err := o.AddNoteReference(second.NoteID.Short(), first.NoteID.Short()); err != nil {
		t.Fatalf("AddNoteReference: %v", err)
	}
	meta, err := o.SolveLocation(second.NoteID.Short())
	if err != nil {
		t.Fatal(err)
	}
	if len(meta.References) != 1 || meta.References[0] != first.NoteID {
		t.Errorf("references = %v, want [%s]", meta.References, first.NoteID)
	}
}

func TestCurrentTopicCacheSurvivesExternalChange(t *testing.T) {
	// Once loaded, the cache is authoritative for this instance: a marker
	// rewrite behind its back is not observed.
	o := testOrg(t)
	_ = o.CreateTopic("T1")
	_ = o.CreateTopic("T2")

	if current, _ := o.CurrentTopic(); current != "T1" {
		t.Fatalf("current = %q, want T1", current)
	}
	// Mutate the marker through a second engine sharing the store.
	other := New(o.store)
	if err := other.SetCurrentTopic("T2"); err != nil {
		t.Fatal(err)
	}
	if current, _ := o.CurrentTopic(); current != "T1" {
		t.Errorf("cached current = %q, want T1", current)
	}
}
