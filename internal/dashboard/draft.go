package dashboard

import "github.com/hay-kot/leadr/internal/core/lead"

type modeKind int

const (
	modeCreating modeKind = iota
	modeEditing
)

// Mode says what a submit of the draft will do: create a new lead, or update
// the lead it is editing. The zero Mode is Creating.
type Mode struct {
	kind modeKind
	id   string
}

// Creating is the mode of a draft for a new lead.
func Creating() Mode {
	return Mode{kind: modeCreating}
}

// Editing is the mode of a draft bound to an existing lead.
func Editing(id string) Mode {
	return Mode{kind: modeEditing, id: id}
}

// EditingID returns the id of the lead being edited.
func (m Mode) EditingID() (string, bool) {
	if m.kind == modeEditing {
		return m.id, true
	}
	return "", false
}

// IsCreating reports whether the draft will create a lead.
func (m Mode) IsCreating() bool {
	return m.kind == modeCreating
}

func (m Mode) String() string {
	switch m.kind {
	case modeEditing:
		return "editing(" + m.id + ")"
	default:
		return "creating"
	}
}

// Draft is the in-progress buffer of the single lead form.
type Draft struct {
	Fields lead.Fields
	Mode   Mode
}

// EmptyDraft is the initial draft: creating, blank fields, level Hot.
func EmptyDraft() Draft {
	return Draft{
		Fields: lead.Fields{Level: lead.LevelHot},
		Mode:   Creating(),
	}
}
