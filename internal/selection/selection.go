package selection

import (
	"github.com/mmonco/mpute/internal/models"
)

// State identifies which form mode, if any, is active on the
// "my projects" page.
type State string

const (
	StateIdle             State = "idle"
	StateComposingNew     State = "composing_new"
	StateComposingEdit    State = "composing_edit"
	StateConfirmingDelete State = "confirming_delete"
)

// Selection is the explicit finite-state value tracking which project is
// being edited or confirmed for deletion. It is rebuilt deterministically
// on every round-trip; no selection survives a request.
type Selection struct {
	State       State  `json:"state"`
	Target      string `json:"target,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Idle returns the rest state with no active form
func Idle() Selection {
	return Selection{State: StateIdle}
}

// ComposeNew starts a fresh creation, clearing any prefilled fields
func (s Selection) ComposeNew() Selection {
	return Selection{State: StateComposingNew}
}

// ComposeEdit starts editing the given project, prefilling its name and
// description. Inactive projects carry no edit affordance, so the
// transition is refused and the current state is kept.
func (s Selection) ComposeEdit(project *models.Project) Selection {
	if project == nil || !project.Active {
		return s
	}
	return Selection{
		State:       StateComposingEdit,
		Target:      project.ID.String(),
		Name:        project.Name,
		Description: project.Description,
	}
}

// ConfirmDelete asks for confirmation before deleting the given project.
// Inactive projects cannot be selected for deletion.
func (s Selection) ConfirmDelete(project *models.Project) Selection {
	if project == nil || !project.Active {
		return s
	}
	return Selection{
		State:  StateConfirmingDelete,
		Target: project.ID.String(),
	}
}

// Cancel abandons the active form without dispatching a request
func (s Selection) Cancel() Selection {
	return Idle()
}

// Reset returns to idle. Called after every mutation response, win or
// lose, and on navigation away.
func (s Selection) Reset() Selection {
	return Idle()
}

// FromRequest derives the selection for a page load from its query
// parameters and the freshly loaded projects. Unknown targets and
// conflicting parameters collapse to idle or the first applicable mode.
func FromRequest(compose, editID, deleteID string, projects []*models.Project) Selection {
	switch {
	case deleteID != "":
		return Idle().ConfirmDelete(findProject(projects, deleteID))
	case editID != "":
		return Idle().ComposeEdit(findProject(projects, editID))
	case compose == "new":
		return Idle().ComposeNew()
	default:
		return Idle()
	}
}

func findProject(projects []*models.Project, id string) *models.Project {
	for _, p := range projects {
		if p.ID.String() == id {
			return p
		}
	}
	return nil
}
