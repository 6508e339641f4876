package models

import (
	"strings"

	"github.com/google/uuid"
)

// Intent selects which mutation schema applies to a submitted request.
type Intent string

const (
	IntentNew    Intent = "new"
	IntentEdit   Intent = "edit"
	IntentDelete Intent = "delete"
)

// ValidationErrors maps a submitted field name to a message describing
// why it was rejected.
type ValidationErrors map[string]string

// NewProjectPayload is the narrowed payload for intent "new".
type NewProjectPayload struct {
	Name        string
	Description string
	Command     string
}

// EditProjectPayload is the narrowed payload for intent "edit".
type EditProjectPayload struct {
	ProjectID   uuid.UUID
	Name        string
	Description string
	Command     string
}

// DeleteProjectPayload is the narrowed payload for intent "delete".
type DeleteProjectPayload struct {
	ProjectID uuid.UUID
}

// ProjectMutation is a tagged union over the three mutation intents.
// Exactly one of the payload fields is non-nil, matching Intent.
type ProjectMutation struct {
	Intent Intent
	New    *NewProjectPayload
	Edit   *EditProjectPayload
	Delete *DeleteProjectPayload
}

// ParseProjectMutation validates a flat field mapping against the schema
// selected by its "intent" field and returns the narrowed payload.
// Validation is all-or-nothing per intent: any missing or malformed
// required field yields a non-empty error set and a nil mutation.
func ParseProjectMutation(fields map[string]string) (*ProjectMutation, ValidationErrors) {
	errs := ValidationErrors{}

	intent := Intent(strings.TrimSpace(fields["intent"]))
	switch intent {
	case IntentNew:
		payload := &NewProjectPayload{
			Name:        strings.TrimSpace(fields["name"]),
			Description: strings.TrimSpace(fields["description"]),
			Command:     strings.TrimSpace(fields["command"]),
		}
		if payload.Name == "" {
			errs["name"] = "Name is required"
		}
		if payload.Description == "" {
			errs["description"] = "Description is required"
		}
		if payload.Command == "" {
			errs["command"] = "Command is required"
		}
		if fields["projectId"] != "" {
			errs["projectId"] = "Project ID must not be set when creating a project"
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return &ProjectMutation{Intent: IntentNew, New: payload}, nil

	case IntentEdit:
		payload := &EditProjectPayload{
			Name:        strings.TrimSpace(fields["name"]),
			Description: strings.TrimSpace(fields["description"]),
			Command:     strings.TrimSpace(fields["command"]),
		}
		if payload.Name == "" {
			errs["name"] = "Name is required"
		}
		if payload.Description == "" {
			errs["description"] = "Description is required"
		}
		if payload.Command == "" {
			errs["command"] = "Command is required"
		}
		projectID, err := parseProjectID(fields["projectId"])
		if err != nil {
			errs["projectId"] = err.Error()
		} else {
			payload.ProjectID = projectID
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return &ProjectMutation{Intent: IntentEdit, Edit: payload}, nil

	case IntentDelete:
		projectID, err := parseProjectID(fields["projectId"])
		if err != nil {
			errs["projectId"] = err.Error()
			return nil, errs
		}
		return &ProjectMutation{Intent: IntentDelete, Delete: &DeleteProjectPayload{ProjectID: projectID}}, nil

	default:
		errs["intent"] = "Intent must be one of: new, edit, delete"
		return nil, errs
	}
}

func parseProjectID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, &ValidationError{Field: "projectId", Message: "Project ID is required"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ValidationError{Field: "projectId", Message: "Invalid project ID format"}
	}
	return id, nil
}
