package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	Creator     string    `json:"creator"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Command     string    `json:"command"`
	Active      bool      `json:"active"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrProjectNameRequired
	}
	if p.Description == "" {
		return ErrProjectDescriptionRequired
	}
	if p.Command == "" {
		return ErrProjectCommandRequired
	}
	return nil
}

// Common errors
var (
	ErrProjectNameRequired        = &ValidationError{Field: "name", Message: "Project name is required"}
	ErrProjectDescriptionRequired = &ValidationError{Field: "description", Message: "Project description is required"}
	ErrProjectCommandRequired     = &ValidationError{Field: "command", Message: "Project command is required"}
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
