package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mmonco/mpute/internal/models"
	"github.com/mmonco/mpute/internal/repositories"
	"github.com/mmonco/mpute/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrProjectNotFound is returned when a project id does not match any row
// or the requester is not its creator. The two cases are deliberately not
// distinguishable, so foreign project ids look the same as absent ones.
var ErrProjectNotFound = errors.New("project not found")

type ProjectService struct {
	projectRepo *repositories.ProjectRepository
	verifier    CommandVerifier
}

func NewProjectService(projectRepo *repositories.ProjectRepository, verifier CommandVerifier) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		verifier:    verifier,
	}
}

// CreateProject verifies the command and, only on acceptance, persists a
// new active, unverified project. Verification strictly precedes
// persistence: an unverifiable command never reaches the store.
func (s *ProjectService) CreateProject(ctx context.Context, creator string, payload *models.NewProjectPayload) (*models.Project, error) {
	if creator == "" {
		return nil, errors.New("creator is required")
	}

	project := &models.Project{
		Creator:     creator,
		Name:        payload.Name,
		Description: payload.Description,
		Command:     payload.Command,
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.verifier.Verify(ctx, project.Command); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"project_id": project.ID.String(),
		"creator":    creator,
	}).Info("Project created")

	return project, nil
}

// EditProject updates a project's name and description. Only the creator
// may edit; the command is immutable after creation.
func (s *ProjectService) EditProject(ctx context.Context, requester string, payload *models.EditProjectPayload) error {
	project, err := s.getOwnedProject(requester, payload.ProjectID.String())
	if err != nil {
		return err
	}

	project.Name = payload.Name
	project.Description = payload.Description

	if err := s.projectRepo.Update(project); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return err
	}

	return nil
}

// DeleteProject performs a soft delete of a project. Only the creator may
// delete; deleting an already-inactive project is a harmless no-op.
func (s *ProjectService) DeleteProject(ctx context.Context, requester string, payload *models.DeleteProjectPayload) error {
	if _, err := s.getOwnedProject(requester, payload.ProjectID.String()); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(payload.ProjectID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return err
	}

	logger.WithField("project_id", payload.ProjectID.String()).Info("Project deactivated")

	return nil
}

// GetAllProjects retrieves the public catalog of active projects
func (s *ProjectService) GetAllProjects() ([]*models.Project, error) {
	return s.projectRepo.GetAll()
}

// GetProjectsByCreator retrieves all projects for a creator, including
// inactive ones
func (s *ProjectService) GetProjectsByCreator(creator string) ([]*models.Project, error) {
	if creator == "" {
		return nil, errors.New("creator is required")
	}
	return s.projectRepo.GetByCreator(creator)
}

func (s *ProjectService) getOwnedProject(requester, id string) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if project.Creator != requester {
		return nil, ErrProjectNotFound
	}

	return project, nil
}
