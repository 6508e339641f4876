package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mmonco/mpute/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

// Create creates a new project. The ID and timestamps are assigned here;
// new projects are always active and unverified.
func (r *ProjectRepository) Create(project *models.Project) error {
	query := `
		INSERT INTO projects (id, creator, name, description, command, active, verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, 0, ?, ?)
	`

	project.ID = uuid.New()
	project.Active = true
	project.Verified = false
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := r.db.Exec(query,
		project.ID.String(),
		project.Creator,
		project.Name,
		project.Description,
		project.Command,
		project.CreatedAt,
		project.UpdatedAt,
	)

	return err
}

// GetByID retrieves a project by ID. Soft-deleted projects are still
// returned; deletion is the active flag, not row absence.
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `
		SELECT id, creator, name, description, command, active, verified, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	return r.scanProject(r.db.QueryRow(query, id))
}

// GetAll retrieves all active projects for the public catalog
func (r *ProjectRepository) GetAll() ([]*models.Project, error) {
	query := `
		SELECT id, creator, name, description, command, active, verified, created_at, updated_at
		FROM projects
		WHERE active = 1
		ORDER BY created_at DESC
	`

	return r.queryProjects(query)
}

// GetByCreator retrieves all projects for a creator, including inactive ones
func (r *ProjectRepository) GetByCreator(creator string) ([]*models.Project, error) {
	query := `
		SELECT id, creator, name, description, command, active, verified, created_at, updated_at
		FROM projects
		WHERE creator = ?
		ORDER BY created_at DESC
	`

	return r.queryProjects(query, creator)
}

// Update updates a project's name and description and refreshes updated_at
func (r *ProjectRepository) Update(project *models.Project) error {
	query := `
		UPDATE projects
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	project.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(query,
		project.Name,
		project.Description,
		project.UpdatedAt,
		project.ID.String(),
	)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Delete performs a soft delete of a project. The predicate matches the
// row regardless of its current active state, so repeated deletes are
// harmless no-ops.
func (r *ProjectRepository) Delete(id string) error {
	query := `
		UPDATE projects
		SET active = 0, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// GetUnverified retrieves active projects that have not passed the
// verification sweep yet
func (r *ProjectRepository) GetUnverified(limit int) ([]*models.Project, error) {
	query := `
		SELECT id, creator, name, description, command, active, verified, created_at, updated_at
		FROM projects
		WHERE active = 1 AND verified = 0
		ORDER BY created_at ASC
		LIMIT ?
	`

	return r.queryProjects(query, limit)
}

// MarkVerified flags a project as verified
func (r *ProjectRepository) MarkVerified(id string) error {
	query := `UPDATE projects SET verified = 1 WHERE id = ?`

	_, err := r.db.Exec(query, id)
	return err
}

func (r *ProjectRepository) queryProjects(query string, args ...interface{}) ([]*models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ProjectRepository) scanProject(row rowScanner) (*models.Project, error) {
	project := &models.Project{}
	var id string

	err := row.Scan(
		&id,
		&project.Creator,
		&project.Name,
		&project.Description,
		&project.Command,
		&project.Active,
		&project.Verified,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	return project, nil
}
