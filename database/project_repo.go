package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepo is the gorm-backed project store. Listing is always sorted
// ascending by display order.
type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying connection. The health check pings it.
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

// ListOrdered returns all projects ascending by display order
func (r *ProjectRepo) ListOrdered(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "display_order"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	return projects, nil
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("project")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return &project, nil
}

// Create inserts a new project and returns the identifier it was assigned.
// The caller's order value is stored as given.
func (r *ProjectRepo) Create(ctx context.Context, project models.Project) (uuid.UUID, error) {
	project.ID = uuid.Nil
	if err := r.db.WithContext(ctx).Create(&project).Error; err != nil {
		return uuid.Nil, errs.NewDatabaseError("create", "project", err)
	}
	return project.ID, nil
}

// Update merges the set fields into an existing project
func (r *ProjectRepo) Update(ctx context.Context, id uuid.UUID, fields models.ProjectFields) error {
	if fields.IsEmpty() {
		_, err := r.FindByID(ctx, id)
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(fields.Columns())
	if res.Error != nil {
		return errs.NewDatabaseError("update", "project", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	return nil
}

// Delete removes a project by id. Deleting an id that no longer exists succeeds.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error; err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	return nil
}
