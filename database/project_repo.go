package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/taskhive/backend/models"
	"gorm.io/gorm"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindPage returns a page of projects with their leaders, newest first, plus the total count
func (r *ProjectRepo) FindPage(page, limit int) ([]*models.Project, int64, error) {
	var projects []*models.Project
	var total int64

	if err := r.db.Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&projects).Error
	return projects, total, err
}

// FindByID returns a project with its leader, or nil when no such project exists
func (r *ProjectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("User").First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByAlias returns the non-deleted project holding the alias, or nil
func (r *ProjectRepo) FindByAlias(alias string) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, "alias = ?", alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// CountTasks returns the number of non-deleted tasks owned by a project
func (r *ProjectRepo) CountTasks(projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(project *models.Project) error {
	return r.db.Create(project).Error
}

// Update updates an existing project in the database
func (r *ProjectRepo) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete soft-deletes a project from the database by id
func (r *ProjectRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Project{}, "id = ?", id).Error
}
