package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/taskhive/backend/models"
	"gorm.io/gorm"
)

type TaskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) *TaskRepo {
	return &TaskRepo{db}
}

// FindByID returns a task with its assignees, or nil when no such task exists
func (r *TaskRepo) FindByID(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Users").First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByAlias returns the non-deleted task holding the alias, or nil
func (r *TaskRepo) FindByAlias(alias string) (*models.Task, error) {
	var task models.Task
	err := r.db.First(&task, "alias = ?", alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindChildren returns the direct children of a task
func (r *TaskRepo) FindChildren(parentID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("parent_task_id = ?", parentID).Find(&tasks).Error
	return tasks, err
}

// FindTopLevel returns a project's top-level tasks with their assignees
func (r *TaskRepo) FindTopLevel(projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Users").
		Where("project_id = ? AND parent_task_id IS NULL", projectID).
		Find(&tasks).Error
	return tasks, err
}

// FindByProject returns every task of a project in one scan; callers regroup
// the flat list by parent id to rebuild the tree
func (r *TaskRepo) FindByProject(projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Users").Where("project_id = ?", projectID).Find(&tasks).Error
	return tasks, err
}

// Add inserts a new task into the database
func (r *TaskRepo) Add(task *models.Task) error {
	return r.db.Create(task).Error
}

// Update updates an existing task in the database
func (r *TaskRepo) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft-deletes a task from the database by id
func (r *TaskRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Task{}, "id = ?", id).Error
}

// ReplaceAssignees swaps the task's assignee set for exactly the given users
func (r *TaskRepo) ReplaceAssignees(task *models.Task, users []models.User) error {
	return r.db.Model(task).Association("Users").Replace(users)
}

// ClearAssignees removes the task's assignment rows
func (r *TaskRepo) ClearAssignees(task *models.Task) error {
	return r.db.Model(task).Association("Users").Clear()
}
