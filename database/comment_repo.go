package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/taskhive/backend/models"
	"gorm.io/gorm"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// FindByID returns a comment with its tags and author, or nil when no such comment exists
func (r *CommentRepo) FindByID(id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Tags").Preload("User").First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByTask returns every comment on a task in one scan, newest first;
// callers regroup the flat list by parent id to rebuild the reply tree
func (r *CommentRepo) FindByTask(taskID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Tags").Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// FindChildren returns the direct replies to a comment
func (r *CommentRepo) FindChildren(parentID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("parent_comment_id = ?", parentID).Find(&comments).Error
	return comments, err
}

// Add inserts a new comment into the database
func (r *CommentRepo) Add(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// Update updates an existing comment in the database
func (r *CommentRepo) Update(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// Delete soft-deletes a comment from the database by id
func (r *CommentRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Comment{}, "id = ?", id).Error
}

// AttachTags inserts join rows for the given tags, skipping ones already present
func (r *CommentRepo) AttachTags(comment *models.Comment, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.Model(comment).Association("Tags").Append(tags)
}

// ReplaceTags swaps the comment's tag set for exactly the given tags
func (r *CommentRepo) ReplaceTags(comment *models.Comment, tags []models.Tag) error {
	return r.db.Model(comment).Association("Tags").Replace(tags)
}

// ClearTags removes the comment's tag join rows
func (r *CommentRepo) ClearTags(comment *models.Comment) error {
	return r.db.Model(comment).Association("Tags").Clear()
}
