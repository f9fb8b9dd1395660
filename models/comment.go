package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a node of a task's comment tree. A nil ParentCommentID marks a
// root comment; TaskID is fixed and shared by every reply under the root.
type Comment struct {
	ID              uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index"`
	TaskID          uuid.UUID      `json:"task_id" db:"task_id" gorm:"type:uuid;not null;index"`
	Title           string         `json:"title" db:"title" gorm:"type:text;not null"`
	Comment         string         `json:"comment" db:"comment" gorm:"type:text;not null"`
	ParentCommentID *uuid.UUID     `json:"parent_comment_id,omitempty" db:"parent_comment_id" gorm:"type:uuid;index"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" db:"deleted_at" gorm:"index"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Tags     []Tag     `json:"tags,omitempty" gorm:"many2many:comments_tags"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:ParentCommentID;references:ID"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
