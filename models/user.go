package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account that can lead projects, be assigned to tasks and author comments
type User struct {
	ID        uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name      string         `json:"name" db:"name" gorm:"type:text;not null"`
	Email     string         `json:"email" db:"email" gorm:"type:text;not null;index"`
	Password  string         `json:"-" db:"password" gorm:"type:text"`
	Avatar    *string        `json:"avatar,omitempty" db:"avatar" gorm:"type:text"`
	IsAdmin   bool           `json:"is_admin" db:"is_admin" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" db:"deleted_at" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
