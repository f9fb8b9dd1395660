package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectStatus is the closed set of project lifecycle states
type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "Pending"
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusCompleted ProjectStatus = "Completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusActive, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project owns a forest of tasks; Progress is derived from its top-level tasks
type Project struct {
	ID          uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string         `json:"name" db:"name" gorm:"type:text;not null"`
	Description string         `json:"description" db:"description" gorm:"type:text;not null"`
	Avatar      *string        `json:"avatar,omitempty" db:"avatar" gorm:"type:text"`
	Alias       string         `json:"alias" db:"alias" gorm:"type:text;not null;index"`
	Status      ProjectStatus  `json:"status" db:"status" gorm:"type:text;not null"`
	InitialDate datatypes.Date `json:"initial_date" db:"initial_date"`
	FinalDate   datatypes.Date `json:"final_date" db:"final_date"`
	Progress    float64        `json:"progress" db:"progress" gorm:"not null;default:0"`
	UserID      uuid.UUID      `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" db:"deleted_at" gorm:"index"`

	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:ProjectID;references:ID"`

	// TasksCount is computed on list reads, never stored
	TasksCount int64 `json:"tasks_count" gorm:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
