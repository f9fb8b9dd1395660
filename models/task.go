package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskStatus is the closed set of task states
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "Todo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusDone       TaskStatus = "Done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a node of a project's task tree. A nil ParentTaskID marks a top-level
// task; ProjectID is fixed at creation and shared by the whole subtree.
type Task struct {
	ID           uuid.UUID       `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ParentTaskID *uuid.UUID      `json:"parent_task_id,omitempty" db:"parent_task_id" gorm:"type:uuid;index"`
	ProjectID    uuid.UUID       `json:"project_id" db:"project_id" gorm:"type:uuid;not null;index"`
	Name         string          `json:"name" db:"name" gorm:"type:text;not null"`
	Description  string          `json:"description" db:"description" gorm:"type:text"`
	Alias        *string         `json:"alias,omitempty" db:"alias" gorm:"type:text;index"`
	Status       TaskStatus      `json:"status" db:"status" gorm:"type:text;not null"`
	InitialDate  *datatypes.Date `json:"initial_date,omitempty" db:"initial_date"`
	FinalDate    *datatypes.Date `json:"final_date,omitempty" db:"final_date"`
	TimeSpend    string          `json:"time_spend" db:"time_spend" gorm:"type:text"`
	Progress     float64         `json:"progress" db:"progress" gorm:"not null;default:0"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt    gorm.DeletedAt  `json:"-" db:"deleted_at" gorm:"index"`

	Users    []User    `json:"users,omitempty" gorm:"many2many:task_users"`
	Tasks    []Task    `json:"tasks,omitempty" gorm:"foreignKey:ParentTaskID;references:ID"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:TaskID;references:ID"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
