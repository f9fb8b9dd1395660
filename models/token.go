package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken is a single-use token mailed to a user; issuing a new one
// replaces any previous token for the same email.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email     string    `json:"email" db:"email" gorm:"type:text;not null;index"`
	Token     string    `json:"token" db:"token" gorm:"type:text;not null;index"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// InvitationToken records a pending invite sent to an email address.
type InvitationToken struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email     string    `json:"email" db:"email" gorm:"type:text;not null;index"`
	Token     string    `json:"token" db:"token" gorm:"type:text;not null;index"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (t *InvitationToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
