package database

import (
	"errors"

	"github.com/taskhive/backend/models"
	"gorm.io/gorm"
)

type TokenRepo struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) *TokenRepo {
	return &TokenRepo{db}
}

// AddReset stores a password reset token
func (r *TokenRepo) AddReset(token *models.PasswordResetToken) error {
	return r.db.Create(token).Error
}

// FindResetByToken returns a password reset token, or nil when unknown
func (r *TokenRepo) FindResetByToken(token string) (*models.PasswordResetToken, error) {
	var reset models.PasswordResetToken
	err := r.db.First(&reset, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

// DeleteResetsByEmail removes any outstanding reset tokens for an email
func (r *TokenRepo) DeleteResetsByEmail(email string) error {
	return r.db.Delete(&models.PasswordResetToken{}, "email = ?", email).Error
}

// DeleteResetByToken consumes a reset token
func (r *TokenRepo) DeleteResetByToken(token string) error {
	return r.db.Delete(&models.PasswordResetToken{}, "token = ?", token).Error
}

// AddInvitation stores an invitation token
func (r *TokenRepo) AddInvitation(token *models.InvitationToken) error {
	return r.db.Create(token).Error
}

// FindInvitationByToken returns an invitation token, or nil when unknown
func (r *TokenRepo) FindInvitationByToken(token string) (*models.InvitationToken, error) {
	var invitation models.InvitationToken
	err := r.db.First(&invitation, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}
