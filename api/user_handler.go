package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/models"
	"github.com/taskhive/backend/services"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	tokenRepo *database.TokenRepo
	emailer   services.Emailer
	storage   services.FileStorage
	appURL    string
}

func newUserHandler(userRepo *database.UserRepo, tokenRepo *database.TokenRepo, emailer services.Emailer, storage services.FileStorage, appURL string) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		emailer:   emailer,
		storage:   storage,
		appURL:    appURL,
	}
}

// UserPage is a page of users plus the pagination envelope fields
type UserPage struct {
	Data     []*models.User `json:"data"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	Limit    int            `json:"limit"`
	LastPage int            `json:"last_page"`
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// getAllUsers lists users; with page+limit it pages over non-admins only
func (h userHandler) getAllUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageStr := r.URL.Query().Get("page")
		limitStr := r.URL.Query().Get("limit")

		if pageStr == "" || limitStr == "" {
			users, err := h.userRepo.FindAll()
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "users", err))
				return
			}
			h.responder.WriteJSON(w, users)
			return
		}

		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("page", "must be a positive integer"))
			return
		}
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("limit", "must be a positive integer"))
			return
		}

		users, total, err := h.userRepo.FindPage(page, limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "users", err))
			return
		}

		lastPage := int((total + int64(limit) - 1) / int64(limit))
		if lastPage == 0 {
			lastPage = 1
		}
		h.responder.WriteJSON(w, UserPage{Data: users, Total: total, Page: page, Limit: limit, LastPage: lastPage})
	}
}

// getUser returns a single user by id
func (h userHandler) getUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid userID"))
			return
		}

		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("user not found"))
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// updateProfile renames a user; the email may collide only with the user itself
func (h userHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid userID"))
			return
		}

		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Name == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}

		byEmail, err := h.userRepo.FindByEmail(req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if byEmail != nil && byEmail.ID != userID {
			h.responder.WriteError(w, errs.NewEmailTakenError(req.Email))
			return
		}

		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("user not found"))
			return
		}

		user.Name = req.Name
		user.Email = req.Email
		if err := h.userRepo.Update(user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// updatePassword re-hashes and stores a user's password
func (h userHandler) updatePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid userID"))
			return
		}

		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("user not found"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
			return
		}
		user.Password = string(hash)
		if err := h.userRepo.Update(user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// inviteUser creates a stub account and mails an invitation token
func (h userHandler) inviteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}

		existing, err := h.userRepo.FindByEmail(req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if existing != nil {
			h.responder.WriteError(w, errs.NewEmailTakenError(req.Email))
			return
		}

		user := models.User{Email: req.Email}
		if err := h.userRepo.Add(&user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}

		token, err := randomToken()
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to generate token", err))
			return
		}
		if err := h.tokenRepo.AddInvitation(&models.InvitationToken{Email: req.Email, Token: token}); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "invitation token", err))
			return
		}

		if h.emailer == nil {
			h.responder.WriteError(w, errs.NewInternalError("email sending is not configured"))
			return
		}
		if err := h.emailer.Send(
			"You have been invited to join the app",
			services.InviteEmailBody(token, h.appURL),
			[]string{req.Email},
		); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to send invitation email", err))
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// deleteUser removes an account; admin only
func (h userHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}
		if !actor.IsAdmin {
			h.responder.WriteError(w, errs.NewAdminOnlyError())
			return
		}

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid userID"))
			return
		}

		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("user not found"))
			return
		}

		if err := h.userRepo.Delete(userID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "user", err))
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// sendPasswordResetEmail issues a reset token, replacing any prior one
func (h userHandler) sendPasswordResetEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}

		user, err := h.userRepo.FindByEmail(req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("email", "no account with this email"))
			return
		}

		token, err := randomToken()
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to generate token", err))
			return
		}
		if err := h.tokenRepo.DeleteResetsByEmail(req.Email); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "password reset tokens", err))
			return
		}
		if err := h.tokenRepo.AddReset(&models.PasswordResetToken{Email: req.Email, Token: token}); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "password reset token", err))
			return
		}

		if h.emailer == nil {
			h.responder.WriteError(w, errs.NewInternalError("email sending is not configured"))
			return
		}
		if err := h.emailer.Send(
			"Reset your password",
			services.PasswordResetEmailBody(token, h.appURL),
			[]string{req.Email},
		); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to send password reset email", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{"token": token})
	}
}

// resetPassword consumes a reset token and stores the new password
func (h userHandler) resetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token    string `json:"token"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Token == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("token"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		reset, err := h.tokenRepo.FindResetByToken(req.Token)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "password reset token", err))
			return
		}
		if reset == nil {
			h.responder.WriteError(w, errs.NewInvalidTokenError())
			return
		}

		user, err := h.userRepo.FindByEmail(reset.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("user not found"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
			return
		}
		user.Password = string(hash)
		if err := h.userRepo.Update(user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}
		if err := h.tokenRepo.DeleteResetByToken(req.Token); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "password reset token", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{"message": "Password reset"})
	}
}

func (h userHandler) saveAvatar(w http.ResponseWriter, r *http.Request, user *models.User) {
	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.responder.WriteError(w, errs.NewBadRequestError("File not found"))
		return
	}
	defer file.Close()

	suffix, err := randomToken()
	if err != nil {
		h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to generate filename", err))
		return
	}
	filename := user.ID.String() + "-" + suffix[:10] + filepath.Ext(header.Filename)

	if err := h.storage.Save(r.Context(), filename, file, header.Header.Get("Content-Type")); err != nil {
		h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to store avatar", err))
		return
	}

	user.Avatar = &filename
	if err := h.userRepo.Update(user); err != nil {
		h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
		return
	}
	h.responder.WriteJSON(w, map[string]string{"filename": filename})
}

// uploadAvatar stores an avatar for the authenticated user
func (h userHandler) uploadAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}
		h.saveAvatar(w, r, &actor)
	}
}

// uploadAvatarByID stores an avatar for the given user
func (h userHandler) uploadAvatarByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid userID"))
			return
		}
		user, err := h.userRepo.FindByID(userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("user not found"))
			return
		}
		h.saveAvatar(w, r, user)
	}
}

// getFile streams a stored file (avatars) back to the client
func (h userHandler) getFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filename == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing filename"))
			return
		}

		f, err := h.storage.Open(r.Context(), filename)
		if err != nil {
			h.responder.WriteError(w, errs.NewNotFoundError("file not found"))
			return
		}
		defer f.Close()

		if _, err := io.Copy(w, f); err != nil {
			h.logger.Error().Err(err).Str("filename", filename).Msg("error streaming file")
		}
	}
}
