package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/models"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	userRepo  *database.UserRepo
	tokenRepo *database.TokenRepo
	issuer    tokenIssuer
}

func newAuthHandler(userRepo *database.UserRepo, tokenRepo *database.TokenRepo, issuer tokenIssuer) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		issuer:    issuer,
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token,omitempty"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed-in user plus its bearer token
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// signUp registers a new account and returns it with a bearer token
func (h authHandler) signUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if len(req.Name) < 3 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("name", "must be at least 3 characters"))
			return
		}
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		// An invited sign-up claims the stub account created by the invite
		var invited bool
		if req.Token != "" {
			invitation, err := h.tokenRepo.FindInvitationByToken(req.Token)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "invitation token", err))
				return
			}
			if invitation == nil || invitation.Email != req.Email {
				h.responder.WriteError(w, errs.NewInvalidTokenError())
				return
			}
			invited = true
		}

		existing, err := h.userRepo.FindByEmail(req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if existing != nil && !(invited && existing.Password == "") {
			h.responder.WriteError(w, errs.NewEmailTakenError(req.Email))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
			return
		}

		var user models.User
		if existing != nil {
			existing.Name = req.Name
			existing.Password = string(hash)
			if err := h.userRepo.Update(existing); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
				return
			}
			user = *existing
		} else {
			user = models.User{
				Name:     req.Name,
				Email:    req.Email,
				Password: string(hash),
			}
			if err := h.userRepo.Add(&user); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
				return
			}
		}

		token, err := h.issuer.issue(user.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.responder.WriteJSON(w, AuthResponse{User: user, Token: token})
	}
}

// signIn authenticates by email and password and returns a bearer token
func (h authHandler) signIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		user, err := h.userRepo.FindByEmail(req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			h.responder.WriteError(w, errs.NewBadCredentialsError())
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			h.responder.WriteError(w, errs.NewBadCredentialsError())
			return
		}

		token, err := h.issuer.issue(user.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.responder.WriteJSON(w, AuthResponse{User: *user, Token: token})
	}
}

// signOut acknowledges the sign-out; tokens are stateless and simply expire
func (h authHandler) signOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]string{"message": "Signed out"})
	}
}

// whoAmI returns the authenticated user
func (h authHandler) whoAmI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}
		h.responder.WriteJSON(w, user)
	}
}
