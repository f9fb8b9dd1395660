package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/services"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	service     *services.ProjectService
	projectRepo *database.ProjectRepo
	storage     services.FileStorage
}

func newProjectHandler(service *services.ProjectService, projectRepo *database.ProjectRepo, storage services.FileStorage) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		service:     service,
		projectRepo: projectRepo,
		storage:     storage,
	}
}

// getAllProjects returns one page of projects; page and limit are required
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("page", "must be a positive integer"))
			return
		}
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit < 1 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("limit", "must be a positive integer"))
			return
		}

		result, err := h.service.GetProjects(page, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// getProject returns a project with its full task tree
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
			return
		}

		project, err := h.service.GetProject(projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}

		var input services.ProjectInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		project, err := h.service.CreateProject(actor, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}

		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
			return
		}

		var input services.ProjectInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		project, err := h.service.UpdateProject(actor, projectID, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}

		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
			return
		}

		if err := h.service.DeleteProject(actor, projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, map[string]string{"message": "Project deleted"})
	}
}

// uploadAvatar stores a project image and records its filename
func (h projectHandler) uploadAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

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
		filename := project.ID.String() + "-" + suffix[:10] + filepath.Ext(header.Filename)

		if err := h.storage.Save(r.Context(), filename, file, header.Header.Get("Content-Type")); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to store avatar", err))
			return
		}

		project.Avatar = &filename
		if err := h.projectRepo.Update(project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}
		h.responder.WriteJSON(w, map[string]string{"filename": filename})
	}
}
