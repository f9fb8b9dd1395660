package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/services"
)

type taskHandler struct {
	responder      Responder
	logger         zerolog.Logger
	service        *services.TaskService
	commentService *services.CommentService
}

func newTaskHandler(service *services.TaskService, commentService *services.CommentService) taskHandler {
	logger := log.With().Str("handlerName", "taskHandler").Logger()

	return taskHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		service:        service,
		commentService: commentService,
	}
}

// createTask creates a task under the project in the URL
func (h taskHandler) createTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
			return
		}

		var input services.TaskInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		input.ProjectID = projectID

		task, err := h.service.CreateTask(input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, task)
	}
}

// getTask returns a task with its subtree and its threaded comments
func (h taskHandler) getTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid taskID"))
			return
		}

		task, err := h.service.GetTask(taskID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comments, err := h.commentService.GetTaskComments(taskID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		task.Comments = comments

		h.responder.WriteJSON(w, task)
	}
}

func (h taskHandler) updateTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid taskID"))
			return
		}

		var input services.TaskInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		task, err := h.service.UpdateTask(taskID, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, task)
	}
}

func (h taskHandler) deleteTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid taskID"))
			return
		}

		if err := h.service.DeleteTask(taskID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, map[string]string{"message": "Task deleted"})
	}
}
