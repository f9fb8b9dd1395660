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

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	service   *services.CommentService
}

func newCommentHandler(service *services.CommentService) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		service:   service,
	}
}

// getTaskComments returns the threaded comments of a task, newest roots first
func (h commentHandler) getTaskComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid taskID"))
			return
		}

		comments, err := h.service.GetTaskComments(taskID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comments)
	}
}

// createComment posts a comment or a reply on the task in the URL
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}

		taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid taskID"))
			return
		}

		var input services.CommentInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		input.TaskID = taskID

		comment, err := h.service.CreateComment(actor, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comment)
	}
}

func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}

		commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid commentID"))
			return
		}

		var input services.CommentInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		comment, err := h.service.UpdateComment(actor, commentID, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, comment)
	}
}

func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("not authenticated"))
			return
		}

		commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid commentID"))
			return
		}

		if err := h.service.DeleteComment(actor, commentID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, map[string]string{"message": "Comment deleted"})
	}
}
