package services

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/models"
)

// CommentInput carries the caller-supplied fields of a comment create or update.
type CommentInput struct {
	Title           string      `json:"title"`
	Comment         string      `json:"comment"`
	TaskID          uuid.UUID   `json:"task_id"`
	ParentCommentID *uuid.UUID  `json:"parent_comment_id,omitempty"`
	TagsIDs         []uuid.UUID `json:"tags_ids"`
}

// CommentService maintains the threaded comment tree of a task and its tag
// associations. Updates and deletes are restricted to the author or an admin.
type CommentService struct {
	logger zerolog.Logger
	db     database.Database
}

func NewCommentService(db database.Database) *CommentService {
	return &CommentService{
		logger: log.With().Str("serviceName", "commentService").Logger(),
		db:     db,
	}
}

func (s *CommentService) validateInput(input CommentInput) error {
	if input.Title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	if input.Comment == "" {
		return errs.NewMissingRequiredFieldError("comment")
	}
	if input.TaskID == uuid.Nil {
		return errs.NewMissingRequiredFieldError("task_id")
	}

	task, err := s.db.TaskRepo().FindByID(input.TaskID)
	if err != nil {
		return errs.NewDatabaseError("find", "task", err)
	}
	if task == nil {
		return errs.NewInvalidFieldError("task_id", "task does not exist")
	}

	if input.ParentCommentID != nil {
		parent, err := s.db.CommentRepo().FindByID(*input.ParentCommentID)
		if err != nil {
			return errs.NewDatabaseError("find", "parent comment", err)
		}
		if parent == nil {
			return errs.NewInvalidFieldError("parent_comment_id", "parent comment does not exist")
		}
		if parent.TaskID != input.TaskID {
			return errs.NewInvalidFieldError("task_id", "reply must share its parent's task")
		}
	}
	return nil
}

// ensureParentOutsideReplies rejects a re-parent that would close a reply
// cycle: the new parent must not be the comment itself or any reply under it.
func (s *CommentService) ensureParentOutsideReplies(id, parentID uuid.UUID) error {
	current := parentID
	for {
		if current == id {
			return errs.NewInvalidFieldError("parent_comment_id", "a comment cannot be nested under itself or its own replies")
		}
		ancestor, err := s.db.CommentRepo().FindByID(current)
		if err != nil {
			return errs.NewDatabaseError("find", "parent comment", err)
		}
		if ancestor == nil || ancestor.ParentCommentID == nil {
			return nil
		}
		current = *ancestor.ParentCommentID
	}
}

func (s *CommentService) resolveTags(ids []uuid.UUID) ([]models.Tag, error) {
	unique := dedupeIDs(ids)
	tags, err := s.db.TagRepo().FindByIDs(unique)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	if len(tags) != len(unique) {
		return nil, errs.NewInvalidFieldError("tags_ids", "one or more tags do not exist")
	}
	return tags, nil
}

// CreateComment persists a comment authored by the acting user, optionally as
// a reply, and attaches its tag set.
func (s *CommentService) CreateComment(actor models.User, input CommentInput) (*models.Comment, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(input.TagsIDs)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		Title:           input.Title,
		Comment:         input.Comment,
		TaskID:          input.TaskID,
		ParentCommentID: input.ParentCommentID,
		UserID:          actor.ID,
	}
	if err := s.db.CommentRepo().Add(&comment); err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	if err := s.db.CommentRepo().AttachTags(&comment, tags); err != nil {
		return nil, errs.NewDatabaseError("tag", "comment", err)
	}
	comment.Tags = tags

	s.logger.Info().Str("commentID", comment.ID.String()).Msg("comment created")
	return &comment, nil
}

// UpdateComment re-syncs the tag set (full replace) and persists field
// changes. Only the author or an admin may update a comment.
func (s *CommentService) UpdateComment(actor models.User, id uuid.UUID, input CommentInput) (*models.Comment, error) {
	comment, err := s.db.CommentRepo().FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comment", err)
	}
	if comment == nil {
		return nil, errs.NewNotFoundError("comment not found")
	}
	if !actor.IsAdmin && comment.UserID != actor.ID {
		return nil, errs.NewNotCommentAuthorError()
	}

	// task_id is fixed at creation; replies rely on sharing the root's task
	if input.TaskID == uuid.Nil {
		input.TaskID = comment.TaskID
	}
	if input.TaskID != comment.TaskID {
		return nil, errs.NewInvalidFieldError("task_id", "a comment cannot move to another task")
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if input.ParentCommentID != nil {
		if err := s.ensureParentOutsideReplies(id, *input.ParentCommentID); err != nil {
			return nil, err
		}
	}
	tags, err := s.resolveTags(input.TagsIDs)
	if err != nil {
		return nil, err
	}

	if err := s.db.CommentRepo().ReplaceTags(comment, tags); err != nil {
		return nil, errs.NewDatabaseError("tag", "comment", err)
	}

	comment.Title = input.Title
	comment.Comment = input.Comment
	comment.ParentCommentID = input.ParentCommentID
	comment.Tags = tags
	if err := s.db.CommentRepo().Update(comment); err != nil {
		return nil, errs.NewDatabaseError("update", "comment", err)
	}

	s.logger.Info().Str("commentID", comment.ID.String()).Msg("comment updated")
	return comment, nil
}

// DeleteComment removes a comment and its whole reply subtree in one
// transaction. Only the author or an admin may delete a comment.
func (s *CommentService) DeleteComment(actor models.User, id uuid.UUID) error {
	comment, err := s.db.CommentRepo().FindByID(id)
	if err != nil {
		return errs.NewDatabaseError("find", "comment", err)
	}
	if comment == nil {
		return errs.NewNotFoundError("comment not found")
	}
	if !actor.IsAdmin && comment.UserID != actor.ID {
		return errs.NewNotCommentAuthorError()
	}

	err = s.db.Transaction(func(tx database.Database) error {
		return deleteCommentSubtree(tx, *comment)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("commentID", id.String()).Msg("comment deleted with replies")
	return nil
}

// GetTaskComments returns the task's root comments newest first, each with
// its reply subtree, tags and author populated. The tree is rebuilt from one
// scan of the task's comments grouped by parent id.
func (s *CommentService) GetTaskComments(taskID uuid.UUID) ([]models.Comment, error) {
	task, err := s.db.TaskRepo().FindByID(taskID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "task", err)
	}
	if task == nil {
		return nil, errs.NewNotFoundError("task not found")
	}

	all, err := s.db.CommentRepo().FindByTask(taskID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comments", err)
	}
	return buildCommentTree(all), nil
}

// buildCommentTree regroups a flat comment list into root comments with
// nested replies. Input order (newest first) is preserved at every level.
func buildCommentTree(all []models.Comment) []models.Comment {
	byParent := make(map[uuid.UUID][]models.Comment)
	var roots []models.Comment
	for _, c := range all {
		if c.ParentCommentID != nil {
			byParent[*c.ParentCommentID] = append(byParent[*c.ParentCommentID], c)
		} else {
			roots = append(roots, c)
		}
	}

	var attach func(comments []models.Comment) []models.Comment
	attach = func(comments []models.Comment) []models.Comment {
		for i := range comments {
			comments[i].Comments = attach(byParent[comments[i].ID])
		}
		return comments
	}
	return attach(roots)
}
