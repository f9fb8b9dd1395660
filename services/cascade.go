package services

import (
	"github.com/google/uuid"

	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/models"
)

// Cascade deletion walks the ownership chain explicitly instead of leaning on
// database-declared cascades: task subtrees cross into comment trees, which
// the store cannot express as a single foreign-key rule. Every helper here
// expects a transactional Database so a partial cascade rolls back whole.

// deleteTaskSubtree removes a task, its descendant tasks depth-first, the
// comment tree of every task touched and all assignment rows.
func deleteTaskSubtree(tx database.Database, task models.Task) error {
	children, err := tx.TaskRepo().FindChildren(task.ID)
	if err != nil {
		return errs.NewDatabaseError("find", "subtasks", err)
	}
	for _, child := range children {
		if err := deleteTaskSubtree(tx, child); err != nil {
			return err
		}
	}

	if err := deleteTaskComments(tx, task.ID); err != nil {
		return err
	}

	if err := tx.TaskRepo().ClearAssignees(&task); err != nil {
		return errs.NewDatabaseError("clear assignees of", "task", err)
	}
	if err := tx.TaskRepo().Delete(task.ID); err != nil {
		return errs.NewDatabaseError("delete", "task", err)
	}
	return nil
}

// deleteTaskComments removes every comment on a task. Replies always share
// the root comment's task id, so one scan covers the whole comment tree.
func deleteTaskComments(tx database.Database, taskID uuid.UUID) error {
	comments, err := tx.CommentRepo().FindByTask(taskID)
	if err != nil {
		return errs.NewDatabaseError("find", "comments", err)
	}
	for i := range comments {
		if err := tx.CommentRepo().ClearTags(&comments[i]); err != nil {
			return errs.NewDatabaseError("clear tags of", "comment", err)
		}
		if err := tx.CommentRepo().Delete(comments[i].ID); err != nil {
			return errs.NewDatabaseError("delete", "comment", err)
		}
	}
	return nil
}

// deleteCommentSubtree removes a comment and its reply descendants
// depth-first, dropping tag join rows as it goes.
func deleteCommentSubtree(tx database.Database, comment models.Comment) error {
	replies, err := tx.CommentRepo().FindChildren(comment.ID)
	if err != nil {
		return errs.NewDatabaseError("find", "replies", err)
	}
	for _, reply := range replies {
		if err := deleteCommentSubtree(tx, reply); err != nil {
			return err
		}
	}

	if err := tx.CommentRepo().ClearTags(&comment); err != nil {
		return errs.NewDatabaseError("clear tags of", "comment", err)
	}
	if err := tx.CommentRepo().Delete(comment.ID); err != nil {
		return errs.NewDatabaseError("delete", "comment", err)
	}
	return nil
}
