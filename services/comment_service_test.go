package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/models"
)

func TestCommentService_CreateComment(t *testing.T) {
	db := newTestDB(t)
	service := NewCommentService(db)
	author := seedUser(t, db, "author@example.com", false)
	project := seedProject(t, db, author, "proj")
	task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

	t.Run("creates a root comment with tags", func(t *testing.T) {
		bug := seedTag(t, db, "bug")
		urgent := seedTag(t, db, "urgent")

		comment, err := service.CreateComment(author, CommentInput{
			Title:   "Broken build",
			Comment: "CI fails on main",
			TaskID:  task.ID,
			TagsIDs: []uuid.UUID{bug.ID, urgent.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, author.ID, comment.UserID)
		assert.Nil(t, comment.ParentCommentID)
		assert.Len(t, comment.Tags, 2)
	})

	t.Run("creates a reply under an existing comment", func(t *testing.T) {
		root := seedComment(t, db, author, task.ID, nil, time.Now())

		reply, err := service.CreateComment(author, CommentInput{
			Title:           "Re: Broken build",
			Comment:         "Fixed in the next push",
			TaskID:          task.ID,
			ParentCommentID: &root.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, reply.ParentCommentID)
		assert.Equal(t, root.ID, *reply.ParentCommentID)
	})

	t.Run("rejects a reply whose parent belongs to another task", func(t *testing.T) {
		otherTask := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		foreignRoot := seedComment(t, db, author, otherTask.ID, nil, time.Now())

		_, err := service.CreateComment(author, CommentInput{
			Title:           "x",
			Comment:         "y",
			TaskID:          task.ID,
			ParentCommentID: &foreignRoot.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("rejects unknown tags", func(t *testing.T) {
		_, err := service.CreateComment(author, CommentInput{
			Title:   "x",
			Comment: "y",
			TaskID:  task.ID,
			TagsIDs: []uuid.UUID{uuid.New()},
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("rejects a missing title", func(t *testing.T) {
		_, err := service.CreateComment(author, CommentInput{Comment: "y", TaskID: task.ID})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})
}

func TestCommentService_UpdateComment(t *testing.T) {
	db := newTestDB(t)
	service := NewCommentService(db)
	author := seedUser(t, db, "author@example.com", false)
	stranger := seedUser(t, db, "stranger@example.com", false)
	admin := seedUser(t, db, "admin@example.com", true)
	project := seedProject(t, db, admin, "proj")
	task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

	t.Run("the author may edit", func(t *testing.T) {
		comment := seedComment(t, db, author, task.ID, nil, time.Now())

		updated, err := service.UpdateComment(author, comment.ID, CommentInput{
			Title:   "edited",
			Comment: "edited body",
			TaskID:  task.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Title)
	})

	t.Run("an admin may edit someone else's comment", func(t *testing.T) {
		comment := seedComment(t, db, author, task.ID, nil, time.Now())

		_, err := service.UpdateComment(admin, comment.ID, CommentInput{
			Title:   "moderated",
			Comment: "moderated body",
			TaskID:  task.ID,
		})
		require.NoError(t, err)
	})

	t.Run("anyone else is rejected", func(t *testing.T) {
		comment := seedComment(t, db, author, task.ID, nil, time.Now())

		_, err := service.UpdateComment(stranger, comment.ID, CommentInput{
			Title:   "hijack",
			Comment: "hijack body",
			TaskID:  task.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsUnauthorized(err))
	})

	t.Run("tag sync is a full replace", func(t *testing.T) {
		bug := seedTag(t, db, "bug")
		docs := seedTag(t, db, "docs")

		comment, err := service.CreateComment(author, CommentInput{
			Title:   "tagged",
			Comment: "body",
			TaskID:  task.ID,
			TagsIDs: []uuid.UUID{bug.ID},
		})
		require.NoError(t, err)

		updated, err := service.UpdateComment(author, comment.ID, CommentInput{
			Title:   "tagged",
			Comment: "body",
			TaskID:  task.ID,
			TagsIDs: []uuid.UUID{docs.ID},
		})
		require.NoError(t, err)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, docs.ID, updated.Tags[0].ID)
	})

	t.Run("a comment cannot move to another task", func(t *testing.T) {
		otherTask := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		comment := seedComment(t, db, author, task.ID, nil, time.Now())

		_, err := service.UpdateComment(author, comment.ID, CommentInput{
			Title:   "moved",
			Comment: "moved body",
			TaskID:  otherTask.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))

		refreshed, err := db.CommentRepo().FindByID(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, refreshed.TaskID)
	})

	t.Run("an omitted task id keeps the comment's task", func(t *testing.T) {
		comment := seedComment(t, db, author, task.ID, nil, time.Now())

		updated, err := service.UpdateComment(author, comment.ID, CommentInput{
			Title:   "still here",
			Comment: "still here body",
		})
		require.NoError(t, err)
		assert.Equal(t, task.ID, updated.TaskID)
	})

	t.Run("a comment cannot be re-parented under its own replies", func(t *testing.T) {
		root := seedComment(t, db, author, task.ID, nil, time.Now())
		reply := seedComment(t, db, author, task.ID, &root.ID, time.Now())

		_, err := service.UpdateComment(author, root.ID, CommentInput{
			Title:           "cycle",
			Comment:         "cycle body",
			TaskID:          task.ID,
			ParentCommentID: &reply.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))

		// the chain stays deletable
		require.NoError(t, service.DeleteComment(author, root.ID))
	})

	t.Run("duplicate tag ids collapse to one", func(t *testing.T) {
		urgent := seedTag(t, db, "urgent-once")
		comment := seedComment(t, db, author, task.ID, nil, time.Now())

		updated, err := service.UpdateComment(author, comment.ID, CommentInput{
			Title:   "tagged once",
			Comment: "body",
			TaskID:  task.ID,
			TagsIDs: []uuid.UUID{urgent.ID, urgent.ID},
		})
		require.NoError(t, err)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, urgent.ID, updated.Tags[0].ID)
	})

	t.Run("unknown comment yields not found", func(t *testing.T) {
		_, err := service.UpdateComment(author, uuid.New(), CommentInput{
			Title: "x", Comment: "y", TaskID: task.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	db := newTestDB(t)
	service := NewCommentService(db)
	author := seedUser(t, db, "author@example.com", false)
	stranger := seedUser(t, db, "stranger@example.com", false)
	admin := seedUser(t, db, "admin@example.com", true)
	project := seedProject(t, db, admin, "proj")
	task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

	t.Run("removes the whole reply chain", func(t *testing.T) {
		root := seedComment(t, db, author, task.ID, nil, time.Now())
		reply := seedComment(t, db, author, task.ID, &root.ID, time.Now())
		nested := seedComment(t, db, author, task.ID, &reply.ID, time.Now())

		require.NoError(t, service.DeleteComment(author, root.ID))

		for _, id := range []uuid.UUID{root.ID, reply.ID, nested.ID} {
			gone, err := db.CommentRepo().FindByID(id)
			require.NoError(t, err)
			assert.Nil(t, gone)
		}
	})

	t.Run("deleting a reply keeps the root", func(t *testing.T) {
		root := seedComment(t, db, author, task.ID, nil, time.Now())
		reply := seedComment(t, db, author, task.ID, &root.ID, time.Now())

		require.NoError(t, service.DeleteComment(admin, reply.ID))

		kept, err := db.CommentRepo().FindByID(root.ID)
		require.NoError(t, err)
		require.NotNil(t, kept)
	})

	t.Run("anyone but the author or an admin is rejected", func(t *testing.T) {
		root := seedComment(t, db, author, task.ID, nil, time.Now())

		err := service.DeleteComment(stranger, root.ID)
		require.Error(t, err)
		assert.True(t, errs.IsUnauthorized(err))
	})
}

func TestCommentService_GetTaskComments(t *testing.T) {
	db := newTestDB(t)
	service := NewCommentService(db)
	author := seedUser(t, db, "author@example.com", false)
	project := seedProject(t, db, author, "proj")
	task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

	base := time.Now().Add(-time.Hour)
	older := seedComment(t, db, author, task.ID, nil, base)
	newer := seedComment(t, db, author, task.ID, nil, base.Add(10*time.Minute))
	replyA := seedComment(t, db, author, task.ID, &older.ID, base.Add(20*time.Minute))
	nested := seedComment(t, db, author, task.ID, &replyA.ID, base.Add(30*time.Minute))

	comments, err := service.GetTaskComments(task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	// newest root first
	assert.Equal(t, newer.ID, comments[0].ID)
	assert.Equal(t, older.ID, comments[1].ID)

	require.Len(t, comments[1].Comments, 1)
	assert.Equal(t, replyA.ID, comments[1].Comments[0].ID)
	require.Len(t, comments[1].Comments[0].Comments, 1)
	assert.Equal(t, nested.ID, comments[1].Comments[0].Comments[0].ID)

	t.Run("unknown task yields not found", func(t *testing.T) {
		_, err := service.GetTaskComments(uuid.New())
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}
