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

func TestProjectService_CreateProject(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db)
	admin := seedUser(t, db, "admin@example.com", true)
	member := seedUser(t, db, "member@example.com", false)

	input := func(alias string) ProjectInput {
		return ProjectInput{
			Name:        "Website relaunch",
			Description: "rebuild the site",
			Alias:       alias,
			Status:      models.ProjectStatusPending,
			UserID:      admin.ID,
		}
	}

	t.Run("an admin may create a project", func(t *testing.T) {
		project, err := service.CreateProject(admin, input("relaunch"))
		require.NoError(t, err)
		assert.Equal(t, "relaunch", project.Alias)
		assert.Equal(t, float64(0), project.Progress)
	})

	t.Run("a non-admin is rejected", func(t *testing.T) {
		_, err := service.CreateProject(member, input("denied"))
		require.Error(t, err)
		assert.True(t, errs.IsAdminOnly(err))
	})

	t.Run("a taken alias is rejected", func(t *testing.T) {
		_, err := service.CreateProject(admin, input("relaunch"))
		require.Error(t, err)
		assert.True(t, errs.IsAliasTaken(err))
	})

	t.Run("an unknown leader is rejected", func(t *testing.T) {
		bad := input("no-leader")
		bad.UserID = uuid.New()
		_, err := service.CreateProject(admin, bad)
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("an unknown status is rejected", func(t *testing.T) {
		bad := input("bad-status")
		bad.Status = "Archived"
		_, err := service.CreateProject(admin, bad)
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})
}

func TestProjectService_UpdateProject(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db)
	admin := seedUser(t, db, "admin@example.com", true)
	member := seedUser(t, db, "member@example.com", false)
	project := seedProject(t, db, admin, "existing")
	seedProject(t, db, admin, "other")

	input := func(alias string) ProjectInput {
		return ProjectInput{
			Name:        "Renamed",
			Description: "still a project",
			Alias:       alias,
			Status:      models.ProjectStatusActive,
			UserID:      admin.ID,
		}
	}

	t.Run("a project may keep its own alias", func(t *testing.T) {
		updated, err := service.UpdateProject(admin, project.ID, input("existing"))
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
	})

	t.Run("another project's alias is rejected", func(t *testing.T) {
		_, err := service.UpdateProject(admin, project.ID, input("other"))
		require.Error(t, err)
		assert.True(t, errs.IsAliasTaken(err))
	})

	t.Run("a non-admin is rejected", func(t *testing.T) {
		_, err := service.UpdateProject(member, project.ID, input("existing"))
		require.Error(t, err)
		assert.True(t, errs.IsAdminOnly(err))
	})

	t.Run("unknown project yields not found", func(t *testing.T) {
		_, err := service.UpdateProject(admin, uuid.New(), input("ghost"))
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestProjectService_DeleteProject(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db)
	admin := seedUser(t, db, "admin@example.com", true)
	member := seedUser(t, db, "member@example.com", false)

	t.Run("removes the task forest and its comments", func(t *testing.T) {
		project := seedProject(t, db, admin, "doomed")
		root := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		child := seedTask(t, db, project.ID, &root.ID, models.TaskStatusTodo)
		comment := seedComment(t, db, admin, child.ID, nil, time.Now())

		require.NoError(t, service.DeleteProject(admin, project.ID))

		gone, err := db.ProjectRepo().FindByID(project.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		for _, id := range []uuid.UUID{root.ID, child.ID} {
			goneTask, err := db.TaskRepo().FindByID(id)
			require.NoError(t, err)
			assert.Nil(t, goneTask)
		}
		goneComment, err := db.CommentRepo().FindByID(comment.ID)
		require.NoError(t, err)
		assert.Nil(t, goneComment)
	})

	t.Run("a non-admin is rejected", func(t *testing.T) {
		project := seedProject(t, db, admin, "kept")

		err := service.DeleteProject(member, project.ID)
		require.Error(t, err)
		assert.True(t, errs.IsAdminOnly(err))

		kept, err := db.ProjectRepo().FindByID(project.ID)
		require.NoError(t, err)
		require.NotNil(t, kept)
	})

	t.Run("unknown project yields not found", func(t *testing.T) {
		err := service.DeleteProject(admin, uuid.New())
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestProjectService_GetProjects(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db)
	admin := seedUser(t, db, "admin@example.com", true)

	aliases := []string{"p1", "p2", "p3", "p4", "p5"}
	for _, alias := range aliases {
		seedProject(t, db, admin, alias)
	}
	withTasks := seedProject(t, db, admin, "p6")
	seedTask(t, db, withTasks.ID, nil, models.TaskStatusTodo)
	seedTask(t, db, withTasks.ID, nil, models.TaskStatusDone)

	page, err := service.GetProjects(1, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
	assert.Equal(t, 2, page.LastPage)
	require.Len(t, page.Data, 4)

	// newest first, so the project with tasks leads the first page
	assert.Equal(t, withTasks.ID, page.Data[0].ID)
	assert.Equal(t, int64(2), page.Data[0].TasksCount)

	second, err := service.GetProjects(2, 4)
	require.NoError(t, err)
	require.Len(t, second.Data, 2)
}

func TestProjectService_GetProject(t *testing.T) {
	db := newTestDB(t)
	service := NewProjectService(db)
	admin := seedUser(t, db, "admin@example.com", true)
	project := seedProject(t, db, admin, "tree")

	root := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
	seedTask(t, db, project.ID, &root.ID, models.TaskStatusTodo)

	got, err := service.GetProject(project.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, root.ID, got.Tasks[0].ID)
	require.Len(t, got.Tasks[0].Tasks, 1)
	assert.Equal(t, int64(2), got.TasksCount)

	_, err = service.GetProject(uuid.New())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
