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

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.TaskStatus
		want     float64
	}{
		{name: "empty set", statuses: nil, want: 0},
		{name: "none done", statuses: []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress}, want: 0},
		{name: "half done", statuses: []models.TaskStatus{models.TaskStatusDone, models.TaskStatusTodo}, want: 50},
		{name: "one third done", statuses: []models.TaskStatus{models.TaskStatusDone, models.TaskStatusTodo, models.TaskStatusTodo}, want: 33.33},
		{name: "two thirds done", statuses: []models.TaskStatus{models.TaskStatusDone, models.TaskStatusDone, models.TaskStatusTodo}, want: 66.67},
		{name: "all done", statuses: []models.TaskStatus{models.TaskStatusDone, models.TaskStatusDone}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			children := make([]models.Task, len(tt.statuses))
			for i, status := range tt.statuses {
				children[i] = models.Task{Status: status}
			}
			assert.Equal(t, tt.want, ComputeProgress(children))
		})
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	db := newTestDB(t)
	service := NewTaskService(db)
	leader := seedUser(t, db, "leader@example.com", true)
	project := seedProject(t, db, leader, "proj")

	t.Run("creates a top-level task and recalculates project progress", func(t *testing.T) {
		task, err := service.CreateTask(TaskInput{
			Name:      "Design schema",
			Status:    models.TaskStatusDone,
			ProjectID: project.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Nil(t, task.ParentTaskID)

		updated, err := db.ProjectRepo().FindByID(project.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(100), updated.Progress)
	})

	t.Run("creating an incomplete sibling dilutes project progress", func(t *testing.T) {
		_, err := service.CreateTask(TaskInput{
			Name:      "Write docs",
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
		})
		require.NoError(t, err)

		updated, err := db.ProjectRepo().FindByID(project.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(50), updated.Progress)
	})

	t.Run("creating a subtask recalculates the parent, not the project", func(t *testing.T) {
		parent := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

		_, err := service.CreateTask(TaskInput{
			Name:         "Subtask",
			Status:       models.TaskStatusDone,
			ProjectID:    project.ID,
			ParentTaskID: &parent.ID,
		})
		require.NoError(t, err)

		refreshed, err := db.TaskRepo().FindByID(parent.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(100), refreshed.Progress)
	})

	t.Run("attaches the assignee set", func(t *testing.T) {
		worker := seedUser(t, db, "worker@example.com", false)

		task, err := service.CreateTask(TaskInput{
			Name:      "Assigned task",
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
			UsersIDs:  []uuid.UUID{worker.ID},
		})
		require.NoError(t, err)
		require.Len(t, task.Users, 1)
		assert.Equal(t, worker.ID, task.Users[0].ID)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		_, err := service.CreateTask(TaskInput{Status: models.TaskStatusTodo, ProjectID: project.ID})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		_, err := service.CreateTask(TaskInput{Name: "x", Status: "Paused", ProjectID: project.ID})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("rejects an unknown project", func(t *testing.T) {
		_, err := service.CreateTask(TaskInput{Name: "x", Status: models.TaskStatusTodo, ProjectID: uuid.New()})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("rejects a parent from another project", func(t *testing.T) {
		other := seedProject(t, db, leader, "other-proj")
		foreignParent := seedTask(t, db, other.ID, nil, models.TaskStatusTodo)

		_, err := service.CreateTask(TaskInput{
			Name:         "x",
			Status:       models.TaskStatusTodo,
			ProjectID:    project.ID,
			ParentTaskID: &foreignParent.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("rejects a taken alias", func(t *testing.T) {
		alias := "unique-task"
		_, err := service.CreateTask(TaskInput{
			Name: "first", Alias: &alias, Status: models.TaskStatusTodo, ProjectID: project.ID,
		})
		require.NoError(t, err)

		_, err = service.CreateTask(TaskInput{
			Name: "second", Alias: &alias, Status: models.TaskStatusTodo, ProjectID: project.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsAliasTaken(err))
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	db := newTestDB(t)
	service := NewTaskService(db)
	leader := seedUser(t, db, "leader@example.com", true)
	project := seedProject(t, db, leader, "proj")

	t.Run("refuses Done while a child is incomplete and leaves the task untouched", func(t *testing.T) {
		parent := seedTask(t, db, project.ID, nil, models.TaskStatusInProgress)
		seedTask(t, db, project.ID, &parent.ID, models.TaskStatusDone)
		seedTask(t, db, project.ID, &parent.ID, models.TaskStatusTodo)

		_, err := service.UpdateTask(parent.ID, TaskInput{
			Name:      parent.Name,
			Status:    models.TaskStatusDone,
			ProjectID: project.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsSubtasksIncomplete(err))

		refreshed, err := db.TaskRepo().FindByID(parent.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, refreshed.Status)
	})

	t.Run("allows Done once every child is complete", func(t *testing.T) {
		parent := seedTask(t, db, project.ID, nil, models.TaskStatusInProgress)
		seedTask(t, db, project.ID, &parent.ID, models.TaskStatusDone)

		updated, err := service.UpdateTask(parent.ID, TaskInput{
			Name:      parent.Name,
			Status:    models.TaskStatusDone,
			ProjectID: project.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, updated.Status)
	})

	t.Run("reverting away from Done is allowed regardless of children", func(t *testing.T) {
		parent := seedTask(t, db, project.ID, nil, models.TaskStatusDone)
		seedTask(t, db, project.ID, &parent.ID, models.TaskStatusTodo)

		updated, err := service.UpdateTask(parent.ID, TaskInput{
			Name:      parent.Name,
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusTodo, updated.Status)
	})

	t.Run("allows Done on a leaf", func(t *testing.T) {
		leaf := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

		updated, err := service.UpdateTask(leaf.ID, TaskInput{
			Name:      leaf.Name,
			Status:    models.TaskStatusDone,
			ProjectID: project.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, updated.Status)
	})

	t.Run("a task may keep its own alias", func(t *testing.T) {
		alias := "keep-me"
		task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		task.Alias = &alias
		require.NoError(t, db.TaskRepo().Update(&task))

		updated, err := service.UpdateTask(task.ID, TaskInput{
			Name:      "renamed",
			Alias:     &alias,
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Name)
	})

	t.Run("rejects another task's alias", func(t *testing.T) {
		alias := "taken-by-first"
		first := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		first.Alias = &alias
		require.NoError(t, db.TaskRepo().Update(&first))
		second := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

		_, err := service.UpdateTask(second.ID, TaskInput{
			Name:      second.Name,
			Alias:     &alias,
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsAliasTaken(err))
	})

	t.Run("replaces the assignee set in full", func(t *testing.T) {
		alice := seedUser(t, db, "alice@example.com", false)
		bob := seedUser(t, db, "bob@example.com", false)

		task, err := service.CreateTask(TaskInput{
			Name:      "handover",
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
			UsersIDs:  []uuid.UUID{alice.ID},
		})
		require.NoError(t, err)

		updated, err := service.UpdateTask(task.ID, TaskInput{
			Name:      task.Name,
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
			UsersIDs:  []uuid.UUID{bob.ID},
		})
		require.NoError(t, err)
		require.Len(t, updated.Users, 1)
		assert.Equal(t, bob.ID, updated.Users[0].ID)
	})

	t.Run("unknown task yields not found", func(t *testing.T) {
		_, err := service.UpdateTask(uuid.New(), TaskInput{
			Name: "x", Status: models.TaskStatusTodo, ProjectID: project.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("a task cannot become its own parent", func(t *testing.T) {
		task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

		_, err := service.UpdateTask(task.ID, TaskInput{
			Name:         task.Name,
			Status:       models.TaskStatusTodo,
			ProjectID:    project.ID,
			ParentTaskID: &task.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))

		refreshed, err := db.TaskRepo().FindByID(task.ID)
		require.NoError(t, err)
		assert.Nil(t, refreshed.ParentTaskID)

		// the tree remains readable
		_, err = service.GetTask(task.ID)
		require.NoError(t, err)
	})

	t.Run("a task cannot be re-parented under its own subtree", func(t *testing.T) {
		root := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		child := seedTask(t, db, project.ID, &root.ID, models.TaskStatusTodo)
		grandchild := seedTask(t, db, project.ID, &child.ID, models.TaskStatusTodo)

		_, err := service.UpdateTask(root.ID, TaskInput{
			Name:         root.Name,
			Status:       models.TaskStatusTodo,
			ProjectID:    project.ID,
			ParentTaskID: &grandchild.ID,
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))

		require.NoError(t, service.DeleteTask(root.ID))
	})

	t.Run("unknown assignees leave the task untouched", func(t *testing.T) {
		task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

		_, err := service.UpdateTask(task.ID, TaskInput{
			Name:      "should not stick",
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
			UsersIDs:  []uuid.UUID{uuid.New()},
		})
		require.Error(t, err)
		assert.True(t, errs.IsBadRequest(err))

		refreshed, err := db.TaskRepo().FindByID(task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.Name, refreshed.Name)
	})

	t.Run("duplicate assignee ids collapse to one", func(t *testing.T) {
		worker := seedUser(t, db, "dup@example.com", false)
		task := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)

		updated, err := service.UpdateTask(task.ID, TaskInput{
			Name:      task.Name,
			Status:    models.TaskStatusTodo,
			ProjectID: project.ID,
			UsersIDs:  []uuid.UUID{worker.ID, worker.ID},
		})
		require.NoError(t, err)
		require.Len(t, updated.Users, 1)
		assert.Equal(t, worker.ID, updated.Users[0].ID)
	})

	t.Run("completing a top-level task lifts project progress", func(t *testing.T) {
		fresh := seedProject(t, db, leader, "fresh")
		only := seedTask(t, db, fresh.ID, nil, models.TaskStatusTodo)

		_, err := service.UpdateTask(only.ID, TaskInput{
			Name:      only.Name,
			Status:    models.TaskStatusDone,
			ProjectID: fresh.ID,
		})
		require.NoError(t, err)

		refreshed, err := db.ProjectRepo().FindByID(fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(100), refreshed.Progress)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	db := newTestDB(t)
	service := NewTaskService(db)
	leader := seedUser(t, db, "leader@example.com", true)
	project := seedProject(t, db, leader, "proj")

	t.Run("removes the whole subtree with its comments", func(t *testing.T) {
		root := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		child := seedTask(t, db, project.ID, &root.ID, models.TaskStatusTodo)
		grandchild := seedTask(t, db, project.ID, &child.ID, models.TaskStatusTodo)
		comment := seedComment(t, db, leader, root.ID, nil, time.Now())

		require.NoError(t, service.DeleteTask(root.ID))

		for _, id := range []uuid.UUID{root.ID, child.ID, grandchild.ID} {
			gone, err := db.TaskRepo().FindByID(id)
			require.NoError(t, err)
			assert.Nil(t, gone)
		}
		goneComment, err := db.CommentRepo().FindByID(comment.ID)
		require.NoError(t, err)
		assert.Nil(t, goneComment)
	})

	t.Run("siblings survive and project progress is recalculated", func(t *testing.T) {
		fresh := seedProject(t, db, leader, "fresh")
		done := seedTask(t, db, fresh.ID, nil, models.TaskStatusDone)
		todo := seedTask(t, db, fresh.ID, nil, models.TaskStatusTodo)

		require.NoError(t, service.DeleteTask(todo.ID))

		survivor, err := db.TaskRepo().FindByID(done.ID)
		require.NoError(t, err)
		require.NotNil(t, survivor)

		refreshed, err := db.ProjectRepo().FindByID(fresh.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(100), refreshed.Progress)
	})

	t.Run("deleting a subtask recalculates the parent", func(t *testing.T) {
		parent := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
		seedTask(t, db, project.ID, &parent.ID, models.TaskStatusDone)
		todo := seedTask(t, db, project.ID, &parent.ID, models.TaskStatusTodo)

		require.NoError(t, service.DeleteTask(todo.ID))

		refreshed, err := db.TaskRepo().FindByID(parent.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(100), refreshed.Progress)
	})

	t.Run("unknown task yields not found", func(t *testing.T) {
		err := service.DeleteTask(uuid.New())
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestTaskService_GetTask(t *testing.T) {
	db := newTestDB(t)
	service := NewTaskService(db)
	leader := seedUser(t, db, "leader@example.com", true)
	project := seedProject(t, db, leader, "proj")

	root := seedTask(t, db, project.ID, nil, models.TaskStatusTodo)
	childA := seedTask(t, db, project.ID, &root.ID, models.TaskStatusTodo)
	childB := seedTask(t, db, project.ID, &root.ID, models.TaskStatusTodo)
	grandchild := seedTask(t, db, project.ID, &childA.ID, models.TaskStatusTodo)

	task, err := service.GetTask(root.ID)
	require.NoError(t, err)
	require.Len(t, task.Tasks, 2)

	ids := map[uuid.UUID][]models.Task{}
	for _, child := range task.Tasks {
		ids[child.ID] = child.Tasks
	}
	require.Contains(t, ids, childA.ID)
	require.Contains(t, ids, childB.ID)
	require.Len(t, ids[childA.ID], 1)
	assert.Equal(t, grandchild.ID, ids[childA.ID][0].ID)
	assert.Empty(t, ids[childB.ID])

	_, err = service.GetTask(uuid.New())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
