package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/models"
)

func newTestDB(t *testing.T) database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Comment{},
		&models.Tag{},
		&models.PasswordResetToken{},
		&models.InvitationToken{},
	))
	return database.New(db)
}

func seedUser(t *testing.T, db database.Database, email string, admin bool) models.User {
	t.Helper()
	user := models.User{
		Name:     "Test User",
		Email:    email,
		Password: "hash",
		IsAdmin:  admin,
	}
	require.NoError(t, db.UserRepo().Add(&user))
	return user
}

func seedProject(t *testing.T, db database.Database, leader models.User, alias string) models.Project {
	t.Helper()
	project := models.Project{
		Name:        "Project " + alias,
		Description: "a project",
		Alias:       alias,
		Status:      models.ProjectStatusActive,
		UserID:      leader.ID,
	}
	require.NoError(t, db.ProjectRepo().Add(&project))
	return project
}

func seedTask(t *testing.T, db database.Database, projectID uuid.UUID, parentID *uuid.UUID, status models.TaskStatus) models.Task {
	t.Helper()
	task := models.Task{
		Name:         fmt.Sprintf("task-%s", uuid.NewString()[:8]),
		Description:  "a task",
		Status:       status,
		ProjectID:    projectID,
		ParentTaskID: parentID,
	}
	require.NoError(t, db.TaskRepo().Add(&task))
	return task
}

func seedComment(t *testing.T, db database.Database, author models.User, taskID uuid.UUID, parentID *uuid.UUID, createdAt time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{
		Title:           "a title",
		Comment:         "a comment",
		TaskID:          taskID,
		ParentCommentID: parentID,
		UserID:          author.ID,
		CreatedAt:       createdAt,
	}
	require.NoError(t, db.CommentRepo().Add(&comment))
	return comment
}

func seedTag(t *testing.T, db database.Database, name string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Description: "a tag"}
	require.NoError(t, db.TagRepo().Add(&tag))
	return tag
}
