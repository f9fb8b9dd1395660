package api

import (
	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, issuer tokenIssuer, emailer services.Emailer, storage services.FileStorage, appURL string) *routeHandlers {
	taskService := services.NewTaskService(db)
	commentService := services.NewCommentService(db)
	projectService := services.NewProjectService(db)

	return &routeHandlers{
		authHandler:    newAuthHandler(db.UserRepo(), db.TokenRepo(), issuer),
		userHandler:    newUserHandler(db.UserRepo(), db.TokenRepo(), emailer, storage, appURL),
		projectHandler: newProjectHandler(projectService, db.ProjectRepo(), storage),
		taskHandler:    newTaskHandler(taskService, commentService),
		commentHandler: newCommentHandler(commentService),
		tagHandler:     newTagHandler(db.TagRepo()),
	}
}
