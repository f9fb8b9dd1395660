package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes wires the public surface and the bearer-authenticated surface
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Post("/sign-up", handlers.authHandler.signUp())
		r.Post("/sign-in", handlers.authHandler.signIn())
		r.Post("/password/email", handlers.userHandler.sendPasswordResetEmail())
		r.Post("/password/reset", handlers.userHandler.resetPassword())

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Method(http.MethodGet, "/metrics", metricsHandler())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/whoami", handlers.authHandler.whoAmI())
		r.Post("/sign-out", handlers.authHandler.signOut())

		// Project endpoints
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Post("/projects", handlers.projectHandler.createProject())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
		r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
		r.Post("/projects/{projectID}/avatar", handlers.projectHandler.uploadAvatar())
		r.Post("/projects/{projectID}/tasks", handlers.taskHandler.createTask())

		// Task endpoints
		r.Get("/tasks/{taskID}", handlers.taskHandler.getTask())
		r.Put("/tasks/{taskID}", handlers.taskHandler.updateTask())
		r.Delete("/tasks/{taskID}", handlers.taskHandler.deleteTask())
		r.Get("/tasks/{taskID}/comments", handlers.commentHandler.getTaskComments())
		r.Post("/tasks/{taskID}/comments", handlers.commentHandler.createComment())

		// Comment endpoints
		r.Put("/comments/{commentID}", handlers.commentHandler.updateComment())
		r.Delete("/comments/{commentID}", handlers.commentHandler.deleteComment())

		// Tag endpoints
		r.Get("/tags", handlers.tagHandler.getAllTags())
		r.Post("/tags", handlers.tagHandler.createTag())

		// User endpoints
		r.Get("/users", handlers.userHandler.getAllUsers())
		r.Get("/users/{userID}", handlers.userHandler.getUser())
		r.Put("/users/{userID}", handlers.userHandler.updateProfile())
		r.Put("/users/{userID}/password", handlers.userHandler.updatePassword())
		r.Post("/users/invite", handlers.userHandler.inviteUser())
		r.Delete("/users/{userID}", handlers.userHandler.deleteUser())
		r.Post("/users/avatar", handlers.userHandler.uploadAvatar())
		r.Post("/users/{userID}/avatar", handlers.userHandler.uploadAvatarByID())
		r.Get("/files/{filename}", handlers.userHandler.getFile())
	})
}
