package database

import (
	"gorm.io/gorm"
)

type Database struct {
	db          *gorm.DB
	userRepo    *UserRepo
	projectRepo *ProjectRepo
	taskRepo    *TaskRepo
	commentRepo *CommentRepo
	tagRepo     *TagRepo
	tokenRepo   *TokenRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:          db,
		userRepo:    NewUserRepo(db),
		projectRepo: NewProjectRepo(db),
		taskRepo:    NewTaskRepo(db),
		commentRepo: NewCommentRepo(db),
		tagRepo:     NewTagRepo(db),
		tokenRepo:   NewTokenRepo(db),
	}
}

// WithTx rebinds every repository to the given transaction. Cascade deletes
// run against the rebound set so a mid-cascade failure rolls back everything.
func (d Database) WithTx(tx *gorm.DB) Database {
	return New(tx)
}

// Transaction runs fn against a transactional copy of the Database.
func (d Database) Transaction(fn func(tx Database) error) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		return fn(d.WithTx(tx))
	})
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) TaskRepo() *TaskRepo {
	return d.taskRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) TokenRepo() *TokenRepo {
	return d.tokenRepo
}
