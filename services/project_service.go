package services

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/taskhive/backend/database"
	"github.com/taskhive/backend/errs"
	"github.com/taskhive/backend/models"
)

// ProjectInput carries the caller-supplied fields of a project create or update.
type ProjectInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Alias       string               `json:"alias"`
	Status      models.ProjectStatus `json:"status"`
	InitialDate datatypes.Date       `json:"initial_date"`
	FinalDate   datatypes.Date       `json:"final_date"`
	UserID      uuid.UUID            `json:"user_id"`
}

// ProjectPage is a page of projects plus the pagination envelope fields.
type ProjectPage struct {
	Data     []*models.Project `json:"data"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	LastPage int               `json:"last_page"`
}

// ProjectService owns project lifecycle: admin-gated mutations, alias
// uniqueness, and the transactional cascade that removes a project's whole
// task forest with every comment tree under it.
type ProjectService struct {
	logger zerolog.Logger
	db     database.Database
}

func NewProjectService(db database.Database) *ProjectService {
	return &ProjectService{
		logger: log.With().Str("serviceName", "projectService").Logger(),
		db:     db,
	}
}

func (s *ProjectService) validateInput(input ProjectInput) error {
	if input.Name == "" {
		return errs.NewMissingRequiredFieldError("name")
	}
	if input.Description == "" {
		return errs.NewMissingRequiredFieldError("description")
	}
	if input.Alias == "" {
		return errs.NewMissingRequiredFieldError("alias")
	}
	if !input.Status.Valid() {
		return errs.NewInvalidStatusError(string(input.Status))
	}

	leader, err := s.db.UserRepo().FindByID(input.UserID)
	if err != nil {
		return errs.NewDatabaseError("find", "user", err)
	}
	if leader == nil {
		return errs.NewInvalidFieldError("user_id", "user does not exist")
	}
	return nil
}

// GetProjects returns one page of projects, newest first, with leaders and
// per-project task counts.
func (s *ProjectService) GetProjects(page, limit int) (*ProjectPage, error) {
	projects, total, err := s.db.ProjectRepo().FindPage(page, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	for _, project := range projects {
		count, err := s.db.ProjectRepo().CountTasks(project.ID)
		if err != nil {
			return nil, errs.NewDatabaseError("count tasks of", "project", err)
		}
		project.TasksCount = count
	}

	lastPage := 1
	if limit > 0 {
		lastPage = int((total + int64(limit) - 1) / int64(limit))
		if lastPage == 0 {
			lastPage = 1
		}
	}
	return &ProjectPage{
		Data:     projects,
		Total:    total,
		Page:     page,
		Limit:    limit,
		LastPage: lastPage,
	}, nil
}

// GetProject returns a project with its leader and its top-level task tree,
// each task carrying assignees and recursively populated children.
func (s *ProjectService) GetProject(id uuid.UUID) (*models.Project, error) {
	project, err := s.db.ProjectRepo().FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFoundError("project not found")
	}

	all, err := s.db.TaskRepo().FindByProject(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tasks", err)
	}
	project.Tasks = buildTaskTree(all, nil)
	project.TasksCount = int64(len(all))
	return project, nil
}

// CreateProject persists a new project. Admin only; the alias must be free.
func (s *ProjectService) CreateProject(actor models.User, input ProjectInput) (*models.Project, error) {
	if !actor.IsAdmin {
		return nil, errs.NewAdminOnlyError()
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.db.ProjectRepo().FindByAlias(input.Alias)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if existing != nil {
		return nil, errs.NewAliasTakenError(input.Alias)
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		Alias:       input.Alias,
		Status:      input.Status,
		InitialDate: input.InitialDate,
		FinalDate:   input.FinalDate,
		UserID:      input.UserID,
	}
	if err := s.db.ProjectRepo().Add(&project); err != nil {
		return nil, errs.NewDatabaseError("create", "project", err)
	}

	s.logger.Info().Str("projectID", project.ID.String()).Msg("project created")
	return &project, nil
}

// UpdateProject applies field changes. Admin only; the alias may collide only
// with the project itself.
func (s *ProjectService) UpdateProject(actor models.User, id uuid.UUID, input ProjectInput) (*models.Project, error) {
	if !actor.IsAdmin {
		return nil, errs.NewAdminOnlyError()
	}

	project, err := s.db.ProjectRepo().FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFoundError("project not found")
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.db.ProjectRepo().FindByAlias(input.Alias)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if existing != nil && existing.ID != id {
		return nil, errs.NewAliasTakenError(input.Alias)
	}

	project.Name = input.Name
	project.Description = input.Description
	project.Alias = input.Alias
	project.Status = input.Status
	project.InitialDate = input.InitialDate
	project.FinalDate = input.FinalDate
	project.UserID = input.UserID
	if err := s.db.ProjectRepo().Update(project); err != nil {
		return nil, errs.NewDatabaseError("update", "project", err)
	}

	s.logger.Info().Str("projectID", project.ID.String()).Msg("project updated")
	return project, nil
}

// DeleteProject removes the project and, in the same transaction, every task
// subtree it owns along with their comment trees and assignment rows.
func (s *ProjectService) DeleteProject(actor models.User, id uuid.UUID) error {
	if !actor.IsAdmin {
		return errs.NewAdminOnlyError()
	}

	project, err := s.db.ProjectRepo().FindByID(id)
	if err != nil {
		return errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return errs.NewNotFoundError("project not found")
	}

	err = s.db.Transaction(func(tx database.Database) error {
		topLevel, err := tx.TaskRepo().FindTopLevel(id)
		if err != nil {
			return errs.NewDatabaseError("find", "tasks", err)
		}
		for _, task := range topLevel {
			if err := deleteTaskSubtree(tx, task); err != nil {
				return err
			}
		}
		if err := tx.ProjectRepo().Delete(id); err != nil {
			return errs.NewDatabaseError("delete", "project", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("projectID", id.String()).Msg("project deleted with task forest")
	return nil
}
