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

// TaskInput carries the caller-supplied fields of a task create or update.
type TaskInput struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Alias        *string           `json:"alias,omitempty"`
	Status       models.TaskStatus `json:"status"`
	InitialDate  *datatypes.Date   `json:"initial_date,omitempty"`
	FinalDate    *datatypes.Date   `json:"final_date,omitempty"`
	TimeSpend    string            `json:"time_spend"`
	ProjectID    uuid.UUID         `json:"project_id"`
	ParentTaskID *uuid.UUID        `json:"parent_task_id,omitempty"`
	UsersIDs     []uuid.UUID       `json:"users_ids"`
}

// TaskService maintains the task hierarchy of a project: creation and updates
// with alias and status guards, assignee sync, progress recalculation on the
// governing aggregate, and transactional cascade deletes.
type TaskService struct {
	logger zerolog.Logger
	db     database.Database
}

func NewTaskService(db database.Database) *TaskService {
	return &TaskService{
		logger: log.With().Str("serviceName", "taskService").Logger(),
		db:     db,
	}
}

func (s *TaskService) validateInput(input TaskInput) error {
	if input.Name == "" {
		return errs.NewMissingRequiredFieldError("name")
	}
	if !input.Status.Valid() {
		return errs.NewInvalidStatusError(string(input.Status))
	}
	if input.ProjectID == uuid.Nil {
		return errs.NewMissingRequiredFieldError("project_id")
	}

	project, err := s.db.ProjectRepo().FindByID(input.ProjectID)
	if err != nil {
		return errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return errs.NewInvalidFieldError("project_id", "project does not exist")
	}

	if input.ParentTaskID != nil {
		parent, err := s.db.TaskRepo().FindByID(*input.ParentTaskID)
		if err != nil {
			return errs.NewDatabaseError("find", "parent task", err)
		}
		if parent == nil {
			return errs.NewInvalidFieldError("parent_task_id", "parent task does not exist")
		}
		if parent.ProjectID != input.ProjectID {
			return errs.NewInvalidFieldError("project_id", "subtask must share its parent's project")
		}
	}
	return nil
}

// ensureParentOutsideSubtree rejects a re-parent that would close a cycle:
// the new parent must not be the task itself or any of its descendants.
// Walking the ancestor chain of the proposed parent covers both, since a
// descendant's chain passes through the task on the way to the root.
func (s *TaskService) ensureParentOutsideSubtree(id, parentID uuid.UUID) error {
	current := parentID
	for {
		if current == id {
			return errs.NewInvalidFieldError("parent_task_id", "a task cannot be nested under itself or its own subtree")
		}
		ancestor, err := s.db.TaskRepo().FindByID(current)
		if err != nil {
			return errs.NewDatabaseError("find", "parent task", err)
		}
		if ancestor == nil || ancestor.ParentTaskID == nil {
			return nil
		}
		current = *ancestor.ParentTaskID
	}
}

func (s *TaskService) resolveAssignees(ids []uuid.UUID) ([]models.User, error) {
	unique := dedupeIDs(ids)
	users, err := s.db.UserRepo().FindByIDs(unique)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}
	if len(users) != len(unique) {
		return nil, errs.NewInvalidFieldError("users_ids", "one or more users do not exist")
	}
	return users, nil
}

// dedupeIDs drops repeated ids while preserving first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var unique []uuid.UUID
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// CreateTask persists a new task, attaches its assignee set and recalculates
// progress on the governing aggregate.
func (s *TaskService) CreateTask(input TaskInput) (*models.Task, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	if input.Alias != nil && *input.Alias != "" {
		existing, err := s.db.TaskRepo().FindByAlias(*input.Alias)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "task", err)
		}
		if existing != nil {
			return nil, errs.NewAliasTakenError(*input.Alias)
		}
	}

	users, err := s.resolveAssignees(input.UsersIDs)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		Name:         input.Name,
		Description:  input.Description,
		Alias:        input.Alias,
		Status:       input.Status,
		InitialDate:  input.InitialDate,
		FinalDate:    input.FinalDate,
		TimeSpend:    input.TimeSpend,
		ProjectID:    input.ProjectID,
		ParentTaskID: input.ParentTaskID,
	}
	// insert, assignee attach and progress recalculation commit or roll back as one
	err = s.db.Transaction(func(tx database.Database) error {
		if err := tx.TaskRepo().Add(&task); err != nil {
			return errs.NewDatabaseError("create", "task", err)
		}
		if len(users) > 0 {
			if err := tx.TaskRepo().ReplaceAssignees(&task, users); err != nil {
				return errs.NewDatabaseError("assign users to", "task", err)
			}
			task.Users = users
		}
		return s.calculateProgress(tx, task)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("taskID", task.ID.String()).Msg("task created")
	return &task, nil
}

// UpdateTask applies field changes, replaces the assignee set and recalculates
// progress. Marking a task Done is rejected while any direct child remains
// incomplete; every check runs before the first write.
func (s *TaskService) UpdateTask(id uuid.UUID, input TaskInput) (*models.Task, error) {
	task, err := s.db.TaskRepo().FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "task", err)
	}
	if task == nil {
		return nil, errs.NewNotFoundError("task not found")
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if input.ParentTaskID != nil {
		if err := s.ensureParentOutsideSubtree(id, *input.ParentTaskID); err != nil {
			return nil, err
		}
	}

	if input.Alias != nil && *input.Alias != "" {
		existing, err := s.db.TaskRepo().FindByAlias(*input.Alias)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "task", err)
		}
		if existing != nil && existing.ID != id {
			return nil, errs.NewAliasTakenError(*input.Alias)
		}
	}

	if input.Status == models.TaskStatusDone {
		children, err := s.db.TaskRepo().FindChildren(id)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "subtasks", err)
		}
		for _, child := range children {
			if child.Status != models.TaskStatusDone {
				return nil, errs.NewSubtasksIncompleteError()
			}
		}
	}

	users, err := s.resolveAssignees(input.UsersIDs)
	if err != nil {
		return nil, err
	}

	task.Name = input.Name
	task.Description = input.Description
	task.Alias = input.Alias
	task.Status = input.Status
	task.InitialDate = input.InitialDate
	task.FinalDate = input.FinalDate
	task.TimeSpend = input.TimeSpend
	task.ProjectID = input.ProjectID
	task.ParentTaskID = input.ParentTaskID

	// update, assignee sync and progress recalculation commit or roll back as one
	err = s.db.Transaction(func(tx database.Database) error {
		if err := tx.TaskRepo().Update(task); err != nil {
			return errs.NewDatabaseError("update", "task", err)
		}
		// full replace, not a merge
		if err := tx.TaskRepo().ReplaceAssignees(task, users); err != nil {
			return errs.NewDatabaseError("assign users to", "task", err)
		}
		task.Users = users
		return s.calculateProgress(tx, *task)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("taskID", task.ID.String()).Msg("task updated")
	return task, nil
}

// DeleteTask removes the task, its descendant subtree and every comment tree
// hanging off it in a single transaction, then recalculates progress on the
// governing aggregate so the shrunk child-set is reflected.
func (s *TaskService) DeleteTask(id uuid.UUID) error {
	task, err := s.db.TaskRepo().FindByID(id)
	if err != nil {
		return errs.NewDatabaseError("find", "task", err)
	}
	if task == nil {
		return errs.NewNotFoundError("task not found")
	}

	err = s.db.Transaction(func(tx database.Database) error {
		if err := deleteTaskSubtree(tx, *task); err != nil {
			return err
		}
		return s.calculateProgress(tx, *task)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("taskID", id.String()).Msg("task deleted with subtree")
	return nil
}

// GetTask returns a task with its assignees and its children, each child
// recursively populated. The tree is rebuilt from one scan of the project's
// tasks grouped by parent id.
func (s *TaskService) GetTask(id uuid.UUID) (*models.Task, error) {
	task, err := s.db.TaskRepo().FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "task", err)
	}
	if task == nil {
		return nil, errs.NewNotFoundError("task not found")
	}

	all, err := s.db.TaskRepo().FindByProject(task.ProjectID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tasks", err)
	}
	task.Tasks = buildTaskTree(all, &task.ID)
	return task, nil
}

// buildTaskTree regroups a flat task list into the subtree rooted under
// parentID (nil for the top level).
func buildTaskTree(all []models.Task, parentID *uuid.UUID) []models.Task {
	byParent := make(map[uuid.UUID][]models.Task)
	var roots []models.Task
	for _, t := range all {
		if t.ParentTaskID != nil {
			byParent[*t.ParentTaskID] = append(byParent[*t.ParentTaskID], t)
		} else if parentID == nil {
			roots = append(roots, t)
		}
	}
	if parentID != nil {
		roots = byParent[*parentID]
	}

	var attach func(tasks []models.Task) []models.Task
	attach = func(tasks []models.Task) []models.Task {
		for i := range tasks {
			tasks[i].Tasks = attach(byParent[tasks[i].ID])
		}
		return tasks
	}
	return attach(roots)
}

// calculateProgress recomputes the progress of the mutated task's governing
// aggregate: its parent task when it has one, the owning project otherwise.
// Only direct children count; grandchildren roll up one level at a time.
func (s *TaskService) calculateProgress(d database.Database, task models.Task) error {
	if task.ParentTaskID != nil {
		parent, err := d.TaskRepo().FindByID(*task.ParentTaskID)
		if err != nil {
			return errs.NewDatabaseError("find", "parent task", err)
		}
		if parent == nil {
			return errs.NewNotFoundError("parent task not found")
		}
		children, err := d.TaskRepo().FindChildren(parent.ID)
		if err != nil {
			return errs.NewDatabaseError("find", "subtasks", err)
		}
		parent.Progress = ComputeProgress(children)
		if err := d.TaskRepo().Update(parent); err != nil {
			return errs.NewDatabaseError("update", "parent task", err)
		}
		return nil
	}

	project, err := d.ProjectRepo().FindByID(task.ProjectID)
	if err != nil {
		return errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return errs.NewNotFoundError("project not found")
	}
	topLevel, err := d.TaskRepo().FindTopLevel(project.ID)
	if err != nil {
		return errs.NewDatabaseError("find", "tasks", err)
	}
	project.Progress = ComputeProgress(topLevel)
	if err := d.ProjectRepo().Update(project); err != nil {
		return errs.NewDatabaseError("update", "project", err)
	}
	return nil
}
