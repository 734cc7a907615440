package services

import (
	"context"
	"errors"
	"strings"

	"github.com/VyacheslavBabenko/beejee/database"
	"github.com/VyacheslavBabenko/beejee/models"
)

// Listing defaults.
const (
	DefaultLimit     = 3
	DefaultSortBy    = "created_at"
	DefaultSortOrder = "desc"
)

const msgTaskNotFound = "Task not found"

// TaskStore is the persistence the task service depends on.
type TaskStore interface {
	CountTasks(ctx context.Context) (int, error)
	ListTasks(ctx context.Context, q database.TaskQuery) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, id int64, c database.TaskChanges) error
}

// ListParams selects one page of the task listing.
type ListParams struct {
	Page      int    `json:"page" validate:"gte=1"`
	Limit     int    `json:"limit" validate:"gte=1,lte=10"`
	SortBy    string `json:"sortBy" validate:"oneof=username email status created_at"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
}

// DefaultListParams returns the parameters used when a query omits them.
func DefaultListParams() ListParams {
	return ListParams{Page: 1, Limit: DefaultLimit, SortBy: DefaultSortBy, SortOrder: DefaultSortOrder}
}

// TaskService implements the public task operations.
type TaskService struct {
	store TaskStore
}

func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// List returns one page of tasks with pagination metadata.
func (s *TaskService) List(ctx context.Context, p ListParams) (*models.TaskPage, error) {
	if err := validateStruct(p); err != nil {
		return nil, err
	}

	total, err := s.store.CountTasks(ctx)
	if err != nil {
		return nil, Internal("Failed to retrieve tasks", err)
	}

	tasks, err := s.store.ListTasks(ctx, database.TaskQuery{
		SortBy: p.SortBy,
		Desc:   p.SortOrder == "desc",
		Limit:  p.Limit,
		Offset: (p.Page - 1) * p.Limit,
	})
	if err != nil {
		return nil, Internal("Failed to retrieve tasks", err)
	}

	return &models.TaskPage{
		Tasks: tasks,
		Pagination: models.Pagination{
			CurrentPage: p.Page,
			TotalPages:  (total + p.Limit - 1) / p.Limit,
			TotalTasks:  total,
			Limit:       p.Limit,
		},
	}, nil
}

// Create validates and sanitizes a public submission and stores it as a
// pending task.
func (s *TaskService) Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	req.Text = strings.TrimSpace(req.Text)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	t := &models.Task{
		Username: sanitize(req.Username),
		Email:    sanitize(req.Email),
		Text:     sanitize(req.Text),
	}
	if err := requireContent(map[string]string{"username": t.Username, "text": t.Text}); err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, Internal("Failed to create task", err)
	}
	return t, nil
}

// Update applies an admin edit. The edited flag is raised only when the
// sanitized text differs from the stored one; updated_at is always refreshed.
func (s *TaskService) Update(ctx context.Context, id int64, req models.UpdateTaskRequest) error {
	if req.Text != nil {
		trimmed := strings.TrimSpace(*req.Text)
		req.Text = &trimmed
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	existing, err := s.store.GetTask(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return NotFound(msgTaskNotFound)
	} else if err != nil {
		return Internal("Failed to update task", err)
	}

	var changes database.TaskChanges
	if req.Text != nil {
		text := sanitize(*req.Text)
		if err := requireContent(map[string]string{"text": text}); err != nil {
			return err
		}
		if text != existing.Text {
			changes.Text = &text
			changes.IsEditedByAdmin = !existing.IsEditedByAdmin
		}
	}
	if req.Status != nil && *req.Status != existing.Status {
		changes.Status = req.Status
	}

	err = s.store.UpdateTask(ctx, id, changes)
	if errors.Is(err, database.ErrNotFound) {
		return NotFound(msgTaskNotFound)
	} else if err != nil {
		return Internal("Failed to update task", err)
	}
	return nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound(msgTaskNotFound)
	} else if err != nil {
		return nil, Internal("Failed to retrieve task", err)
	}
	return t, nil
}

// requireContent rejects fields that were reduced to nothing by sanitization,
// such as input made only of markup.
func requireContent(fields map[string]string) error {
	var errs []models.FieldError
	for _, name := range []string{"username", "text"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			errs = append(errs, models.FieldError{Field: name, Message: name + " must contain text"})
		}
	}
	if len(errs) > 0 {
		return ValidationError("Validation errors", errs...)
	}
	return nil
}
