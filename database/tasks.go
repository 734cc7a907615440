package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VyacheslavBabenko/beejee/models"
)

const taskColumns = "id, username, email, text, status, is_edited_by_admin, created_at, updated_at"

// sortColumns whitelists the columns a listing may be ordered by.
var sortColumns = map[string]string{
	"username":   "username",
	"email":      "email",
	"status":     "status",
	"created_at": "created_at",
}

// TaskQuery selects one page of tasks.
type TaskQuery struct {
	SortBy string
	Desc   bool
	Limit  int
	Offset int
}

// TaskChanges lists the columns an update writes. Nil fields are left as is.
type TaskChanges struct {
	Text            *string
	Status          *models.TaskStatus
	IsEditedByAdmin bool
}

// CountTasks returns the total number of tasks.
func (s *Store) CountTasks(ctx context.Context) (int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tasks"); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, nil
}

// ListTasks retrieves one page of tasks. Rows with equal sort keys are ordered
// by id in the same direction.
func (s *Store) ListTasks(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return nil, fmt.Errorf("unsupported sort column %q", q.SortBy)
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM tasks ORDER BY %s %s, id %s LIMIT ? OFFSET ?", taskColumns, column, dir, dir)
	tasks := []models.Task{}
	if err := s.db.SelectContext(ctx, &tasks, s.db.Rebind(query), q.Limit, q.Offset); err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a single task by its ID.
func (s *Store) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := s.db.GetContext(ctx, &t, s.db.Rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// CreateTask inserts a pending task and fills in its generated fields.
func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	now := time.Now().UTC()
	t.Status = models.StatusPending
	t.IsEditedByAdmin = false
	t.CreatedAt, t.UpdatedAt = now, now

	id, err := s.insert(ctx,
		"INSERT INTO tasks (username, email, text, status, is_edited_by_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.Username, t.Email, t.Text, t.Status, t.IsEditedByAdmin, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	t.ID = id
	return nil
}

// UpdateTask writes the given changes and always refreshes updated_at.
func (s *Store) UpdateTask(ctx context.Context, id int64, c TaskChanges) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if c.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *c.Text)
	}
	if c.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *c.Status)
	}
	if c.IsEditedByAdmin {
		sets = append(sets, "is_edited_by_admin = ?")
		args = append(args, true)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
