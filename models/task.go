package models

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task represents our task model, mapping to the tasks table.
type Task struct {
	ID              int64      `json:"id" db:"id"`
	Username        string     `json:"username" db:"username"`
	Email           string     `json:"email" db:"email"`
	Text            string     `json:"text" db:"text"`
	Status          TaskStatus `json:"status" db:"status"`
	IsEditedByAdmin bool       `json:"is_edited_by_admin" db:"is_edited_by_admin"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateTaskRequest is the public submission payload.
type CreateTaskRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Text     string `json:"text" validate:"required,max=1000"`
}

// UpdateTaskRequest is the admin edit payload. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Text   *string     `json:"text,omitempty" validate:"omitnil,min=1,max=1000"`
	Status *TaskStatus `json:"status,omitempty" validate:"omitnil,oneof=pending completed"`
}

// Pagination describes one page of a task listing.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalTasks  int `json:"totalTasks"`
	Limit       int `json:"limit"`
}

// TaskPage is the payload of the list endpoint.
type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// CreatedTask is the payload returned after a successful submission.
type CreatedTask struct {
	ID int64 `json:"id"`
}
