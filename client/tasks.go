package client

import (
	"context"

	"github.com/VyacheslavBabenko/beejee/models"
)

const (
	msgFetchFailed  = "Failed to load tasks"
	msgCreateFailed = "Failed to create task"
	msgUpdateFailed = "Failed to update task"
)

// TaskBoard is the task list state: one page of tasks plus its pagination
// and sort order.
type TaskBoard struct {
	Tasks      []models.Task
	Pagination models.Pagination
	SortBy     string
	SortOrder  string
	Loading    bool
	Error      string

	api *API
	// onUnauthorized runs when the server rejects the session token.
	onUnauthorized func()
}

func newTaskBoard(api *API) *TaskBoard {
	return &TaskBoard{
		Pagination: models.Pagination{CurrentPage: 1, TotalPages: 1, Limit: 3},
		SortBy:     "created_at",
		SortOrder:  "desc",
		api:        api,
	}
}

// Fetch loads page with the current sort order, replacing the list and
// pagination wholesale.
func (b *TaskBoard) Fetch(ctx context.Context, page int) error {
	b.Loading = true
	b.Error = ""
	res, err := b.api.ListTasks(ctx, ListQuery{
		Page:      page,
		Limit:     b.Pagination.Limit,
		SortBy:    b.SortBy,
		SortOrder: b.SortOrder,
	})
	b.Loading = false
	if err != nil {
		b.Error = message(err, msgFetchFailed)
		return err
	}
	b.Tasks = res.Tasks
	b.Pagination = res.Pagination
	return nil
}

// Refresh reloads the current page.
func (b *TaskBoard) Refresh(ctx context.Context) error {
	return b.Fetch(ctx, b.Pagination.CurrentPage)
}

// Create submits a task and reloads the current page. The new task is not
// inserted locally: the server's ordering decides whether it belongs on this
// page, and a local insert would duplicate it once the page is reloaded.
func (b *TaskBoard) Create(ctx context.Context, req models.CreateTaskRequest) (int64, error) {
	b.Loading = true
	b.Error = ""
	id, err := b.api.CreateTask(ctx, req)
	b.Loading = false
	if err != nil {
		b.Error = message(err, msgCreateFailed)
		return 0, err
	}
	return id, b.Refresh(ctx)
}

// Update sends an admin edit and then reloads the task, so the local entry
// carries the text and edited flag exactly as the server stored them. A 401
// ends the session.
func (b *TaskBoard) Update(ctx context.Context, id int64, req models.UpdateTaskRequest) error {
	b.Loading = true
	b.Error = ""
	err := b.api.UpdateTask(ctx, id, req)
	b.Loading = false
	if err != nil {
		b.Error = message(err, msgUpdateFailed)
		if IsUnauthorized(err) && b.onUnauthorized != nil {
			b.onUnauthorized()
		}
		return err
	}
	_, err = b.FetchTask(ctx, id)
	return err
}

// FetchTask loads one task and refreshes its entry if it is on this page.
func (b *TaskBoard) FetchTask(ctx context.Context, id int64) (*models.Task, error) {
	t, err := b.api.GetTask(ctx, id)
	if err != nil {
		b.Error = message(err, msgFetchFailed)
		return nil, err
	}
	for i := range b.Tasks {
		if b.Tasks[i].ID == id {
			b.Tasks[i] = *t
			break
		}
	}
	return t, nil
}

// SetSorting changes the sort order used by the next Fetch.
func (b *TaskBoard) SetSorting(sortBy, sortOrder string) {
	b.SortBy = sortBy
	b.SortOrder = sortOrder
}

// ToggleSort sorts by field ascending, or flips to descending when the list
// is already sorted ascending by it.
func (b *TaskBoard) ToggleSort(field string) {
	order := "asc"
	if b.SortBy == field && b.SortOrder == "asc" {
		order = "desc"
	}
	b.SetSorting(field, order)
}

func (b *TaskBoard) ClearError() { b.Error = "" }
