package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/VyacheslavBabenko/beejee/models"
	"github.com/VyacheslavBabenko/beejee/services"
)

// GetTasks returns one page of tasks, sorted as requested.
func (h *Handlers) GetTasks(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r.URL.Query())
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	page, err := h.Tasks.List(r.Context(), params)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", page)
}

// listParams reads page, limit, sortBy and sortOrder, falling back to the
// defaults for omitted values. Range checks happen in the service.
func listParams(q url.Values) (services.ListParams, error) {
	p := services.DefaultListParams()
	var fields []models.FieldError

	intParam := func(name string, dst *int) {
		raw := q.Get(name)
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, models.FieldError{Field: name, Message: name + " must be an integer"})
			return
		}
		*dst = n
	}
	intParam("page", &p.Page)
	intParam("limit", &p.Limit)

	if v := q.Get("sortBy"); v != "" {
		p.SortBy = v
	}
	if v := q.Get("sortOrder"); v != "" {
		p.SortOrder = v
	}

	if len(fields) > 0 {
		return p, services.ValidationError("Validation errors", fields...)
	}
	return p, nil
}

// GetTask retrieves a single task by its ID.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	t, err := h.Tasks.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", t)
}

// CreateTask stores a public task submission.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	t, err := h.Tasks.Create(r.Context(), req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Task created successfully", models.CreatedTask{ID: t.ID})
}

// UpdateTask applies an admin edit to an existing task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req models.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	if err := h.Tasks.Update(r.Context(), id, req); err != nil {
		respondWithError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Task updated successfully", nil)
}
