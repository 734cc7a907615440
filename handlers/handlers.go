package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/VyacheslavBabenko/beejee/middleware"
	"github.com/VyacheslavBabenko/beejee/models"
	"github.com/VyacheslavBabenko/beejee/services"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers struct holds the services, allowing methods to share them.
type Handlers struct {
	Auth  *services.AuthService
	Tasks *services.TaskService
	DB    Pinger
}

// NewHandlers is a constructor for the Handlers struct.
func NewHandlers(auth *services.AuthService, tasks *services.TaskService, db Pinger) *Handlers {
	return &Handlers{Auth: auth, Tasks: tasks, DB: db}
}

// respondWithJSON is a helper function to format and send JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload models.Response) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("JSON encode error: %v", err)
		code = http.StatusInternalServerError
		response = []byte(`{"success":false,"message":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, code int, message string, data any) {
	respondWithJSON(w, code, models.Response{Success: true, Message: message, Data: data})
}

// respondWithError renders err in the standard envelope. Internal causes are
// logged and never sent to the client.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	e := services.AsError(err)
	if e.Kind == services.KindInternal {
		log.Printf("[%s] %s %s: %v", middleware.RequestIDFromContext(r.Context()), r.Method, r.URL.Path, e)
	}
	respondWithJSON(w, e.Status(), models.Response{Success: false, Message: e.Message, Errors: e.Fields})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.ValidationError("Request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.ValidationError("Request body is too large")
		}
		log.Printf("[%s] JSON decode error: %v", middleware.RequestIDFromContext(r.Context()), err)
		return services.ValidationError("Invalid request payload")
	}
	return nil
}

// taskID parses the {id} path variable. Routes only match digits, so a parse
// failure means the id overflows and cannot exist.
func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NotFound("Task not found")
	}
	return id, nil
}

// Health reports whether the service and its store are up.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Ping(r.Context()); err != nil {
		respondWithError(w, r, services.Internal("Database unavailable", err))
		return
	}
	respondOK(w, http.StatusOK, "ok", nil)
}

// NotFound answers routes that do not exist.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, r, services.NotFound("Route not found"))
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusMethodNotAllowed, models.Response{Success: false, Message: "Method not allowed"})
}
