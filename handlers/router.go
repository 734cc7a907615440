package handlers

import (
	"io"
	"net/http"

	"github.com/VyacheslavBabenko/beejee/middleware"
	"github.com/VyacheslavBabenko/beejee/models"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RouterOptions configures the outer middleware of the API.
type RouterOptions struct {
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string
	// AccessLog receives one combined-format line per request; nil disables it.
	AccessLog io.Writer
}

// NewRouter wires every API route and the shared middleware.
func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)

	authenticate := middleware.Authenticate(h.Auth, respondWithError)
	requireAdmin := middleware.RequireRole(models.RoleAdmin, respondWithError)

	router.HandleFunc("/health", h.Health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = router.NotFoundHandler
	api.MethodNotAllowedHandler = router.MethodNotAllowedHandler

	// Define API routes and link them to the handler functions.
	api.HandleFunc("/auth/login", h.LoginUser).Methods("POST")
	api.Handle("/auth/verify", authenticate(http.HandlerFunc(h.VerifyToken))).Methods("GET")
	api.HandleFunc("/auth/logout", h.LogoutUser).Methods("POST")

	api.HandleFunc("/tasks", h.GetTasks).Methods("GET")
	api.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}", h.GetTask).Methods("GET")
	api.Handle("/tasks/{id:[0-9]+}", authenticate(requireAdmin(http.HandlerFunc(h.UpdateTask)))).Methods("PUT")

	var handler http.Handler = router
	handler = middleware.Recover(respondWithError)(handler)
	if len(opts.CORSOrigins) > 0 {
		handler = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(opts.CORSOrigins),
			gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
			gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
			gorillahandlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
			gorillahandlers.AllowCredentials(),
		)(handler)
	}
	if opts.AccessLog != nil {
		handler = gorillahandlers.CombinedLoggingHandler(opts.AccessLog, handler)
	}
	return middleware.RequestID(handler)
}
