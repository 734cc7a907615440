package client

import (
	"context"
	"log"
)

// App is the client state handed to views: the API, the session and the
// task board. It is not safe for concurrent use.
type App struct {
	API     *API
	Session *Session
	Tasks   *TaskBoard
}

// NewApp wires the state for the server at baseURL. A nil tokens keeps the
// token in memory only.
func NewApp(baseURL string, tokens TokenStore) *App {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	api := NewAPI(baseURL, tokens)
	app := &App{
		API:     api,
		Session: newSession(api, tokens),
		Tasks:   newTaskBoard(api),
	}
	app.Tasks.onUnauthorized = app.Session.clear
	return app
}

// Start initializes the session and loads the first page of tasks. A failed
// token check is not an error: the app starts logged out.
func (a *App) Start(ctx context.Context) error {
	if err := a.Session.Init(ctx); err != nil {
		log.Printf("Stored session rejected, starting logged out: %v", err)
	}
	return a.Tasks.Fetch(ctx, 1)
}
