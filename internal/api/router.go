package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Get("/chats", apiHandler.ListChatsHandler)
		r.Post("/chats/new", apiHandler.CreateChatHandler)
		r.Get("/chats/{sessionID}", apiHandler.GetChatHistoryHandler)
		r.Post("/chats/{sessionID}/message", apiHandler.SendMessageHandler)
		r.Delete("/chats/{sessionID}", apiHandler.DeleteChatHandler)
		r.Get("/chats/{sessionID}/export", apiHandler.ExportChatHandler)
	})

	// Serve the front-end assets when a static directory is present.
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(staticDir)))
		}
	}

	return r
}
