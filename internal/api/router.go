package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "aix-chat/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(chatHandler *ChatHandler, relayHandler *RelayHandler) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	// These are applied to every request.
	r.Use(middleware.RequestID) // Injects a unique request ID into the context.
	r.Use(middleware.RealIP)    // Sets the remote address to the real IP from proxy headers.
	r.Use(middleware.Logger)    // Logs the start and end of each request with useful info.
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error.

	// --- Public Routes ---

	// Serves the auto-generated Swagger UI for API documentation.
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// A simple health check endpoint for liveness and readiness probes.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The inference endpoint. It streams for as long as the upstream keeps
	// generating, so it must not sit behind a request timeout.
	r.Post("/api/chat", relayHandler.HandleChat)

	// --- API Version 1 Routes ---
	r.Route("/api/v1", func(r chi.Router) {

		// Group for standard JSON API routes that should have a request timeout
		// to prevent client connections from hanging indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/chats", chatHandler.GetChats)
			r.Post("/chats", chatHandler.HandleCreateChat)
			r.Post("/chats/import", chatHandler.HandleImportChat)
			r.Get("/chats/{chatID}", chatHandler.GetChat)
			r.Delete("/chats/{chatID}", chatHandler.HandleDeleteChat)
			r.Post("/chats/{chatID}/select", chatHandler.HandleSelectChat)
			r.Put("/chats/{chatID}/title", chatHandler.UpdateChatTitle)
			r.Get("/chats/{chatID}/export", chatHandler.HandleExportChat)
			r.Post("/chats/{chatID}/attachments", chatHandler.HandleAttachment)

			r.Get("/tokens", chatHandler.GetTokens)
			r.Post("/chats/stop", chatHandler.HandleStop)
		})

		// Group for long-running, streaming endpoints. These routes must NOT
		// have a timeout, as they hold a connection open while the reply is
		// generated.
		r.Group(func(r chi.Router) {
			r.Post("/chats/messages", chatHandler.HandleSendMessage)
		})
	})

	// --- Frontend File Server ---
	// Serves the static chat UI. In a typical production deployment this
	// would be handled by Nginx, but it's useful for local development.
	fileServer := http.FileServer(http.Dir("./web/dist"))
	r.Handle("/*", http.StripPrefix("/", fileServer))

	return r
}
