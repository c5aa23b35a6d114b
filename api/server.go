/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

STATIC FILE SERVING:
  Serves the control panel from the configured static directory. When the
  directory is missing, a minimal inline page lists the API endpoints.

SECURITY NOTE:
  No authentication middleware. The server is meant to sit on a trusted
  home network next to the router it controls.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. staticDir is
// the frontend directory; pass "" to skip static serving.
func NewRouter(h *Handler, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// API routes
	r.Post("/send-sms", h.SendSMS)
	r.Post("/check-balance", h.CheckBalance)
	r.Get("/balance-info", h.BalanceInfo)
	r.Get("/balance", h.Balance)
	r.Get("/balance-history", h.BalanceHistory)
	r.Get("/stats", h.Stats)

	// Serve static files (control panel)
	if _, err := os.Stat(staticDir); staticDir != "" && err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, r.URL.Path)

			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>SMS Balance Gateway</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>SMS Balance Gateway API</h1>
<p>The control panel is not installed. The API is available directly:</p>
<h2>API Endpoints</h2>
<ul>
<li>POST /send-sms - Send an SMS</li>
<li>POST /check-balance - Request a balance notification</li>
<li><a href="/balance-info">/balance-info</a> - Consume the next balance notification</li>
<li><a href="/balance">/balance</a> - One-shot inbox scan</li>
<li><a href="/balance-history">/balance-history</a> - Consumed notification log</li>
<li><a href="/stats">/stats</a> - Device statistics</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
