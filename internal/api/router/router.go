package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leaseline/lease-concierge/internal/chat"
	httpmiddleware "github.com/leaseline/lease-concierge/internal/http/middleware"
	"github.com/leaseline/lease-concierge/internal/inventory"
	"github.com/leaseline/lease-concierge/internal/webchat"
	"github.com/leaseline/lease-concierge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	InventoryHandler   *inventory.Handler
	WebchatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
	PropertyName       string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		public.Get("/", rootInfo(cfg.PropertyName))

		public.Post("/chat", cfg.ChatHandler.Chat)
		public.Get("/sessions/{sessionID}", cfg.ChatHandler.GetSession)
		public.Delete("/sessions/{sessionID}", cfg.ChatHandler.DeleteSession)

		public.Get("/inventory", cfg.InventoryHandler.ListAvailable)

		if cfg.WebchatHandler != nil {
			public.Route("/webchat", func(r chi.Router) {
				r.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
				r.Get("/history", cfg.WebchatHandler.HandleHistory)
				r.Get("/widget.js", cfg.WebchatHandler.HandleWidgetJS)
			})
		}

		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin endpoints sit behind the JWT middleware; with no secret
	// configured they reject everything.
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		admin.Get("/admin/sessions/{sessionID}", cfg.ChatHandler.GetSession)
		admin.Delete("/admin/sessions/{sessionID}", cfg.ChatHandler.DeleteSession)
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func rootInfo(propertyName string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"service":  "lease-concierge",
			"property": propertyName,
			"status":   "running",
		})
	}
}
