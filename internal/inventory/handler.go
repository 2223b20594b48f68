package inventory

import (
	"encoding/json"
	"net/http"

	"github.com/leaseline/lease-concierge/pkg/logging"
)

// Handler serves read-only inventory queries.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates the inventory HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// ListAvailable handles GET /inventory: all currently available units.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	units := h.store.ListAvailable()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"units": units,
		"count": len(units),
	})
}
