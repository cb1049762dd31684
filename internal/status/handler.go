package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

// Handler exposes the system status endpoint.
type Handler struct {
	reporter *Reporter
}

// NewHandler builds Handler instance.
func NewHandler(reporter *Reporter) *Handler {
	return &Handler{reporter: reporter}
}

// MountRoutes registers system routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/status", h.getStatus)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.reporter.Snapshot())
}
