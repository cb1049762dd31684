package activity

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

// Handler exposes the activity feed endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers activity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/latest", h.latest)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Latest(r.Context())
	if err != nil {
		h.logger.Error("list activities failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []Activity{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}
