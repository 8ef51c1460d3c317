package trending

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidspark/vidspark/internal/platform/httpx"
)

// Handler wires the trending feed endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers trending routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trending", h.handleTrending)
}

func (h *Handler) handleTrending(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	keywords, err := h.service.Keywords(r.Context(), count)
	if err != nil {
		h.logger.Error("trending feed failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"keywords": keywords})
}
