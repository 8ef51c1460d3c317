package analysis

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vidspark/vidspark/internal/platform/httpx"
)

// Handler wires the keyword analysis endpoint.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers analysis routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
}

type analyzeRequest struct {
	Keyword string `json:"keyword" validate:"required,max=120"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "keyword is required")
		return
	}

	report, err := h.service.Analyze(r.Context(), req.Keyword)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "analysis providers are unavailable")
			return
		}
		h.logger.Error("analyze failed", slog.String("keyword", req.Keyword), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"keyword":  req.Keyword,
		"analysis": report,
	})
}
