package videos

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vidspark/vidspark/internal/auth"
	"github.com/vidspark/vidspark/internal/ledger"
	"github.com/vidspark/vidspark/internal/platform/httpx"
)

// Handler wires the paid video workflow endpoints.
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

// MountRoutes registers video routes on the provided router. The router must
// already require authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/video/create", h.handleCreate)
	r.Get("/videos", h.handleList)
	r.Get("/credits", h.handleCredits)
}

type createRequest struct {
	Keyword  string          `json:"keyword" validate:"required,max=120"`
	Analysis json.RawMessage `json:"analysis" validate:"required"`
}

type createResponse struct {
	Success bool `json:"success"`
	CreateResult
	Message string `json:"message"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	req.Keyword = strings.TrimSpace(req.Keyword)
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "keyword and analysis are required")
		return
	}

	result, err := h.service.Create(r.Context(), claims.AccountID, req.Keyword, req.Analysis)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			httpx.Problem(w, http.StatusBadRequest, "Insufficient Credits", "you need at least 100 credits to create a video")
		case errors.Is(err, ledger.ErrVideoLimitReached):
			httpx.Problem(w, http.StatusBadRequest, "Limit Reached", "maximum 10 videos per account")
		case errors.Is(err, ledger.ErrAccountNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "account not found")
		case errors.Is(err, ErrProductionFailed):
			httpx.Problem(w, http.StatusBadGateway, "Production Failed", "video production failed; the charge was recorded")
		default:
			h.logger.Error("video create failed", slog.Int64("account_id", claims.AccountID), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}

	httpx.JSON(w, http.StatusOK, createResponse{
		Success:      true,
		CreateResult: result,
		Message:      "Video created successfully! 100 credits deducted.",
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	logs, err := h.service.ListForAccount(r.Context(), claims.AccountID)
	if err != nil {
		h.logger.Error("list videos failed", slog.Int64("account_id", claims.AccountID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if logs == nil {
		logs = []VideoLog{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"videos": logs})
}

func (h *Handler) handleCredits(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	info, err := h.service.Credits(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "account not found")
			return
		}
		h.logger.Error("credits lookup failed", slog.Int64("account_id", claims.AccountID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}
