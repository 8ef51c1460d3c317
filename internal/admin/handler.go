package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vidspark/vidspark/internal/accounts"
	"github.com/vidspark/vidspark/internal/auth"
	"github.com/vidspark/vidspark/internal/ledger"
	"github.com/vidspark/vidspark/internal/platform/httpx"
)

// Handler wires the privileged endpoints. The router mounting these routes
// must already enforce authentication and the admin role.
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

// MountRoutes registers admin routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.handleListUsers)
	r.Get("/users/{id}", h.handleGetUser)
	r.Post("/credits/update", h.handleUpdateCredits)
	r.Post("/user/role", h.handleChangeRole)
	r.Get("/credit-logs", h.handleCreditLogs)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
			return
		}
		h.logger.Error("get user failed", slog.Int64("user_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": user})
}

type updateCreditsRequest struct {
	UserID int64  `json:"userId" validate:"required"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) handleUpdateCredits(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req updateCreditsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userId, amount and reason are required")
		return
	}

	newBalance, err := h.service.UpdateCredits(r.Context(), claims.AccountID, req.UserID, req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrZeroDelta):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a non-zero number")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			httpx.Problem(w, http.StatusBadRequest, "Insufficient Credits", "cannot deduct more credits than the user has")
		case errors.Is(err, ledger.ErrAccountNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
		default:
			h.logger.Error("credit update failed", slog.Int64("user_id", req.UserID), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"newCredits": newBalance,
	})
}

type changeRoleRequest struct {
	UserID int64  `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "userId and role are required")
		return
	}

	err := h.service.ChangeRole(r.Context(), claims.AccountID, req.UserID, accounts.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", `role must be "user" or "admin"`)
		case errors.Is(err, ErrSelfRoleChange):
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "cannot change your own role")
		case errors.Is(err, accounts.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
		default:
			h.logger.Error("role change failed", slog.Int64("user_id", req.UserID), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User role updated to " + req.Role,
	})
}

func (h *Handler) handleCreditLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.CreditLogs(r.Context())
	if err != nil {
		h.logger.Error("credit logs failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"logs": entries})
}
