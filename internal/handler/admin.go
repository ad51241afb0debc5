package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/eakyuz/zikirmatik/internal/service"
)

// AdminHandler handles the admin account-management surface. Every route
// is mounted behind RequireAdmin.
type AdminHandler struct {
	accounts *service.AccountService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// HandleList returns all active accounts.
// GET /api/admin/accounts
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListActive(r.Context())
	if err != nil {
		slog.Error("list accounts", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": toAccountDTOs(accounts),
	})
}

// HandleCreate creates a new account or reactivates a soft-deleted one
// holding the same email.
// POST /api/admin/accounts
// Request:  {"email":"...","displayName":"...","password":"..."}
// Response: {"user": {...}, "reactivated": bool}
func (h *AdminHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Password    string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.accounts.CreateOrReactivate(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":        toAccountDTO(result.Account),
		"reactivated": result.Reactivated,
	})
}

// HandleCheckEmail is the advisory availability check the add-account form
// runs while the admin types. Best effort only; creation re-verifies.
// GET /api/admin/accounts/check-email?email=...
func (h *AdminHandler) HandleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	availability, err := h.accounts.CheckEmailAvailability(r.Context(), email)
	if err != nil {
		slog.Error("check email availability", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"availability": string(availability),
	})
}

// HandleRename updates an account's display name.
// PATCH /api/admin/accounts/{id}
// Request: {"displayName":"..."}
func (h *AdminHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"displayName"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	account, err := h.accounts.Rename(r.Context(), r.PathValue("id"), req.DisplayName)
	if err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toAccountDTO(account),
	})
}

// HandleDelete soft-deletes an account. The credentials and the counter
// stay behind for a later reactivation.
// DELETE /api/admin/accounts/{id}
// Response: 204 No Content
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SoftDelete(r.Context(), r.PathValue("id")); err != nil {
		h.writeLifecycleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeLifecycleError maps the lifecycle error taxonomy onto HTTP
// responses. Unknown errors are logged and replaced by a generic message;
// raw store errors never reach the admin UI.
func (h *AdminHandler) writeLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrWeakPassword):
		writeError(w, http.StatusUnprocessableEntity, "Password is too weak (minimum 6 characters).")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrEmailAlreadyActive):
		writeError(w, http.StatusConflict, "That email already belongs to an active account.")
	case errors.Is(err, domain.ErrEmailInUse):
		writeError(w, http.StatusConflict, "That email is registered in the identity directory but has no profile. Please use a different email.")
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "Admin accounts cannot be deleted.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Account not found.")
	case errors.Is(err, domain.ErrStoreUnavailable):
		slog.Error("account store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "The account store is temporarily unavailable. Please try again.")
	default:
		slog.Error("account lifecycle", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}
