package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voltmart/storefront/internal/auth"
	"github.com/voltmart/storefront/internal/domain"
)

const minPasswordLength = 8

// Store is the persistence surface the handlers need; *UserRepository
// satisfies it.
type Store interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	store  Store
	issuer *auth.TokenIssuer
	logger *slog.Logger
}

func NewHandler(store Store, issuer *auth.TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		issuer: issuer,
		logger: logger,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		h.writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		h.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Signup never grants admin; role promotion is an admin-only edit.
	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Address:      req.Address,
		Phone:        req.Phone,
	}

	if err := h.store.Create(r.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			h.writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("failed to create user", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user signed up", "user_id", user.ID)
	h.writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.logger.Error("failed to look up user", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	h.writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	user, err := h.store.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to get user", "error", err, "user_id", claims.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user == nil {
		h.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

type updateMeRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// HandleUpdateMe edits the caller's own profile. Only name, address, phone
// and password are editable here; email and role are not.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.GetByID(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to get user", "error", err, "user_id", claims.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			h.writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.logger.Error("failed to hash password", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.store.Update(r.Context(), user); err != nil {
		h.logger.Error("failed to update user", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("profile updated", "user_id", user.ID)
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete user", "error", err, "user_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	h.logger.Info("user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
