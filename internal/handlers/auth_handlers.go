// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/calmly-app/go-calmly/internal/dtos"
	"github.com/calmly-app/go-calmly/internal/middleware"
	"github.com/calmly-app/go-calmly/internal/services"
)

type AuthHandler struct {
	UserService *services.UserService
}

func NewAuthHandler(us *services.UserService) *AuthHandler {
	return &AuthHandler{UserService: us}
}

// Register creates an account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.Password,
		req.EmergencyContactName, req.EmergencyContactPhone)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			writeError(w, "Username is already taken", http.StatusConflict)
			return
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, dtos.ProfileResponse{
		ID:                    user.ID,
		Username:              user.Username,
		EmergencyContactName:  user.EmergencyContactName,
		EmergencyContactPhone: user.EmergencyContactPhone,
	})
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.UserService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, dtos.LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	})
}

// GetProfile returns the authenticated user's profile.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dtos.ProfileResponse{
		ID:                    user.ID,
		Username:              user.Username,
		EmergencyContactName:  user.EmergencyContactName,
		EmergencyContactPhone: user.EmergencyContactPhone,
	})
}

// UpdateEmergencyContact replaces the authenticated user's emergency contact.
func (h *AuthHandler) UpdateEmergencyContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.UpdateEmergencyContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.UserService.UpdateEmergencyContact(r.Context(), userID, req.Name, req.Phone); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
