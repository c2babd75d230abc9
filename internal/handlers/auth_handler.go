package handlers

import (
	"encoding/json"
	"net/http"

	"cybertrain/internal/security"
	"cybertrain/internal/service"
)

// AuthHandler handles signup, login and session routes
type AuthHandler struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	google      *GoogleOAuth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, google *GoogleOAuth) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		csrf:        csrf,
		google:      google,
	}
}

// Signup creates a new employee account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Township string `json:"township"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.FullName, req.Township)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, userView(user))
}

// Login authenticates and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, "session_id", session.ID, session.ExpiresAt))

	csrfToken, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal server error", "failed to generate CSRF token", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":       userView(user),
		"csrf_token": csrfToken,
	})
}

// Logout deletes the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session_id"); err == nil {
		_ = h.authService.Logout(cookie.Value)
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, "session_id"))
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the current principal
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}
	respondJSON(w, http.StatusOK, userView(user))
}
