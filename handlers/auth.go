package handlers

import (
	"net/http"

	"github.com/VyacheslavBabenko/beejee/middleware"
	"github.com/VyacheslavBabenko/beejee/models"
	"github.com/VyacheslavBabenko/beejee/services"
)

// LoginUser handles admin authentication and returns a JWT.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	res, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Login successful", res)
}

// VerifyToken returns the user behind a valid token. Authenticate has already
// decoded the token by the time this runs.
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, r, services.Unauthorized("Token not provided", nil))
		return
	}
	respondOK(w, http.StatusOK, "", models.VerifyResult{User: claims.User()})
}

// LogoutUser acknowledges a logout; the client discards its token.
func (h *Handlers) LogoutUser(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, h.Auth.Logout(), nil)
}
