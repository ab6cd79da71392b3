package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/flyer-price-scraper/utils"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

// LoginRequest represents the payload for admin login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginHandler checks the admin password and issues a JWT
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Login API]")

	if s.auth.AdminPasswordHash == "" || s.auth.JWTSecret == "" {
		utils.RespondError(w, &logMessageBuilder, "Admin login is not configured", http.StatusServiceUnavailable)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		utils.RespondError(w, &logMessageBuilder, "Password is required", http.StatusBadRequest)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.auth.AdminPasswordHash), []byte(req.Password)); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid password", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateToken(s.auth.JWTSecret, adminSubject)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to generate token: %v", err), http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Login successful")
	utils.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}
