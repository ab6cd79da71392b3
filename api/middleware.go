package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/raushankrgupta/flyer-price-scraper/utils"
)

type contextKey string

const subjectKey contextKey = "subject"

// AuthMiddleware rejects requests without a valid bearer token
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			utils.RespondError(w, nil, "Missing bearer token", http.StatusUnauthorized)
			return
		}

		subject, err := utils.ValidateToken(s.auth.JWTSecret, tokenString)
		if err != nil {
			utils.RespondError(w, nil, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSubjectFromContext returns the authenticated subject set by AuthMiddleware
func GetSubjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(subjectKey).(string)
	if !ok || subject == "" {
		return "", errors.New("subject not found in context")
	}
	return subject, nil
}
