package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

const dbTimeout = 5 * time.Second

func dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the generic failure body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Upsell marks quota denials so the UI can route to the referral page.
	Upsell bool `json:"upsell,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

func extractBearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// currentUser resolves the authenticated user from the session token.
// Returns nil when unauthenticated; blocked accounts resolve to nil too.
func currentUser(r *http.Request) *models.User {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil
	}

	userID, ok := services.ValidateSession(token)
	if !ok {
		return nil
	}

	ctx, cancel := dbContext()
	defer cancel()

	user, err := services.GetUserProfileByHex(ctx, userID)
	if err != nil || user == nil || user.IsBlocked {
		return nil
	}
	return user
}

// requireUser resolves the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return user
}

// requireAdmin resolves an authenticated admin or writes 401/403.
func requireAdmin(w http.ResponseWriter, r *http.Request) *models.User {
	user := currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil
	}
	if user.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Admin access required")
		return nil
	}
	return user
}
