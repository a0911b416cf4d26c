package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
	"github.com/cinesafe/cinesafe-backend/pkg/utils"
)

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Location     string `json:"location"`
	ReferralCode string `json:"referral_code,omitempty"` // inbound code of the referrer
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Register creates a new account with a self-generated referral code and
// credits the referrer when an inbound code is supplied.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Name and a valid email are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	users := database.DB.Collection("users")

	count, err := users.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "Email is already registered")
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         req.Name,
		Email:        req.Email,
		Password:     passwordHash,
		Location:     strings.TrimSpace(req.Location),
		AvatarURL:    fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random", url.QueryEscape(req.Name)),
		Role:         models.RoleUser,
		ReferralCode: utils.GenerateReferralCode(req.Name),
	}
	if req.ReferralCode != "" {
		user.ReferredBy = req.ReferralCode
	}

	if _, err := users.InsertOne(ctx, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if req.ReferralCode != "" {
		// Unknown or failing referral codes never block registration.
		services.ProcessReferral(ctx, req.ReferralCode)
	}

	token, err := services.CreateSession(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created",
		Token:   token,
		User:    &user,
	})
}

// Login verifies credentials and returns a session token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if user.IsBlocked {
		writeError(w, http.StatusForbidden, "Account is blocked")
		return
	}

	token, err := services.CreateSession(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	equipment, err := services.GetUserEquipment(ctx, user.ID.Hex())
	if err == nil {
		user.ReputationPoints = services.CalculateReputation(&user, equipment)
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signed in",
		Token:   token,
		User:    &user,
	})
}

// Logout invalidates the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token != "" {
		services.InvalidateSession(token)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Signed out"})
}

// GetMe returns the authenticated user's profile, reputation recomputed.
func GetMe(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: user})
}
