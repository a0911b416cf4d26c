package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

type ProfileResponse struct {
	Success   bool                          `json:"success"`
	Message   string                        `json:"message,omitempty"`
	User      *models.User                  `json:"user,omitempty"`
	Breakdown *services.ReputationBreakdown `json:"reputation_breakdown,omitempty"`
}

// GetUserProfile returns a user's public profile with reputation
// recomputed from the current equipment snapshot, plus the per-term
// breakdown of the canonical score.
func GetUserProfile(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	user, err := services.GetUserProfileByHex(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	equipment, err := services.GetUserEquipment(ctx, user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	breakdown := services.ComputeReputationBreakdown(user, equipment)

	writeJSON(w, http.StatusOK, ProfileResponse{Success: true, User: user, Breakdown: &breakdown})
}

type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	Location     *string `json:"location,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
}

// UpdateProfile updates the caller's editable profile fields and refreshes
// the denormalized owner snapshot on all of their equipment.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		set["location"] = strings.TrimSpace(*req.Location)
	}
	if req.ContactPhone != nil {
		set["contact_phone"] = strings.TrimSpace(*req.ContactPhone)
	}
	if req.AvatarURL != nil {
		set["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}

	ctx, cancel := dbContext()
	defer cancel()

	if _, err := database.DB.Collection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	// Keep the equipment snapshots in sync with the new profile data.
	updated, err := services.GetUserProfile(ctx, user.ID)
	if err == nil && updated != nil {
		database.DB.Collection("equipment").UpdateMany(ctx,
			bson.M{"owner_id": user.ID.Hex()},
			bson.M{"$set": bson.M{"owner_profile": updated.PublicProfile()}},
		)
		user = updated
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Success: true, Message: "Profile updated", User: user})
}

type RankingsResponse struct {
	Success bool          `json:"success"`
	Users   []models.User `json:"users"`
	Total   int           `json:"total"`
}

// GetRankings lists all users ordered by canonical reputation, with
// inventory counts attached. Every score is recomputed on read.
func GetRankings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext()
	defer cancel()

	cursor, err := database.DB.Collection("users").Find(ctx, bson.M{"is_blocked": bson.M{"$ne": true}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	eqCursor, err := database.DB.Collection("equipment").Find(ctx, bson.M{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	var allEquipment []models.Equipment
	if err := eqCursor.All(ctx, &allEquipment); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	byOwner := make(map[string][]models.Equipment)
	for _, item := range allEquipment {
		byOwner[item.OwnerID] = append(byOwner[item.OwnerID], item)
	}

	for i := range users {
		owned := byOwner[users[i].ID.Hex()]
		users[i].ReputationPoints = services.CalculateReputation(&users[i], owned)
		users[i].InventoryCount = len(owned)
		users[i].Email = "" // rankings are public, emails are not
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].ReputationPoints > users[j].ReputationPoints
	})

	writeJSON(w, http.StatusOK, RankingsResponse{Success: true, Users: users, Total: len(users)})
}

type QuotaStatusResponse struct {
	Success   bool `json:"success"`
	Premium   bool `json:"premium"`
	Inventory bool `json:"inventory"`
	Check     bool `json:"check"`
	Contact   bool `json:"contact"`
}

// GetQuotaStatus reports which gated features the caller may still use
// this month. Denials are data, not errors.
func GetQuotaStatus(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	resp := QuotaStatusResponse{Success: true, Premium: services.IsPremium(user)}
	var err error
	if resp.Inventory, err = services.CheckLimit(ctx, user, services.FeatureInventory); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	resp.Check, _ = services.CheckLimit(ctx, user, services.FeatureCheck)
	resp.Contact, _ = services.CheckLimit(ctx, user, services.FeatureContact)

	writeJSON(w, http.StatusOK, resp)
}
