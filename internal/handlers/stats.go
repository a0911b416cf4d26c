package handlers

import (
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

type UserStatsResponse struct {
	Success bool `json:"success"`

	InventoryCount int     `json:"inventory_count"`
	InventoryValue float64 `json:"inventory_value"`
	StolenCount    int     `json:"stolen_count"`
	ListedForRent  int     `json:"listed_for_rent"`
	ListedForSale  int     `json:"listed_for_sale"`

	ChecksCount  int `json:"checks_count"`
	ReportsCount int `json:"reports_count"`

	RecoveredCount int     `json:"recovered_count"`
	RecoveredValue float64 `json:"recovered_value"`

	Connections       int                      `json:"connections"`
	TransactedValue   float64                  `json:"transacted_value"`
	NotificationStats models.NotificationStats `json:"notification_stats"`

	ReputationPoints int `json:"reputation_points"`
}

// GetUserStats aggregates the caller's personal dashboard numbers from
// the live inventory plus the recovery ledger.
func GetUserStats(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	items, err := services.GetUserEquipment(ctx, user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := UserStatsResponse{
		Success:           true,
		ChecksCount:       user.ChecksCount,
		ReportsCount:      user.ReportsCount,
		Connections:       len(user.Connections),
		NotificationStats: user.NotificationStats,
		ReputationPoints:  services.CalculateReputation(user, items),
	}
	for _, item := range items {
		resp.InventoryCount++
		resp.InventoryValue += item.Value
		if item.Status == models.StatusStolen {
			resp.StolenCount++
		}
		if item.IsForRent {
			resp.ListedForRent++
		}
		if item.IsForSale {
			resp.ListedForSale++
		}
	}
	for _, value := range user.TransactionHistory {
		resp.TransactedValue += value
	}

	count, value, err := services.GetRecoveryStats(user.ID.Hex())
	if err != nil {
		log.Printf("⚠️ Recovery stats unavailable for %s: %v", user.ID.Hex(), err)
	} else {
		resp.RecoveredCount = count
		resp.RecoveredValue = value
	}

	writeJSON(w, http.StatusOK, resp)
}

type GlobalStatsResponse struct {
	Success bool `json:"success"`

	TotalUsers     int64   `json:"total_users"`
	TotalEquipment int64   `json:"total_equipment"`
	ProtectedValue float64 `json:"protected_value"`
	ActiveStolen   int64   `json:"active_stolen"`

	RecoveredCount int     `json:"recovered_count"`
	RecoveredValue float64 `json:"recovered_value"`
}

// GetGlobalStats returns the community-wide counters shown on the
// landing page. Public route.
func GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext()
	defer cancel()

	resp := GlobalStatsResponse{Success: true}

	var err error
	if resp.TotalUsers, err = database.DB.Collection("users").CountDocuments(ctx, bson.M{}); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if resp.TotalEquipment, err = database.DB.Collection("equipment").CountDocuments(ctx, bson.M{}); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if resp.ActiveStolen, err = database.DB.Collection("equipment").CountDocuments(ctx, bson.M{"status": models.StatusStolen}); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Summed protected value across all registered equipment.
	pipeline := []bson.M{
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$value"}}},
	}
	cursor, err := database.DB.Collection("equipment").Aggregate(ctx, pipeline)
	if err == nil {
		var agg []struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.All(ctx, &agg); err == nil && len(agg) > 0 {
			resp.ProtectedValue = agg[0].Total
		}
	}

	count, value, err := services.GetGlobalRecoveryStats()
	if err != nil {
		log.Printf("⚠️ Global recovery stats unavailable: %v", err)
	} else {
		resp.RecoveredCount = count
		resp.RecoveredValue = value
	}

	writeJSON(w, http.StatusOK, resp)
}
