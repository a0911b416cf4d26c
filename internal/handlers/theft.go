package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

// Geocoder is the reverse-geocoding collaborator, set up in main.
var Geocoder *services.GeocodeService

type TheftReportRequest struct {
	EquipmentIDs []string            `json:"equipment_ids"`
	Location     *models.Coordinates `json:"location,omitempty"`
	// Manual address; when empty and coordinates are present the backend
	// reverse geocodes best effort.
	Address string `json:"address,omitempty"`
}

type TheftReportResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Reported []string `json:"reported"`
	Failed   []string `json:"failed,omitempty"`
}

// ReportTheft marks a batch of the caller's SAFE items as STOLEN. Each
// item update is independent: one failure does not roll back the others,
// and the response reports both sets.
func ReportTheft(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req TheftReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.EquipmentIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Select at least one item")
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" && req.Location != nil {
		geoCtx, geoCancel := dbContext()
		address = Geocoder.ReverseGeocode(geoCtx, req.Location.Lat, req.Location.Lng)
		geoCancel()
	}

	ctx, cancel := dbContext()
	defer cancel()

	theftDate := time.Now()
	var reported, failed []string

	for _, idHex := range req.EquipmentIDs {
		objectID, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			failed = append(failed, idHex)
			continue
		}

		set := bson.M{
			"status":        models.StatusStolen,
			"theft_date":    theftDate,
			"theft_address": address,
			"is_for_rent":   false,
			"is_for_sale":   false,
			"updated_at":    theftDate,
		}
		if req.Location != nil {
			set["theft_location"] = req.Location
		}

		// Only SAFE items owned by the caller transition.
		res, err := database.DB.Collection("equipment").UpdateOne(ctx,
			bson.M{"_id": objectID, "owner_id": user.ID.Hex(), "status": models.StatusSafe},
			bson.M{"$set": set},
		)
		if err != nil || res.MatchedCount == 0 {
			failed = append(failed, idHex)
			continue
		}
		reported = append(reported, idHex)
	}

	if len(reported) > 0 {
		services.IncrementUserStat(ctx, user.ID, "reports_count")
	}

	if len(reported) == 0 {
		writeJSON(w, http.StatusConflict, TheftReportResponse{
			Success: false,
			Message: "No items could be reported",
			Failed:  failed,
		})
		return
	}

	writeJSON(w, http.StatusOK, TheftReportResponse{
		Success:  true,
		Message:  "Theft reported",
		Reported: reported,
		Failed:   failed,
	})
}

type RecoverRequest struct {
	EquipmentID string `json:"equipment_id"`
	// Whether recovery happened through the in-app network.
	RecoveredViaApp bool `json:"recovered_via_app"`
}

// RecoverEquipment returns a STOLEN item to SAFE. The theft event is
// recorded in the history ledger first, then the live theft fields are
// cleared.
func RecoverEquipment(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	objectID, err := primitive.ObjectIDFromHex(req.EquipmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	var item models.Equipment
	if err := database.DB.Collection("equipment").FindOne(ctx, bson.M{"_id": objectID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusNotFound, "Equipment not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if item.OwnerID != user.ID.Hex() {
		writeError(w, http.StatusForbidden, "Not your equipment")
		return
	}
	if item.Status != models.StatusStolen && item.Status != models.StatusLost {
		writeError(w, http.StatusConflict, "Item is not reported stolen or lost")
		return
	}

	if err := services.RecordTheftEvent(&item, req.RecoveredViaApp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record recovery")
		return
	}

	if _, err := database.DB.Collection("equipment").UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$set":   bson.M{"status": models.StatusSafe, "updated_at": time.Now()},
			"$unset": bson.M{"theft_date": "", "theft_location": "", "theft_address": ""},
		},
	); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to recover equipment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Equipment recovered"})
}

type SafetyMapPoint struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address"`
	Date     string  `json:"date,omitempty"`
	ItemName string  `json:"item_name"`
}

type SafetyMapResponse struct {
	Success bool             `json:"success"`
	Points  []SafetyMapPoint `json:"points"`
}

// GetSafetyMap returns theft locations for the community map: currently
// stolen items with coordinates plus historical events from the ledger.
func GetSafetyMap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext()
	defer cancel()

	cursor, err := database.DB.Collection("equipment").Find(ctx, bson.M{
		"status":         models.StatusStolen,
		"theft_location": bson.M{"$ne": nil},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	var stolen []models.Equipment
	if err := cursor.All(ctx, &stolen); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	points := make([]SafetyMapPoint, 0, len(stolen))
	for _, item := range stolen {
		if item.TheftLocation == nil {
			continue
		}
		p := SafetyMapPoint{
			Lat:      item.TheftLocation.Lat,
			Lng:      item.TheftLocation.Lng,
			Address:  item.TheftAddress,
			ItemName: item.Name,
		}
		if p.Address == "" {
			p.Address = services.UnknownAddress
		}
		if item.TheftDate != nil {
			p.Date = item.TheftDate.Format(time.RFC3339)
		}
		points = append(points, p)
	}

	historical, err := services.GetHistoricalTheftPoints()
	if err == nil {
		for _, h := range historical {
			p := SafetyMapPoint{
				Lat:      h.Lat,
				Lng:      h.Lng,
				Address:  h.Address,
				ItemName: "Item Recuperado/Histórico",
			}
			if h.Date != nil {
				p.Date = h.Date.Format(time.RFC3339)
			}
			points = append(points, p)
		}
	}

	writeJSON(w, http.StatusOK, SafetyMapResponse{Success: true, Points: points})
}
