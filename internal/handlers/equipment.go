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

type EquipmentRequest struct {
	Name              string  `json:"name"`
	Brand             string  `json:"brand"`
	Model             string  `json:"model"`
	SerialNumber      string  `json:"serial_number"`
	Category          string  `json:"category"`
	Value             float64 `json:"value"`
	IsForRent         bool    `json:"is_for_rent"`
	RentalPricePerDay float64 `json:"rental_price_per_day"`
	IsForSale         bool    `json:"is_for_sale"`
	SalePrice         float64 `json:"sale_price"`
	ImageURL          string  `json:"image_url"`
	InvoiceURL        string  `json:"invoice_url"`
	Description       string  `json:"description"`
}

type EquipmentResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Equipment *models.Equipment `json:"equipment,omitempty"`
	// Serial conflict signals: "unavailable" (another user owns it) vs
	// "already_yours" (caller owns it). Distinct on purpose.
	SerialConflict string `json:"serial_conflict,omitempty"`
}

type EquipmentListResponse struct {
	Success   bool               `json:"success"`
	Equipment []models.Equipment `json:"equipment"`
	Total     int                `json:"total"`
}

func validateEquipmentRequest(req *EquipmentRequest) string {
	if strings.TrimSpace(req.Brand) == "" || strings.TrimSpace(req.Model) == "" || strings.TrimSpace(req.SerialNumber) == "" {
		return "Brand, model and serial number are required"
	}
	if req.IsForSale && req.SalePrice <= 0 {
		return "Sale price must be greater than zero"
	}
	if req.IsForRent && req.RentalPricePerDay <= 0 {
		return "Rental price must be greater than zero"
	}
	if (req.IsForSale || req.IsForRent) && len(strings.TrimSpace(req.Description)) < 10 {
		return "Listings need a description of at least 10 characters"
	}
	return ""
}

// findBySerial returns the active item holding a serial number, nil when free.
func findBySerial(serial string) (*models.Equipment, error) {
	ctx, cancel := dbContext()
	defer cancel()

	var item models.Equipment
	err := database.DB.Collection("equipment").FindOne(ctx, bson.M{"serial_number": strings.TrimSpace(serial)}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// AddEquipment registers a new item for the caller. Gated by the
// inventory quota and the global serial uniqueness check; the quota is
// checked before any mutation.
func AddEquipment(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req EquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateEquipmentRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	allowed, err := services.CheckLimit(ctx, user, services.FeatureInventory)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !allowed {
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Success: false,
			Message: "Free inventory limit reached. Invite friends to unlock more slots.",
			Upsell:  true,
		})
		return
	}

	existing, err := findBySerial(req.SerialNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if existing != nil {
		resp := EquipmentResponse{Success: false}
		if existing.OwnerID == user.ID.Hex() {
			resp.Message = "You already registered this item"
			resp.SerialConflict = "already_yours"
		} else {
			resp.Message = "Serial number already registered by another user"
			resp.SerialConflict = "unavailable"
		}
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.Brand + " " + req.Model)
	}

	now := time.Now()
	item := models.Equipment{
		ID:                primitive.NewObjectID(),
		CreatedAt:         now,
		UpdatedAt:         now,
		OwnerID:           user.ID.Hex(),
		Name:              name,
		Brand:             strings.TrimSpace(req.Brand),
		Model:             strings.TrimSpace(req.Model),
		SerialNumber:      strings.TrimSpace(req.SerialNumber),
		Category:          req.Category,
		Status:            models.StatusSafe,
		Value:             req.Value,
		IsForRent:         req.IsForRent,
		RentalPricePerDay: req.RentalPricePerDay,
		IsForSale:         req.IsForSale,
		SalePrice:         req.SalePrice,
		ImageURL:          req.ImageURL,
		InvoiceURL:        req.InvoiceURL,
		Description:       req.Description,
		OwnerProfile:      user.PublicProfile(),
	}

	if _, err := database.DB.Collection("equipment").InsertOne(ctx, item); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register equipment")
		return
	}

	writeJSON(w, http.StatusCreated, EquipmentResponse{Success: true, Message: "Equipment registered", Equipment: &item})
}

// GetMyEquipment lists the caller's inventory.
func GetMyEquipment(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	equipment, err := services.GetUserEquipment(ctx, user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if equipment == nil {
		equipment = []models.Equipment{}
	}

	writeJSON(w, http.StatusOK, EquipmentListResponse{Success: true, Equipment: equipment, Total: len(equipment)})
}

// UpdateEquipment edits an owned item. Listing flags can only be set on
// SAFE items; the serial uniqueness gate applies when the serial changes.
func UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	id := r.URL.Query().Get("id")
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID format")
		return
	}

	var req EquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateEquipmentRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
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

	if (req.IsForRent || req.IsForSale) && !services.CanList(&item) {
		writeError(w, http.StatusConflict, "Only SAFE items can be listed")
		return
	}

	if strings.TrimSpace(req.SerialNumber) != item.SerialNumber {
		existing, err := findBySerial(req.SerialNumber)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if existing != nil && existing.ID != item.ID {
			resp := EquipmentResponse{Success: false}
			if existing.OwnerID == user.ID.Hex() {
				resp.Message = "You already registered this item"
				resp.SerialConflict = "already_yours"
			} else {
				resp.Message = "Serial number already registered by another user"
				resp.SerialConflict = "unavailable"
			}
			writeJSON(w, http.StatusConflict, resp)
			return
		}
	}

	set := bson.M{
		"name":                 strings.TrimSpace(req.Name),
		"brand":                strings.TrimSpace(req.Brand),
		"model":                strings.TrimSpace(req.Model),
		"serial_number":        strings.TrimSpace(req.SerialNumber),
		"category":             req.Category,
		"value":                req.Value,
		"is_for_rent":          req.IsForRent,
		"rental_price_per_day": req.RentalPricePerDay,
		"is_for_sale":          req.IsForSale,
		"sale_price":           req.SalePrice,
		"image_url":            req.ImageURL,
		"invoice_url":          req.InvoiceURL,
		"description":          req.Description,
		"updated_at":           time.Now(),
	}
	// Backfill the owner snapshot when it is missing.
	if item.OwnerProfile == nil {
		set["owner_profile"] = user.PublicProfile()
	}

	if _, err := database.DB.Collection("equipment").UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update equipment")
		return
	}

	writeJSON(w, http.StatusOK, EquipmentResponse{Success: true, Message: "Equipment updated"})
}

// DeleteEquipment removes an owned item.
func DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	objectID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID format")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	res, err := database.DB.Collection("equipment").DeleteOne(ctx, bson.M{"_id": objectID, "owner_id": user.ID.Hex()})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete equipment")
		return
	}
	if res.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "Equipment not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Equipment deleted"})
}

type SerialCheckResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Result  string            `json:"result"` // clean | stolen | unknown
	Item    *models.Equipment `json:"item,omitempty"`
	Upsell  bool              `json:"upsell,omitempty"`
}

// CheckSerial looks up a serial number. Quota gated (one check per month
// for free users); the counter is charged only after a successful lookup.
// Every lookup lands in the Postgres audit ledger.
func CheckSerial(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	serial := strings.TrimSpace(r.URL.Query().Get("serial"))
	if serial == "" {
		writeError(w, http.StatusBadRequest, "Serial number is required")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	allowed, err := services.CheckLimit(ctx, user, services.FeatureCheck)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !allowed {
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Success: false,
			Message: "Monthly serial check limit reached",
			Upsell:  true,
		})
		return
	}

	item, err := findBySerial(serial)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	result := "unknown"
	resultStatus := ""
	if item != nil {
		resultStatus = item.Status
		if item.Status == models.StatusStolen {
			result = "stolen"
		} else {
			result = "clean"
		}
		// Backfill the owner snapshot when absent at read time.
		if item.OwnerProfile == nil {
			services.RefreshOwnerSnapshot(ctx, item)
		}
	}

	// Charge the quota and lifetime counter only after the lookup succeeded.
	if err := services.IncrementUsage(ctx, user.ID, services.FeatureCheck); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record usage")
		return
	}
	services.IncrementUserStat(ctx, user.ID, "checks_count")

	// Audit logging is best effort; the lookup result still stands.
	services.LogSerialCheck(user.ID.Hex(), serial, item != nil, resultStatus)

	writeJSON(w, http.StatusOK, SerialCheckResponse{Success: true, Result: result, Item: item})
}
