package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

type NotificationsResponse struct {
	Success       bool                  `json:"success"`
	Notifications []models.Notification `json:"notifications"`
	Total         int                   `json:"total"`
}

// GetNotifications lists the caller's live notifications, expiry filtered
// at read time and sorted newest first. The client keeps its own cosmetic
// countdown timers; this filter is the authoritative one.
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	notifs, err := services.GetUserNotifications(ctx, user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}

	writeJSON(w, http.StatusOK, NotificationsResponse{Success: true, Notifications: notifs, Total: len(notifs)})
}

// ownNotification loads a notification and verifies the caller is its
// recipient.
func ownNotification(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Notification, bool) {
	notifID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return nil, false
	}

	ctx, cancel := dbContext()
	defer cancel()

	var notif models.Notification
	if err := database.DB.Collection("notifications").FindOne(ctx, bson.M{"_id": notifID}).Decode(&notif); err != nil {
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusNotFound, "Notification not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	if notif.ToUserID != user.ID.Hex() {
		writeError(w, http.StatusForbidden, "Not your notification")
		return nil, false
	}
	return &notif, true
}

// MarkNotificationRead flips the read flag on one of the caller's
// notifications.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	notif, ok := ownNotification(w, r, user)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := services.MarkNotificationRead(ctx, notif.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteNotification removes one of the caller's notifications.
func DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	notif, ok := ownNotification(w, r, user)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := services.DeleteNotification(ctx, notif.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ScheduleNotificationExpiry marks a notification read and starts its
// 24-hour decay window, used when the conversation continues off-app.
func ScheduleNotificationExpiry(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	notif, ok := ownNotification(w, r, user)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := services.ScheduleNotificationExpiry(ctx, notif.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to schedule expiry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type InterestRequest struct {
	EquipmentID string `json:"equipment_id"`
	// "rental" or "sale"
	Kind string `json:"kind"`
}

// SendInterest notifies an item's owner of rental or sale interest.
// Gated by the monthly contact-reveal quota; the counter is charged only
// after the notification is stored.
func SendInterest(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req InterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var notifType, verb string
	switch req.Kind {
	case "rental":
		notifType = models.NotifRentalInterest
		verb = "rent"
	case "sale":
		notifType = models.NotifSaleInterest
		verb = "buy"
	default:
		writeError(w, http.StatusBadRequest, "Kind must be rental or sale")
		return
	}

	equipmentID, err := primitive.ObjectIDFromHex(req.EquipmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	allowed, err := services.CheckLimit(ctx, user, services.FeatureContact)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !allowed {
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Success: false,
			Message: "Monthly contact limit reached",
			Upsell:  true,
		})
		return
	}

	var item models.Equipment
	if err := database.DB.Collection("equipment").FindOne(ctx, bson.M{"_id": equipmentID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusNotFound, "Equipment not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if item.OwnerID == user.ID.Hex() {
		writeError(w, http.StatusBadRequest, "This is your own listing")
		return
	}

	notification := models.Notification{
		ToUserID:            item.OwnerID,
		FromUserID:          user.ID.Hex(),
		FromUserName:        user.Name,
		FromUserPhone:       user.ContactPhone,
		FromUserAvatar:      user.AvatarURL,
		FromUserReputation:  user.ReputationPoints,
		FromUserConnections: len(user.Connections),
		ItemID:              item.ID.Hex(),
		ItemName:            item.Name,
		ItemImage:           item.ImageURL,
		Type:                notifType,
		Message:             fmt.Sprintf("I'm interested in your item %s, would like to %s it.", item.Name, verb),
	}
	if err := services.CreateNotification(ctx, &notification); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send notification")
		return
	}

	// Charge the quota only after the notification landed.
	if err := services.IncrementUsage(ctx, user.ID, services.FeatureContact); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record usage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Interest sent"})
}

type StolenFoundRequest struct {
	EquipmentID string `json:"equipment_id"`
}

// SendStolenFoundAlert sends an urgent alert to the owner of a stolen
// item, typically after a serial check hit.
func SendStolenFoundAlert(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req StolenFoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	equipmentID, err := primitive.ObjectIDFromHex(req.EquipmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	var item models.Equipment
	if err := database.DB.Collection("equipment").FindOne(ctx, bson.M{"_id": equipmentID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusNotFound, "Equipment not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if item.Status != models.StatusStolen {
		writeError(w, http.StatusConflict, "Item is not reported stolen")
		return
	}

	notification := models.Notification{
		ToUserID:            item.OwnerID,
		FromUserID:          user.ID.Hex(),
		FromUserName:        user.Name,
		FromUserPhone:       user.ContactPhone,
		FromUserAvatar:      user.AvatarURL,
		FromUserReputation:  user.ReputationPoints,
		FromUserConnections: len(user.Connections),
		ItemID:              item.ID.Hex(),
		ItemName:            item.Name,
		ItemImage:           item.ImageURL,
		Type:                models.NotifStolenFound,
		Message:             fmt.Sprintf("URGENT: your stolen item %s has been located!", item.Name),
	}
	if err := services.CreateNotification(ctx, &notification); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Owner alerted"})
}
