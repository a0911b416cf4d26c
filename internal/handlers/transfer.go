package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

type TransferRequest struct {
	EquipmentID string `json:"equipment_id"`
	TargetID    string `json:"target_id"`
	// Zero for free transfers; a positive value is added to both parties'
	// ledgers on acceptance.
	TransactionValue float64 `json:"transaction_value"`
}

type TransferResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RequestTransfer starts an ownership handover: the item is locked in
// TRANSFER_PENDING (listing flags cleared) and the target connection gets
// an ITEM_TRANSFER notification that expires in 24 hours.
func RequestTransfer(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TransactionValue < 0 {
		writeError(w, http.StatusBadRequest, "Transaction value cannot be negative")
		return
	}

	equipmentID, err := primitive.ObjectIDFromHex(req.EquipmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	isConnection := false
	for _, id := range user.Connections {
		if id == req.TargetID {
			isConnection = true
			break
		}
	}
	if !isConnection {
		writeError(w, http.StatusForbidden, "Transfers are limited to your trusted network")
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
	if item.OwnerID != user.ID.Hex() {
		writeError(w, http.StatusForbidden, "Not your equipment")
		return
	}

	if err := services.BeginTransfer(ctx, &item, req.TargetID); err != nil {
		if err == services.ErrNotTransferable {
			writeError(w, http.StatusConflict, "Only SAFE items can be transferred")
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to start transfer")
		}
		return
	}

	expiresAt := time.Now().Add(services.TransferExpiry)
	notification := models.Notification{
		ToUserID:            req.TargetID,
		FromUserID:          user.ID.Hex(),
		FromUserName:        user.Name,
		FromUserPhone:       user.ContactPhone,
		FromUserAvatar:      user.AvatarURL,
		FromUserReputation:  user.ReputationPoints,
		FromUserConnections: len(user.Connections),
		ItemID:              item.ID.Hex(),
		ItemName:            item.Name,
		ItemImage:           item.ImageURL,
		Type:                models.NotifItemTransfer,
		Message:             fmt.Sprintf("%s wants to transfer %s to you.", user.Name, item.Name),
		ExpiresAt:           &expiresAt,
		ActionPayload: &models.ActionPayload{
			EquipmentID:      item.ID.Hex(),
			TransactionValue: req.TransactionValue,
		},
	}
	if err := services.CreateNotification(ctx, &notification); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to notify recipient")
		return
	}

	writeJSON(w, http.StatusOK, TransferResponse{Success: true, Message: "Transfer requested, awaiting acceptance (24h)"})
}

// CancelTransfer aborts a pending handover. Owner only; previous listing
// flags are not restored.
func CancelTransfer(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	equipmentID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("id"))
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

	if err := services.CancelTransfer(ctx, &item, user.ID.Hex()); err != nil {
		switch err {
		case services.ErrNotOwner:
			writeError(w, http.StatusForbidden, "Not your equipment")
		case services.ErrNotPending:
			writeError(w, http.StatusConflict, "No pending transfer on this item")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to cancel transfer")
		}
		return
	}

	writeJSON(w, http.StatusOK, TransferResponse{Success: true, Message: "Transfer cancelled"})
}

type AcceptTransferRequest struct {
	NotificationID string `json:"notification_id"`
}

// AcceptTransfer finalizes a handover by consuming the ITEM_TRANSFER
// notification's payload. The ownership change and both ledger updates
// run as one atomic unit; the consumed notification is deleted afterwards.
func AcceptTransfer(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req AcceptTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	notifID, err := primitive.ObjectIDFromHex(req.NotificationID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification ID")
		return
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
		return
	}

	if notif.ToUserID != user.ID.Hex() || notif.Type != models.NotifItemTransfer || notif.ActionPayload == nil {
		writeError(w, http.StatusForbidden, "Notification cannot be accepted")
		return
	}
	if notif.ExpiresAt != nil && !notif.ExpiresAt.After(time.Now()) {
		writeError(w, http.StatusGone, "Transfer offer has expired")
		return
	}

	equipmentID, err := primitive.ObjectIDFromHex(notif.ActionPayload.EquipmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid equipment reference")
		return
	}

	if err := services.AcceptTransfer(ctx, equipmentID, user, notif.ActionPayload.TransactionValue); err != nil {
		switch err {
		case services.ErrNotPending:
			writeError(w, http.StatusConflict, "Transfer is no longer pending")
		case services.ErrNotRecipient:
			writeError(w, http.StatusForbidden, "Transfer is pending to another user")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to complete transfer")
		}
		return
	}

	// Never leave a consumed notification behind.
	services.DeleteNotification(ctx, notifID)

	writeJSON(w, http.StatusOK, TransferResponse{Success: true, Message: "Transfer completed"})
}
