package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

// NetworkMember is a connection entry enriched with the cumulative value
// transacted with that partner.
type NetworkMember struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	AvatarURL        string  `json:"avatar_url"`
	Location         string  `json:"location"`
	ReputationPoints int     `json:"reputation_points"`
	TransactedValue  float64 `json:"transacted_value"`
}

// SearchUsers finds users by name prefix for the connect flow. The caller
// and existing connections are excluded from results.
func SearchUsers(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		writeError(w, http.StatusBadRequest, "Query must be at least 2 characters")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	filter := bson.M{
		"name":       bson.M{"$regex": "^" + regexEscape(query), "$options": "i"},
		"is_blocked": bson.M{"$ne": true},
	}
	cursor, err := database.DB.Collection("users").Find(ctx, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	connected := make(map[string]bool, len(user.Connections))
	for _, id := range user.Connections {
		connected[id] = true
	}

	results := []NetworkMember{}
	for cursor.Next(ctx) {
		var candidate models.User
		if err := cursor.Decode(&candidate); err != nil {
			continue
		}
		hex := candidate.ID.Hex()
		if hex == user.ID.Hex() || connected[hex] {
			continue
		}
		results = append(results, NetworkMember{
			ID:        hex,
			Name:      candidate.Name,
			AvatarURL: candidate.AvatarURL,
			Location:  candidate.Location,
		})
		if len(results) >= 20 {
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "users": results})
}

// regexEscape quotes regex metacharacters so user input is matched
// literally.
func regexEscape(s string) string {
	var b strings.Builder
	for _, c := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, c) {
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

type ConnectionRequestBody struct {
	UserID string `json:"user_id"`
}

// SendConnectionRequest creates a CONNECTION_REQUEST notification for the
// target user. The connection only forms when the target accepts.
func SendConnectionRequest(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req ConnectionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == user.ID.Hex() {
		writeError(w, http.StatusBadRequest, "Cannot connect to yourself")
		return
	}
	for _, id := range user.Connections {
		if id == req.UserID {
			writeError(w, http.StatusConflict, "Already connected")
			return
		}
	}

	targetID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	var target models.User
	if err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": targetID}).Decode(&target); err != nil {
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Collapse duplicate pending requests into one.
	dupFilter := bson.M{
		"to_user_id":   req.UserID,
		"from_user_id": user.ID.Hex(),
		"type":         models.NotifConnectionRequest,
	}
	if count, err := database.DB.Collection("notifications").CountDocuments(ctx, dupFilter); err == nil && count > 0 {
		writeError(w, http.StatusConflict, "Request already pending")
		return
	}

	notification := models.Notification{
		ToUserID:            req.UserID,
		FromUserID:          user.ID.Hex(),
		FromUserName:        user.Name,
		FromUserAvatar:      user.AvatarURL,
		FromUserReputation:  user.ReputationPoints,
		FromUserConnections: len(user.Connections),
		Type:                models.NotifConnectionRequest,
		Message:             fmt.Sprintf("%s wants to join your trusted network.", user.Name),
		ActionPayload:       &models.ActionPayload{RequesterID: user.ID.Hex()},
	}
	if err := services.CreateNotification(ctx, &notification); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Connection request sent"})
}

// AcceptConnection consumes a CONNECTION_REQUEST notification and links
// both users symmetrically. The notification is deleted afterwards so the
// payload cannot be replayed.
func AcceptConnection(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	notif, ok := ownNotification(w, r, user)
	if !ok {
		return
	}
	if notif.Type != models.NotifConnectionRequest || notif.ActionPayload == nil {
		writeError(w, http.StatusBadRequest, "Not a connection request")
		return
	}

	requesterID, err := primitive.ObjectIDFromHex(notif.ActionPayload.RequesterID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid requester ID")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := services.AddConnection(ctx, user.ID, requesterID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create connection")
		return
	}
	if err := services.DeleteNotification(ctx, notif.ID); err != nil {
		// Connection already formed; the stale notification is harmless.
		log.Printf("⚠️ Failed to delete consumed notification %s: %v", notif.ID.Hex(), err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Connection added"})
}

// RemoveConnection unlinks both users. Transaction history with the
// former partner is kept.
func RemoveConnection(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	partnerID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	if err := services.RemoveConnection(ctx, user.ID, partnerID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove connection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetConnections lists the caller's trusted network with live reputation
// and per-partner transacted value.
func GetConnections(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	members := []NetworkMember{}
	for _, hex := range user.Connections {
		partner, err := services.GetUserProfileByHex(r.Context(), hex)
		if err != nil || partner == nil {
			continue
		}
		members = append(members, NetworkMember{
			ID:               hex,
			Name:             partner.Name,
			AvatarURL:        partner.AvatarURL,
			Location:         partner.Location,
			ReputationPoints: partner.ReputationPoints,
			TransactedValue:  user.TransactionHistory[hex],
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "connections": members, "total": len(members)})
}
