package handlers

import (
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/middleware"
	"github.com/cinesafe/cinesafe-backend/internal/models"
	"github.com/cinesafe/cinesafe-backend/internal/services"
)

// AdminListUsers returns every account with live reputation and inventory
// counts for the moderation dashboard.
func AdminListUsers(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(w, r)
	if admin == nil {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	cursor, err := database.DB.Collection("users").Find(ctx, bson.M{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	for i := range users {
		items, err := services.GetUserEquipment(ctx, users[i].ID.Hex())
		if err != nil {
			continue
		}
		users[i].InventoryCount = len(items)
		users[i].ReputationPoints = services.CalculateReputation(&users[i], items)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "users": users, "total": len(users)})
}

// adminTargetUser resolves the ?id= target and refuses self-moderation.
func adminTargetUser(w http.ResponseWriter, r *http.Request, admin *models.User) (primitive.ObjectID, bool) {
	targetID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return primitive.NilObjectID, false
	}
	if targetID == admin.ID {
		writeError(w, http.StatusBadRequest, "Cannot moderate your own account")
		return primitive.NilObjectID, false
	}
	return targetID, true
}

// AdminToggleBlock flips the blocked flag on an account. Blocking also
// kills the user's active sessions.
func AdminToggleBlock(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(w, r)
	if admin == nil {
		return
	}
	targetID, ok := adminTargetUser(w, r, admin)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	var target models.User
	if err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": targetID}).Decode(&target); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	blocked := !target.IsBlocked
	_, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": bson.M{"is_blocked": blocked}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	if blocked {
		if err := services.InvalidateUserSessions(targetID.Hex()); err != nil {
			log.Printf("⚠️ Failed to invalidate sessions for %s: %v", targetID.Hex(), err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "is_blocked": blocked})
}

// AdminToggleRole promotes a user to admin or demotes them back.
func AdminToggleRole(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(w, r)
	if admin == nil {
		return
	}
	targetID, ok := adminTargetUser(w, r, admin)
	if !ok {
		return
	}

	ctx, cancel := dbContext()
	defer cancel()

	var target models.User
	if err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": targetID}).Decode(&target); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	role := models.RoleAdmin
	if target.Role == models.RoleAdmin {
		role = models.RoleUser
	}
	_, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "role": role})
}

// AdminDeleteUser removes an account and everything hanging off it:
// equipment, notifications in either direction, and sessions.
func AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(w, r)
	if admin == nil {
		return
	}
	targetID, ok := adminTargetUser(w, r, admin)
	if !ok {
		return
	}
	hex := targetID.Hex()

	ctx, cancel := dbContext()
	defer cancel()

	if _, err := database.DB.Collection("equipment").DeleteMany(ctx, bson.M{"owner_id": hex}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user equipment")
		return
	}
	if _, err := database.DB.Collection("notifications").DeleteMany(ctx, bson.M{
		"$or": []bson.M{{"to_user_id": hex}, {"from_user_id": hex}},
	}); err != nil {
		log.Printf("⚠️ Failed to delete notifications for %s: %v", hex, err)
	}
	// Drop the user from other people's networks.
	if _, err := database.DB.Collection("users").UpdateMany(ctx,
		bson.M{"connections": hex},
		bson.M{"$pull": bson.M{"connections": hex}},
	); err != nil {
		log.Printf("⚠️ Failed to prune connections for %s: %v", hex, err)
	}

	result, err := database.DB.Collection("users").DeleteOne(ctx, bson.M{"_id": targetID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if result.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := services.InvalidateUserSessions(hex); err != nil {
		log.Printf("⚠️ Failed to invalidate sessions for %s: %v", hex, err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "User deleted"})
}

// UnblockIP lifts a rate-limit block from an IP address.
func UnblockIP(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(w, r)
	if admin == nil {
		return
	}

	ip := r.URL.Query().Get("ip")
	if ip == "" {
		writeError(w, http.StatusBadRequest, "Missing IP address")
		return
	}

	if err := middleware.UnblockIP(ip); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to unblock IP")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "IP unblocked"})
}
