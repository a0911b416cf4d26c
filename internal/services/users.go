package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
)

// GetUserProfile loads a user and recomputes their reputation from the
// current equipment snapshot. Returns (nil, nil) when the user does not
// exist; absence is a valid result the caller branches on.
func GetUserProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	equipment, err := GetUserEquipment(ctx, userID.Hex())
	if err != nil {
		return nil, err
	}

	user.ReputationPoints = CalculateReputation(&user, equipment)
	return &user, nil
}

// GetUserProfileByHex is GetUserProfile for callers holding a hex id string.
func GetUserProfileByHex(ctx context.Context, hexID string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, nil
	}
	return GetUserProfile(ctx, objectID)
}

// GetUserEquipment returns all equipment owned by a user.
func GetUserEquipment(ctx context.Context, ownerID string) ([]models.Equipment, error) {
	cursor, err := database.DB.Collection("equipment").Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	var equipment []models.Equipment
	if err := cursor.All(ctx, &equipment); err != nil {
		return nil, err
	}
	return equipment, nil
}

// ProcessReferral credits the owner of a referral code with one referral.
// Unknown codes are ignored.
func ProcessReferral(ctx context.Context, referralCode string) error {
	_, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"referral_code": referralCode},
		bson.M{"$inc": bson.M{"referral_count": 1}},
	)
	return err
}

// IncrementUserStat bumps a lifetime activity counter (checks_count or
// reports_count).
func IncrementUserStat(ctx context.Context, userID primitive.ObjectID, stat string) error {
	_, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{stat: 1}, "$set": bson.M{"updated_at": time.Now()}},
	)
	return err
}

// AddConnection records a symmetric trusted-network link between two users.
func AddConnection(ctx context.Context, userAID, userBID primitive.ObjectID) error {
	users := database.DB.Collection("users")
	if _, err := users.UpdateOne(ctx,
		bson.M{"_id": userAID},
		bson.M{"$addToSet": bson.M{"connections": userBID.Hex()}},
	); err != nil {
		return err
	}
	_, err := users.UpdateOne(ctx,
		bson.M{"_id": userBID},
		bson.M{"$addToSet": bson.M{"connections": userAID.Hex()}},
	)
	return err
}

// RemoveConnection removes the link from both sides.
func RemoveConnection(ctx context.Context, userAID, userBID primitive.ObjectID) error {
	users := database.DB.Collection("users")
	if _, err := users.UpdateOne(ctx,
		bson.M{"_id": userAID},
		bson.M{"$pull": bson.M{"connections": userBID.Hex()}},
	); err != nil {
		return err
	}
	_, err := users.UpdateOne(ctx,
		bson.M{"_id": userBID},
		bson.M{"$pull": bson.M{"connections": userAID.Hex()}},
	)
	return err
}

// RefreshOwnerSnapshot rewrites the denormalized owner profile on an
// equipment document from the owner's current public profile.
func RefreshOwnerSnapshot(ctx context.Context, item *models.Equipment) error {
	owner, err := GetUserProfileByHex(ctx, item.OwnerID)
	if err != nil || owner == nil {
		return err
	}
	item.OwnerProfile = owner.PublicProfile()
	_, err = database.DB.Collection("equipment").UpdateOne(ctx,
		bson.M{"_id": item.ID},
		bson.M{"$set": bson.M{"owner_profile": item.OwnerProfile}},
	)
	return err
}
