package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
)

// Gated feature types.
const (
	FeatureInventory = "inventory"
	FeatureCheck     = "check"
	FeatureContact   = "contact"
)

// Free-tier limits. Premium users (referral threshold or admin) bypass
// all of them.
const (
	freeInventoryLimit     = 3
	freeSerialChecksLimit  = 1
	freeContactsLimit      = 2
	premiumReferralMinimum = 5
)

// MonthKey returns the "YYYY-MM" quota key for t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// IsPremium reports whether a user is exempt from monthly usage quotas.
func IsPremium(user *models.User) bool {
	return user.ReferralCount >= premiumReferralMinimum || user.Role == models.RoleAdmin
}

// counterAllows decides whether a monthly counter permits one more use.
// A stored month different from the current one means the counter has
// rolled over and reads as zero.
func counterAllows(c models.MonthlyCounter, currentMonth string, limit int) bool {
	if c.Month != currentMonth {
		return true
	}
	return c.Count < limit
}

// bumpCounter advances a monthly counter: the first use of a new month
// overwrites the stale value instead of incrementing it.
func bumpCounter(c models.MonthlyCounter, currentMonth string) models.MonthlyCounter {
	if c.Month != currentMonth {
		return models.MonthlyCounter{Count: 1, Month: currentMonth}
	}
	c.Count++
	return c
}

// CheckLimit reports whether the user may perform one more gated action.
// It never mutates state; callers must invoke IncrementUsage only after
// the gated action actually succeeded to avoid charging failed attempts.
func CheckLimit(ctx context.Context, user *models.User, feature string) (bool, error) {
	if IsPremium(user) {
		return true, nil
	}

	currentMonth := MonthKey(time.Now())

	switch feature {
	case FeatureInventory:
		count, err := database.DB.Collection("equipment").CountDocuments(ctx, bson.M{"owner_id": user.ID.Hex()})
		if err != nil {
			return false, err
		}
		return count < freeInventoryLimit, nil
	case FeatureCheck:
		return counterAllows(user.UsageStats.SerialChecks, currentMonth, freeSerialChecksLimit), nil
	case FeatureContact:
		return counterAllows(user.UsageStats.ContactReveals, currentMonth, freeContactsLimit), nil
	}
	return false, nil
}

// IncrementUsage charges one use of a monthly-metered feature against the
// user document. Read-modify-write without optimistic locking: concurrent
// increments for the same user are last-write-wins, which is acceptable
// for human-paced actions.
func IncrementUsage(ctx context.Context, userID primitive.ObjectID, feature string) error {
	var user models.User
	if err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return err
	}

	currentMonth := MonthKey(time.Now())
	stats := user.UsageStats

	switch feature {
	case FeatureCheck:
		stats.SerialChecks = bumpCounter(stats.SerialChecks, currentMonth)
	case FeatureContact:
		stats.ContactReveals = bumpCounter(stats.ContactReveals, currentMonth)
	default:
		return nil
	}

	_, err := database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"usage_stats": stats, "updated_at": time.Now()}},
	)
	return err
}
