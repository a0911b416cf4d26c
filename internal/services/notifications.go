package services

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
)

// statFieldForType maps notification types to the lifetime counter they
// bump on the recipient's profile. Connection requests and item transfers
// intentionally bump nothing: those are workflow messages, not interest
// signals.
func statFieldForType(notifType string) string {
	switch notifType {
	case models.NotifRentalInterest:
		return "notification_stats.rental_interest"
	case models.NotifSaleInterest:
		return "notification_stats.sale_interest"
	case models.NotifStolenFound:
		return "notification_stats.stolen_alerts"
	}
	return ""
}

// CreateNotification persists a notification and, for interest-type
// messages, bumps the matching lifetime counter on the recipient.
func CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if _, err := database.DB.Collection("notifications").InsertOne(ctx, n); err != nil {
		return err
	}

	if field := statFieldForType(n.Type); field != "" {
		toID, err := primitive.ObjectIDFromHex(n.ToUserID)
		if err != nil {
			return nil
		}
		_, err = database.DB.Collection("users").UpdateOne(ctx,
			bson.M{"_id": toID},
			bson.M{"$inc": bson.M{field: 1}},
		)
		return err
	}
	return nil
}

// FilterActive drops notifications whose expiry has elapsed as of now.
// Notifications without an expiry never expire passively.
func FilterActive(notifs []models.Notification, now time.Time) []models.Notification {
	active := make([]models.Notification, 0, len(notifs))
	for _, n := range notifs {
		if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
			continue
		}
		active = append(active, n)
	}
	return active
}

// SortNewestFirst orders notifications by creation time, newest first.
func SortNewestFirst(notifs []models.Notification) {
	sort.SliceStable(notifs, func(i, j int) bool {
		return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
	})
}

// GetUserNotifications returns the user's live notifications, expiry
// filtered server-side at read time and sorted newest first. Expired
// entries are simply not returned; deletion is left to explicit actions.
func GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	cursor, err := database.DB.Collection("notifications").Find(ctx, bson.M{"to_user_id": userID})
	if err != nil {
		return nil, err
	}
	var notifs []models.Notification
	if err := cursor.All(ctx, &notifs); err != nil {
		return nil, err
	}

	notifs = FilterActive(notifs, time.Now())
	SortNewestFirst(notifs)
	return notifs, nil
}

// MarkNotificationRead flips the read flag.
func MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := database.DB.Collection("notifications").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// DeleteNotification removes a notification outright. Resolution actions
// call this after consuming the payload so no consumed message lingers.
func DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	_, err := database.DB.Collection("notifications").DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ScheduleNotificationExpiry marks a notification read and starts a 24h
// decay window from now. Used when the conversation moves off-app; for
// conversational types this is the only way they ever gain an expiry.
func ScheduleNotificationExpiry(ctx context.Context, id primitive.ObjectID) error {
	expiresAt := time.Now().Add(24 * time.Hour)
	_, err := database.DB.Collection("notifications").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true, "expires_at": expiresAt}},
	)
	return err
}
