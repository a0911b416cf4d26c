package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
)

// TransferExpiry is how long the counterparty has to accept.
const TransferExpiry = 24 * time.Hour

var (
	ErrNotTransferable = errors.New("equipment is not in a transferable state")
	ErrNotPending      = errors.New("equipment has no pending transfer")
	ErrNotRecipient    = errors.New("user is not the pending transfer recipient")
	ErrNotOwner        = errors.New("user does not own this equipment")
)

// CanTransfer reports whether an item may enter a transfer. Only SAFE
// items qualify; stolen, lost and already-pending items are locked.
func CanTransfer(item *models.Equipment) bool {
	return item.Status == models.StatusSafe
}

// CanList reports whether an item may be listed for rent or sale.
// Same restriction as transfers: the item must be SAFE.
func CanList(item *models.Equipment) bool {
	return item.Status == models.StatusSafe
}

// CanReportStolen reports whether an item may be included in a theft report.
func CanReportStolen(item *models.Equipment) bool {
	return item.Status == models.StatusSafe
}

// BeginTransfer moves a SAFE item into TRANSFER_PENDING toward a target
// user, clearing any marketplace listing flags. Listing flags are not
// restored on cancel.
func BeginTransfer(ctx context.Context, item *models.Equipment, targetUserID string) error {
	if !CanTransfer(item) {
		return ErrNotTransferable
	}
	_, err := database.DB.Collection("equipment").UpdateOne(ctx,
		bson.M{"_id": item.ID, "status": models.StatusSafe},
		bson.M{"$set": bson.M{
			"status":              models.StatusTransferPending,
			"pending_transfer_to": targetUserID,
			"is_for_rent":         false,
			"is_for_sale":         false,
			"updated_at":          time.Now(),
		}},
	)
	return err
}

// CancelTransfer returns a pending item to SAFE. Only the current owner
// may cancel, and only before the recipient accepts.
func CancelTransfer(ctx context.Context, item *models.Equipment, ownerID string) error {
	if item.OwnerID != ownerID {
		return ErrNotOwner
	}
	if item.Status != models.StatusTransferPending {
		return ErrNotPending
	}
	_, err := database.DB.Collection("equipment").UpdateOne(ctx,
		bson.M{"_id": item.ID},
		bson.M{"$set": bson.M{"status": models.StatusSafe, "updated_at": time.Now()},
			"$unset": bson.M{"pending_transfer_to": ""}},
	)
	return err
}

// AcceptTransfer finalizes an ownership change. Inside a single Mongo
// transaction it reassigns the owner, resets the status to SAFE, clears
// the pending marker, refreshes the denormalized owner snapshot to the
// new owner's profile, and, for valued transfers, adds the value to both
// parties' transaction ledgers. Either all of it lands or none of it does.
func AcceptTransfer(ctx context.Context, equipmentID primitive.ObjectID, newOwner *models.User, transactionValue float64) error {
	equipment := database.DB.Collection("equipment")
	users := database.DB.Collection("users")

	var item models.Equipment
	if err := equipment.FindOne(ctx, bson.M{"_id": equipmentID}).Decode(&item); err != nil {
		return err
	}
	if item.Status != models.StatusTransferPending {
		return ErrNotPending
	}
	if item.PendingTransferTo != newOwner.ID.Hex() {
		return ErrNotRecipient
	}

	previousOwnerID := item.OwnerID
	newOwnerHex := newOwner.ID.Hex()

	session, err := database.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		update := bson.M{
			"$set": bson.M{
				"owner_id":      newOwnerHex,
				"status":        models.StatusSafe,
				"owner_profile": newOwner.PublicProfile(),
				"updated_at":    time.Now(),
			},
			"$unset": bson.M{"pending_transfer_to": ""},
		}
		if transactionValue > 0 {
			update["$set"].(bson.M)["value"] = transactionValue
		}
		if _, err := equipment.UpdateOne(sc, bson.M{"_id": item.ID}, update); err != nil {
			return nil, err
		}

		if transactionValue > 0 {
			prevID, err := primitive.ObjectIDFromHex(previousOwnerID)
			if err != nil {
				return nil, err
			}
			if _, err := users.UpdateOne(sc,
				bson.M{"_id": prevID},
				bson.M{"$inc": bson.M{"transaction_history." + newOwnerHex: transactionValue}},
			); err != nil {
				return nil, err
			}
			if _, err := users.UpdateOne(sc,
				bson.M{"_id": newOwner.ID},
				bson.M{"$inc": bson.M{"transaction_history." + previousOwnerID: transactionValue}},
			); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
