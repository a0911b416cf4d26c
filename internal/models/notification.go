package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifRentalInterest    = "RENTAL_INTEREST"
	NotifSaleInterest      = "SALE_INTEREST"
	NotifStolenFound       = "STOLEN_FOUND"
	NotifConnectionRequest = "CONNECTION_REQUEST"
	NotifItemTransfer      = "ITEM_TRANSFER"
)

// ActionPayload is consumed by exactly one accept/resolve action.
type ActionPayload struct {
	EquipmentID      string  `bson:"equipment_id,omitempty" json:"equipment_id,omitempty"`
	RequesterID      string  `bson:"requester_id,omitempty" json:"requester_id,omitempty"`
	TransactionValue float64 `bson:"transaction_value,omitempty" json:"transaction_value,omitempty"`
}

// Notification is a time-boxed directed message between two users.
// After ExpiresAt is set the document is only ever mutated to flip Read.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	ToUserID   string `bson:"to_user_id" json:"to_user_id"`
	FromUserID string `bson:"from_user_id" json:"from_user_id"`

	// Sender details denormalized for display without a second fetch.
	FromUserName        string `bson:"from_user_name" json:"from_user_name"`
	FromUserPhone       string `bson:"from_user_phone,omitempty" json:"from_user_phone,omitempty"`
	FromUserAvatar      string `bson:"from_user_avatar,omitempty" json:"from_user_avatar,omitempty"`
	FromUserReputation  int    `bson:"from_user_reputation,omitempty" json:"from_user_reputation,omitempty"`
	FromUserConnections int    `bson:"from_user_connections,omitempty" json:"from_user_connections,omitempty"`

	ItemID    string `bson:"item_id,omitempty" json:"item_id,omitempty"`
	ItemName  string `bson:"item_name,omitempty" json:"item_name,omitempty"`
	ItemImage string `bson:"item_image,omitempty" json:"item_image,omitempty"`

	Type    string `bson:"type" json:"type"`
	Read    bool   `bson:"read" json:"read"`
	Message string `bson:"message,omitempty" json:"message,omitempty"`

	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`

	ActionPayload *ActionPayload `bson:"action_payload,omitempty" json:"action_payload,omitempty"`
}
