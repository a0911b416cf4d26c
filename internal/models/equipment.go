package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Equipment lifecycle states.
const (
	StatusSafe            = "SAFE"
	StatusStolen          = "STOLEN"
	StatusLost            = "LOST"
	StatusTransferPending = "TRANSFER_PENDING"
)

// Equipment categories.
const (
	CategoryCamera    = "Câmera"
	CategoryLens      = "Lente"
	CategoryAudio     = "Áudio"
	CategoryLighting  = "Iluminação"
	CategoryDrone     = "Drone"
	CategoryAccessory = "Acessório"
)

type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type Equipment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	OwnerID string `bson:"owner_id" json:"owner_id"`

	Name         string `bson:"name" json:"name"`
	Brand        string `bson:"brand" json:"brand"`
	Model        string `bson:"model" json:"model"`
	SerialNumber string `bson:"serial_number" json:"serial_number"`
	Category     string `bson:"category" json:"category"`
	Status       string `bson:"status" json:"status"`

	// Declared worth, used in reputation scoring and transaction ledgers.
	Value float64 `bson:"value" json:"value"`

	IsForRent         bool    `bson:"is_for_rent" json:"is_for_rent"`
	RentalPricePerDay float64 `bson:"rental_price_per_day,omitempty" json:"rental_price_per_day,omitempty"`
	IsForSale         bool    `bson:"is_for_sale" json:"is_for_sale"`
	SalePrice         float64 `bson:"sale_price,omitempty" json:"sale_price,omitempty"`

	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	InvoiceURL  string `bson:"invoice_url,omitempty" json:"invoice_url,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// Theft fields, set while status is STOLEN.
	TheftDate     *time.Time   `bson:"theft_date,omitempty" json:"theft_date,omitempty"`
	TheftLocation *Coordinates `bson:"theft_location,omitempty" json:"theft_location,omitempty"`
	TheftAddress  string       `bson:"theft_address,omitempty" json:"theft_address,omitempty"`

	// Set if and only if status is TRANSFER_PENDING.
	PendingTransferTo string `bson:"pending_transfer_to,omitempty" json:"pending_transfer_to,omitempty"`

	OwnerProfile *OwnerProfile `bson:"owner_profile,omitempty" json:"owner_profile,omitempty"`
}
