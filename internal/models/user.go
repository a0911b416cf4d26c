package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MonthlyCounter is a usage counter scoped to a calendar month.
// Month is a "YYYY-MM" key; a stored month different from the current
// one means the counter has rolled over and reads as zero.
type MonthlyCounter struct {
	Count int    `bson:"count" json:"count"`
	Month string `bson:"month" json:"month"`
}

// UsageStats tracks the monthly quota counters for rate-limited features.
type UsageStats struct {
	SerialChecks   MonthlyCounter `bson:"serial_checks" json:"serial_checks"`
	ContactReveals MonthlyCounter `bson:"contact_reveals" json:"contact_reveals"`
}

// NotificationStats are lifetime received-message counters. They persist
// after the notifications themselves are deleted or expire.
type NotificationStats struct {
	RentalInterest int `bson:"rental_interest" json:"rental_interest"`
	SaleInterest   int `bson:"sale_interest" json:"sale_interest"`
	StolenAlerts   int `bson:"stolen_alerts" json:"stolen_alerts"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // Argon2id hash, never returned

	AvatarURL    string `bson:"avatar_url" json:"avatar_url"`
	Location     string `bson:"location" json:"location"` // "City, UF"
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`

	Role      string `bson:"role" json:"role"` // admin | user
	IsBlocked bool   `bson:"is_blocked" json:"is_blocked"`

	// Recomputed from profile + equipment on every read, never persisted.
	ReputationPoints int `bson:"-" json:"reputation_points"`

	// Lifetime activity counters.
	ChecksCount  int `bson:"checks_count" json:"checks_count"`
	ReportsCount int `bson:"reports_count" json:"reports_count"`

	// Helper for ranking responses, not stored.
	InventoryCount int `bson:"-" json:"inventory_count,omitempty"`

	// Trusted network: symmetric set of user id hex strings.
	Connections []string `bson:"connections,omitempty" json:"connections,omitempty"`

	// Cumulative transacted value per partner user id.
	TransactionHistory map[string]float64 `bson:"transaction_history,omitempty" json:"transaction_history,omitempty"`

	ReferralCode  string `bson:"referral_code" json:"referral_code"`
	ReferredBy    string `bson:"referred_by,omitempty" json:"referred_by,omitempty"`
	ReferralCount int    `bson:"referral_count" json:"referral_count"`

	UsageStats        UsageStats        `bson:"usage_stats" json:"usage_stats"`
	NotificationStats NotificationStats `bson:"notification_stats" json:"notification_stats"`
}

// OwnerProfile is the public slice of a user profile denormalized onto
// equipment documents for read efficiency. It must be refreshed on every
// ownership change and backfilled when absent at read time.
type OwnerProfile struct {
	Name         string `bson:"name" json:"name"`
	AvatarURL    string `bson:"avatar_url" json:"avatar_url"`
	Location     string `bson:"location" json:"location"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
}

// PublicProfile returns the denormalizable slice of the user.
func (u *User) PublicProfile() *OwnerProfile {
	return &OwnerProfile{
		Name:         u.Name,
		AvatarURL:    u.AvatarURL,
		Location:     u.Location,
		ContactPhone: u.ContactPhone,
	}
}
