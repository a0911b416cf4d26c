package services

import (
	"strings"

	"github.com/cinesafe/cinesafe-backend/internal/models"
)

// Reputation scoring weights. The score is additive over non-negative
// terms, so it can never go below zero.
const (
	pointsAvatar        = 50
	pointsContactPhone  = 50
	pointsAdmin         = 500
	pointsSafeItemBase  = 10
	pointsSafeItemBonus = 5
	pointsForRentItem   = 20
	pointsForSaleItem   = 15
	pointsPerSerial     = 2
	pointsPerReport     = 1
	pointsPerConnection = 20
	valuePerPoint       = 1000
)

// defaultAvatarHost marks generated placeholder avatars; those earn no
// profile-completeness points.
const defaultAvatarHost = "ui-avatars"

// ReputationBreakdown itemizes every term of the canonical score for the
// profile page. Total always equals the sum of the parts.
type ReputationBreakdown struct {
	Profile     int `json:"profile"`
	Role        int `json:"role"`
	Inventory   int `json:"inventory"`
	Listings    int `json:"listings"`
	ItemValue   int `json:"item_value"`
	Activity    int `json:"activity"`
	Connections int `json:"connections"`
	Total       int `json:"total"`
}

// CalculateReputation computes the canonical reputation score for a user
// given their current equipment set. It is pure and deterministic, and is
// invoked on every profile read; the result is never persisted.
func CalculateReputation(user *models.User, equipment []models.Equipment) int {
	return ComputeReputationBreakdown(user, equipment).Total
}

// ComputeReputationBreakdown computes the canonical score with per-term
// detail. Only items in SAFE status count toward inventory, listing and
// value terms.
func ComputeReputationBreakdown(user *models.User, equipment []models.Equipment) ReputationBreakdown {
	var b ReputationBreakdown

	if user.AvatarURL != "" && !strings.Contains(user.AvatarURL, defaultAvatarHost) {
		b.Profile += pointsAvatar
	}
	if user.ContactPhone != "" {
		b.Profile += pointsContactPhone
	}
	if user.Role == models.RoleAdmin {
		b.Role = pointsAdmin
	}

	var totalValue float64
	for _, item := range equipment {
		if item.Status != models.StatusSafe {
			continue
		}
		b.Inventory += pointsSafeItemBase + pointsSafeItemBonus
		if item.IsForRent {
			b.Listings += pointsForRentItem
		}
		if item.IsForSale {
			b.Listings += pointsForSaleItem
		}
		totalValue += item.Value
	}
	b.ItemValue = int(totalValue) / valuePerPoint

	b.Activity = user.ChecksCount*pointsPerSerial + user.ReportsCount*pointsPerReport
	b.Connections = len(user.Connections) * pointsPerConnection

	b.Total = b.Profile + b.Role + b.Inventory + b.Listings + b.ItemValue + b.Activity + b.Connections
	return b
}
