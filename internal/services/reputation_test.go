package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinesafe/cinesafe-backend/internal/models"
)

func TestCalculateReputationEmptyUser(t *testing.T) {
	user := &models.User{}

	assert.Equal(t, 0, CalculateReputation(user, nil))
}

func TestCalculateReputationProfileCompleteness(t *testing.T) {
	// Generated placeholder avatars earn nothing
	user := &models.User{AvatarURL: "https://ui-avatars.com/api/?name=Ana"}
	assert.Equal(t, 0, CalculateReputation(user, nil))

	// A real uploaded avatar earns 50
	user.AvatarURL = "https://res.cloudinary.com/demo/avatar.jpg"
	assert.Equal(t, 50, CalculateReputation(user, nil))

	// Phone adds another 50
	user.ContactPhone = "+55 11 99999-0000"
	assert.Equal(t, 100, CalculateReputation(user, nil))
}

func TestCalculateReputationAdminRole(t *testing.T) {
	user := &models.User{Role: models.RoleAdmin}

	assert.Equal(t, 500, CalculateReputation(user, nil))
}

func TestCalculateReputationInventoryTerms(t *testing.T) {
	user := &models.User{}
	// Each SAFE item is 15 inventory points; rent listings add 20, sale
	// listings 15. Non-SAFE items contribute nothing.
	equipment := []models.Equipment{
		{Status: models.StatusSafe},
		{Status: models.StatusSafe, IsForRent: true},
		{Status: models.StatusSafe, IsForSale: true},
		{Status: models.StatusSafe, IsForRent: true, IsForSale: true},
		{Status: models.StatusStolen, IsForRent: true, IsForSale: true},
		{Status: models.StatusTransferPending},
	}

	b := ComputeReputationBreakdown(user, equipment)
	assert.Equal(t, 60, b.Inventory)
	assert.Equal(t, 70, b.Listings)
	assert.Equal(t, 130, b.Total)
}

func TestCalculateReputationItemValueFloor(t *testing.T) {
	user := &models.User{}
	equipment := []models.Equipment{
		{Status: models.StatusSafe, Value: 1500},
		{Status: models.StatusSafe, Value: 2499},
		// Stolen value never counts
		{Status: models.StatusStolen, Value: 100000},
	}

	b := ComputeReputationBreakdown(user, equipment)
	// floor(3999 / 1000) = 3
	assert.Equal(t, 3, b.ItemValue)
}

func TestCalculateReputationActivityAndConnections(t *testing.T) {
	user := &models.User{
		ChecksCount:  4,
		ReportsCount: 3,
		Connections:  []string{"a", "b"},
	}

	b := ComputeReputationBreakdown(user, nil)
	assert.Equal(t, 11, b.Activity)
	assert.Equal(t, 40, b.Connections)
	assert.Equal(t, 51, b.Total)
}

func TestReputationBreakdownTotalsMatch(t *testing.T) {
	user := &models.User{
		AvatarURL:    "https://res.cloudinary.com/demo/avatar.jpg",
		ContactPhone: "+55 21 98888-0000",
		Role:         models.RoleAdmin,
		ChecksCount:  2,
		ReportsCount: 1,
		Connections:  []string{"a"},
	}
	equipment := []models.Equipment{
		{Status: models.StatusSafe, Value: 5000, IsForRent: true},
	}

	b := ComputeReputationBreakdown(user, equipment)
	sum := b.Profile + b.Role + b.Inventory + b.Listings + b.ItemValue + b.Activity + b.Connections
	assert.Equal(t, sum, b.Total)
	assert.Equal(t, b.Total, CalculateReputation(user, equipment))
}
