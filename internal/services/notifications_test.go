package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cinesafe/cinesafe-backend/internal/models"
)

func TestFilterActive(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	notifs := []models.Notification{
		{Message: "no expiry"},
		{Message: "expired", ExpiresAt: &past},
		{Message: "exactly now", ExpiresAt: &now},
		{Message: "still live", ExpiresAt: &future},
	}

	active := FilterActive(notifs, now)

	assert.Len(t, active, 2)
	assert.Equal(t, "no expiry", active[0].Message)
	assert.Equal(t, "still live", active[1].Message)
}

func TestFilterActiveEmpty(t *testing.T) {
	assert.Empty(t, FilterActive(nil, time.Now()))
	assert.Empty(t, FilterActive([]models.Notification{}, time.Now()))
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	notifs := []models.Notification{
		{Message: "oldest", CreatedAt: base},
		{Message: "newest", CreatedAt: base.Add(2 * time.Hour)},
		{Message: "middle", CreatedAt: base.Add(time.Hour)},
	}

	SortNewestFirst(notifs)

	assert.Equal(t, "newest", notifs[0].Message)
	assert.Equal(t, "middle", notifs[1].Message)
	assert.Equal(t, "oldest", notifs[2].Message)
}

func TestStatFieldForType(t *testing.T) {
	assert.Equal(t, "notification_stats.rental_interest", statFieldForType(models.NotifRentalInterest))
	assert.Equal(t, "notification_stats.sale_interest", statFieldForType(models.NotifSaleInterest))
	assert.Equal(t, "notification_stats.stolen_alerts", statFieldForType(models.NotifStolenFound))

	// Workflow messages bump no counters
	assert.Equal(t, "", statFieldForType(models.NotifConnectionRequest))
	assert.Equal(t, "", statFieldForType(models.NotifItemTransfer))
}
