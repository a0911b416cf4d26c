package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cinesafe/cinesafe-backend/internal/models"
)

func equipmentWithLocation(location string) models.Equipment {
	return models.Equipment{
		ID:           primitive.NewObjectID(),
		OwnerProfile: &models.OwnerProfile{Location: location},
	}
}

func TestTrimPage(t *testing.T) {
	items := []models.Equipment{
		equipmentWithLocation("a"),
		equipmentWithLocation("b"),
		equipmentWithLocation("c"),
	}

	// Over-fetched: extra document signals another page and is dropped
	page, hasMore := trimPage(items, 2)
	assert.Len(t, page, 2)
	assert.True(t, hasMore)

	// Exactly full page: no more results
	page, hasMore = trimPage(items, 3)
	assert.Len(t, page, 3)
	assert.False(t, hasMore)

	// Under-full page
	page, hasMore = trimPage(items, 10)
	assert.Len(t, page, 3)
	assert.False(t, hasMore)
}

func TestApplyLocationFilter(t *testing.T) {
	items := []models.Equipment{
		equipmentWithLocation("São Paulo, SP"),
		equipmentWithLocation("Rio de Janeiro, RJ"),
		equipmentWithLocation("são paulo, sp"),
		{ID: primitive.NewObjectID()}, // missing owner snapshot
	}

	// Case-insensitive substring match
	filtered := applyLocationFilter(items, "são paulo")
	assert.Len(t, filtered, 2)

	filtered = applyLocationFilter(items, "RJ")
	assert.Len(t, filtered, 1)

	// Empty filter passes everything through, including snapshot-less items
	filtered = applyLocationFilter(items, "")
	assert.Len(t, filtered, 4)

	// Items without an owner snapshot never match a non-empty filter
	filtered = applyLocationFilter(items, "zzz")
	assert.Empty(t, filtered)
}

func TestPageCursor(t *testing.T) {
	assert.Equal(t, "", pageCursor(nil))
	assert.Equal(t, "", pageCursor([]models.Equipment{}))

	items := []models.Equipment{
		equipmentWithLocation("a"),
		equipmentWithLocation("b"),
	}
	assert.Equal(t, items[1].ID.Hex(), pageCursor(items))
}

// The cursor must advance past soft-filtered items so paging makes
// progress even when a whole page is filtered out.
func TestPageCursorAdvancesPastFilteredItems(t *testing.T) {
	items := []models.Equipment{
		equipmentWithLocation("Curitiba, PR"),
		equipmentWithLocation("Salvador, BA"),
	}

	cursor := pageCursor(items)
	filtered := applyLocationFilter(items, "recife")

	assert.Empty(t, filtered)
	assert.Equal(t, items[1].ID.Hex(), cursor)
}
