package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cinesafe/cinesafe-backend/internal/models"
)

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2026-01", MonthKey(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-12", MonthKey(time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestIsPremium(t *testing.T) {
	assert.False(t, IsPremium(&models.User{}))
	assert.False(t, IsPremium(&models.User{ReferralCount: 4}))
	assert.True(t, IsPremium(&models.User{ReferralCount: 5}))
	assert.True(t, IsPremium(&models.User{ReferralCount: 100}))
	assert.True(t, IsPremium(&models.User{Role: models.RoleAdmin}))
}

func TestCounterAllows(t *testing.T) {
	// Fresh counter, never used
	assert.True(t, counterAllows(models.MonthlyCounter{}, "2026-09", 1))

	// Under the limit in the current month
	assert.True(t, counterAllows(models.MonthlyCounter{Count: 1, Month: "2026-09"}, "2026-09", 2))

	// At the limit
	assert.False(t, counterAllows(models.MonthlyCounter{Count: 2, Month: "2026-09"}, "2026-09", 2))

	// Stale month reads as zero regardless of stored count
	assert.True(t, counterAllows(models.MonthlyCounter{Count: 99, Month: "2026-08"}, "2026-09", 1))
}

func TestBumpCounter(t *testing.T) {
	// First use of a new month overwrites the stale value
	c := bumpCounter(models.MonthlyCounter{Count: 7, Month: "2026-08"}, "2026-09")
	assert.Equal(t, models.MonthlyCounter{Count: 1, Month: "2026-09"}, c)

	// Same month increments
	c = bumpCounter(c, "2026-09")
	assert.Equal(t, models.MonthlyCounter{Count: 2, Month: "2026-09"}, c)
}

func TestCounterRolloverSequence(t *testing.T) {
	c := models.MonthlyCounter{}
	month := "2026-09"

	// Free serial check limit is one per month
	assert.True(t, counterAllows(c, month, 1))
	c = bumpCounter(c, month)
	assert.False(t, counterAllows(c, month, 1))

	// Next month the same counter allows again
	next := "2026-10"
	assert.True(t, counterAllows(c, next, 1))
	c = bumpCounter(c, next)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, next, c.Month)
}
