package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinesafe/cinesafe-backend/internal/models"
)

func TestCanTransfer(t *testing.T) {
	assert.True(t, CanTransfer(&models.Equipment{Status: models.StatusSafe}))
	assert.False(t, CanTransfer(&models.Equipment{Status: models.StatusStolen}))
	assert.False(t, CanTransfer(&models.Equipment{Status: models.StatusLost}))
	assert.False(t, CanTransfer(&models.Equipment{Status: models.StatusTransferPending}))
}

func TestCanList(t *testing.T) {
	assert.True(t, CanList(&models.Equipment{Status: models.StatusSafe}))
	assert.False(t, CanList(&models.Equipment{Status: models.StatusStolen}))
	assert.False(t, CanList(&models.Equipment{Status: models.StatusLost}))
	assert.False(t, CanList(&models.Equipment{Status: models.StatusTransferPending}))
}

func TestCanReportStolen(t *testing.T) {
	assert.True(t, CanReportStolen(&models.Equipment{Status: models.StatusSafe}))
	// Double-reporting a stolen item is rejected
	assert.False(t, CanReportStolen(&models.Equipment{Status: models.StatusStolen}))
	// Items mid-transfer are locked
	assert.False(t, CanReportStolen(&models.Equipment{Status: models.StatusTransferPending}))
}
