package services

import (
	"time"

	"github.com/cinesafe/cinesafe-backend/internal/database"
	"github.com/cinesafe/cinesafe-backend/internal/models"
)

// TheftEvent is a historical theft record, written to the Postgres ledger
// when a stolen item is recovered. Separate from the live equipment
// document, which loses its theft fields on recovery.
type TheftEvent struct {
	EquipmentID     string     `json:"equipment_id"`
	OwnerID         string     `json:"owner_id"`
	TheftDate       *time.Time `json:"theft_date,omitempty"`
	TheftLat        *float64   `json:"theft_lat,omitempty"`
	TheftLng        *float64   `json:"theft_lng,omitempty"`
	TheftAddress    string     `json:"theft_address,omitempty"`
	EquipmentValue  float64    `json:"equipment_value"`
	RecoveryDate    time.Time  `json:"recovery_date"`
	RecoveredViaApp bool       `json:"recovered_via_app"`
}

// RecordTheftEvent appends a recovery record to the theft_history ledger.
func RecordTheftEvent(item *models.Equipment, recoveredViaApp bool) error {
	var lat, lng *float64
	if item.TheftLocation != nil {
		lat = &item.TheftLocation.Lat
		lng = &item.TheftLocation.Lng
	}

	_, err := database.PostgresDB.Exec(`
		INSERT INTO theft_history
			(equipment_id, owner_id, theft_date, theft_lat, theft_lng, theft_address, equipment_value, recovery_date, recovered_via_app)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
	`, item.ID.Hex(), item.OwnerID, item.TheftDate, lat, lng, item.TheftAddress, item.Value, recoveredViaApp)
	return err
}

// GetRecoveryStats returns the count and summed value of recovered items
// for one owner.
func GetRecoveryStats(ownerID string) (int, float64, error) {
	var count int
	var value float64
	err := database.PostgresDB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(equipment_value), 0) FROM theft_history WHERE owner_id = $1
	`, ownerID).Scan(&count, &value)
	return count, value, err
}

// GetGlobalRecoveryStats returns recovery totals across all users.
func GetGlobalRecoveryStats() (int, float64, error) {
	var count int
	var value float64
	err := database.PostgresDB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(equipment_value), 0) FROM theft_history
	`).Scan(&count, &value)
	return count, value, err
}

// HistoricalTheftPoint is a map pin from the theft_history ledger.
type HistoricalTheftPoint struct {
	Lat     float64    `json:"lat"`
	Lng     float64    `json:"lng"`
	Address string     `json:"address"`
	Date    *time.Time `json:"date,omitempty"`
}

// GetHistoricalTheftPoints returns all ledger rows that carry coordinates,
// for the community safety map.
func GetHistoricalTheftPoints() ([]HistoricalTheftPoint, error) {
	rows, err := database.PostgresDB.Query(`
		SELECT theft_lat, theft_lng, COALESCE(theft_address, ''), theft_date
		FROM theft_history
		WHERE theft_lat IS NOT NULL AND theft_lng IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []HistoricalTheftPoint
	for rows.Next() {
		var p HistoricalTheftPoint
		if err := rows.Scan(&p.Lat, &p.Lng, &p.Address, &p.Date); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// LogSerialCheck appends a serial lookup to the audit log.
func LogSerialCheck(userID, serialNumber string, found bool, resultStatus string) error {
	_, err := database.PostgresDB.Exec(`
		INSERT INTO serial_checks (user_id, serial_number, found, result_status)
		VALUES ($1, $2, $3, $4)
	`, userID, serialNumber, found, resultStatus)
	return err
}
