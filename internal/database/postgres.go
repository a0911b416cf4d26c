package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL, which keeps the append-only
// ledgers (theft history, serial check audit log).
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	return InitPostgresTables()
}

// InitPostgresTables creates the ledger tables if they don't exist.
func InitPostgresTables() error {
	queries := []string{
		// Historical theft events, written when a stolen item is recovered.
		// The live equipment document loses its theft fields at that point,
		// so this row is the only durable record of the event.
		`CREATE TABLE IF NOT EXISTS theft_history (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			equipment_id VARCHAR(24) NOT NULL,
			owner_id VARCHAR(24) NOT NULL,
			theft_date TIMESTAMP,
			theft_lat DOUBLE PRECISION,
			theft_lng DOUBLE PRECISION,
			theft_address TEXT,
			equipment_value NUMERIC(12,2) NOT NULL DEFAULT 0,
			recovery_date TIMESTAMP NOT NULL DEFAULT NOW(),
			recovered_via_app BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Audit log of serial number lookups.
		`CREATE TABLE IF NOT EXISTS serial_checks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id VARCHAR(24) NOT NULL,
			serial_number VARCHAR(120) NOT NULL,
			found BOOLEAN NOT NULL,
			result_status VARCHAR(20),
			checked_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_theft_history_owner ON theft_history(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_serial_checks_user ON serial_checks(user_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL ledger tables ready")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection.
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
