package database

import (
	"context"
	"fmt"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		phone VARCHAR(20) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255),
		role VARCHAR(16) NOT NULL CHECK (role IN ('driver', 'requester')),
		license_number VARCHAR(64),
		vehicle_number VARCHAR(32),
		capacity_kg NUMERIC(10,2),
		default_address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY,
		requester_id UUID NOT NULL REFERENCES users(id),
		driver_id UUID REFERENCES users(id),
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		mass_kg NUMERIC(10,2) NOT NULL,
		volume_m3 NUMERIC(10,3) NOT NULL,
		fragile BOOLEAN NOT NULL DEFAULT FALSE,
		cooling_required BOOLEAN NOT NULL DEFAULT FALSE,
		ride_along BOOLEAN NOT NULL DEFAULT FALSE,
		man_power INT NOT NULL DEFAULT 0,
		price NUMERIC(12,2) NOT NULL,
		collateral NUMERIC(12,2) NOT NULL DEFAULT 0,
		pickup_address TEXT NOT NULL,
		dropoff_address TEXT NOT NULL,
		move_at TIMESTAMPTZ NOT NULL,
		photo_urls TEXT[] NOT NULL DEFAULT '{}',
		status VARCHAR(16) NOT NULL DEFAULT 'requested',
		accepted_offer_id UUID,
		accepted_at TIMESTAMPTZ,
		cancel_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS offers (
		id UUID PRIMARY KEY,
		contract_id UUID NOT NULL REFERENCES contracts(id),
		driver_id UUID NOT NULL REFERENCES users(id),
		status VARCHAR(16) NOT NULL DEFAULT 'created',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		responded_at TIMESTAMPTZ
	);`,
	// At most one non-deleted offer per (contract, driver) pair.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_offers_contract_driver_live
		ON offers (contract_id, driver_id) WHERE status <> 'deleted';`,
	`CREATE INDEX IF NOT EXISTS idx_offers_contract_id ON offers (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_offers_driver_id ON offers (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_offers_status ON offers (status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_requester_id ON contracts (requester_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_driver_id ON contracts (driver_id) WHERE driver_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_move_at ON contracts (move_at);`,
}

// Migrate applies the idempotent schema statements in order.
func (p *PostgresDB) Migrate(ctx context.Context) error {
	for i, stmt := range migrationStatements {
		if _, err := p.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}
	return nil
}
