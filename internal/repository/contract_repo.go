package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/pkg/utils"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ContractFilter narrows List results; nil fields are ignored and the rest
// are ANDed together.
type ContractFilter struct {
	RequesterID *string
	DriverID    *string
	Status      *string
	MoveBefore  *time.Time
}

type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, id string) (*models.Contract, error)
	List(ctx context.Context, filter ContractFilter) ([]*models.Contract, error)
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	Cancel(ctx context.Context, id, from, reason string) (bool, error)
	MarkDeleted(ctx context.Context, id, from string) (bool, error)
}

type contractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	if contract.ID == "" {
		contract.ID = utils.GenerateID()
	}
	contract.CreatedAt = time.Now()
	contract.UpdatedAt = time.Now()
	contract.Status = models.ContractStatusRequested
	if contract.PhotoURLs == nil {
		contract.PhotoURLs = pq.StringArray{}
	}

	query := `
		INSERT INTO contracts (id, requester_id, title, description, mass_kg, volume_m3,
			fragile, cooling_required, ride_along, man_power, price, collateral,
			pickup_address, dropoff_address, move_at, photo_urls, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.ExecContext(ctx, query,
		contract.ID, contract.RequesterID, contract.Title, contract.Description,
		contract.MassKg, contract.VolumeM3, contract.Fragile, contract.CoolingRequired,
		contract.RideAlong, contract.ManPower, contract.Price, contract.Collateral,
		contract.PickupAddress, contract.DropoffAddress, contract.MoveAt,
		contract.PhotoURLs, contract.Status, contract.CreatedAt, contract.UpdatedAt)
	return err
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	query := `SELECT * FROM contracts WHERE id = $1`
	err := r.db.GetContext(ctx, &contract, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &contract, err
}

func (r *contractRepository) List(ctx context.Context, filter ContractFilter) ([]*models.Contract, error) {
	conditions := []string{}
	args := []interface{}{}

	appendCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.RequesterID != nil {
		appendCondition("requester_id = $%d", *filter.RequesterID)
	}
	if filter.DriverID != nil {
		appendCondition("driver_id = $%d", *filter.DriverID)
	}
	if filter.Status != nil {
		appendCondition("status = $%d", *filter.Status)
	} else {
		// Soft-deleted contracts are hidden unless asked for explicitly.
		appendCondition("status <> $%d", models.ContractStatusDeleted)
	}
	if filter.MoveBefore != nil {
		appendCondition("move_at <= $%d", *filter.MoveBefore)
	}

	query := `SELECT * FROM contracts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	var contracts []*models.Contract
	err := r.db.SelectContext(ctx, &contracts, query, args...)
	return contracts, err
}

// UpdateStatus transitions the contract only if it still has the status the
// caller observed. The guard makes the read-validate-write sequence safe
// against a concurrent acceptance: the acceptance flips the row to
// "accepted", the guard stops matching and the stale write is dropped.
// Returns false when the guard did not match.
func (r *contractRepository) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	query := `UPDATE contracts SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *contractRepository) Cancel(ctx context.Context, id, from, reason string) (bool, error) {
	query := `
		UPDATE contracts
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, models.ContractStatusCanceled, reason, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkDeleted is a soft delete; contract rows are never physically removed
// so offers referencing them stay resolvable.
func (r *contractRepository) MarkDeleted(ctx context.Context, id, from string) (bool, error) {
	return r.UpdateStatus(ctx, id, from, models.ContractStatusDeleted)
}
