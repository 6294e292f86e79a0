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
)

// OfferFilter narrows List results; nil fields are ignored and the rest are
// ANDed together.
type OfferFilter struct {
	ContractID *string
	DriverID   *string
	Status     *string
}

type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	GetLiveByContractAndDriver(ctx context.Context, contractID, driverID string) (*models.Offer, error)
	List(ctx context.Context, filter OfferFilter) ([]*models.Offer, error)
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
}

type offerRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = utils.GenerateID()
	}
	offer.CreatedAt = time.Now()
	offer.Status = models.OfferStatusCreated

	query := `
		INSERT INTO offers (id, contract_id, driver_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		offer.ID, offer.ContractID, offer.DriverID, offer.Status, offer.CreatedAt)
	return err
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	query := `SELECT * FROM offers WHERE id = $1`
	err := r.db.GetContext(ctx, &offer, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &offer, err
}

// GetLiveByContractAndDriver returns the non-deleted offer for the pair, if
// any. The partial unique index on (contract_id, driver_id) guarantees at
// most one row qualifies.
func (r *offerRepository) GetLiveByContractAndDriver(ctx context.Context, contractID, driverID string) (*models.Offer, error) {
	var offer models.Offer
	query := `
		SELECT * FROM offers
		WHERE contract_id = $1 AND driver_id = $2 AND status <> $3
	`
	err := r.db.GetContext(ctx, &offer, query, contractID, driverID, models.OfferStatusDeleted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &offer, err
}

func (r *offerRepository) List(ctx context.Context, filter OfferFilter) ([]*models.Offer, error) {
	conditions := []string{}
	args := []interface{}{}

	appendCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.ContractID != nil {
		appendCondition("contract_id = $%d", *filter.ContractID)
	}
	if filter.DriverID != nil {
		appendCondition("driver_id = $%d", *filter.DriverID)
	}
	if filter.Status != nil {
		appendCondition("status = $%d", *filter.Status)
	}

	query := `SELECT * FROM offers`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	// Insertion order keeps pagination stable in higher layers.
	query += " ORDER BY created_at ASC, id ASC"

	var offers []*models.Offer
	err := r.db.SelectContext(ctx, &offers, query, args...)
	return offers, err
}

// UpdateStatus transitions the offer only if it still has the status the
// caller observed, so a concurrent acceptance committing in between cannot
// be overwritten. Returns false when the guard did not match.
func (r *offerRepository) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	query := `UPDATE offers SET status = $1, responded_at = $2 WHERE id = $3 AND status = $4`
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
