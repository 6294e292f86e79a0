package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/artemk/movebid/internal/models"
	"github.com/jmoiron/sqlx"
)

// MatchTx scopes the row-locked reads and writes of one acceptance or
// rejection. Both rows stay locked until Commit, so the status gates checked
// through it hold at commit time.
type MatchTx interface {
	GetOfferForUpdate(ctx context.Context, id string) (*models.Offer, error)
	GetContractForUpdate(ctx context.Context, id string) (*models.Contract, error)
	MarkOfferResponded(ctx context.Context, id, status string, at time.Time) error
	MarkContractAccepted(ctx context.Context, contractID, offerID, driverID string, at time.Time) error
	Commit() error
	Rollback() error
}

type MatchStore interface {
	Begin(ctx context.Context) (MatchTx, error)
}

type matchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) MatchStore {
	return &matchStore{db: db}
}

func (s *matchStore) Begin(ctx context.Context) (MatchTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &matchTx{tx: tx}, nil
}

type matchTx struct {
	tx *sqlx.Tx
}

func (t *matchTx) GetOfferForUpdate(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	query := `SELECT * FROM offers WHERE id = $1 FOR UPDATE`
	err := t.tx.GetContext(ctx, &offer, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &offer, err
}

// GetContractForUpdate locks the contract row for the duration of the
// transaction. The contract row is the lock granularity for acceptance.
func (t *matchTx) GetContractForUpdate(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	query := `SELECT * FROM contracts WHERE id = $1 FOR UPDATE`
	err := t.tx.GetContext(ctx, &contract, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &contract, err
}

func (t *matchTx) MarkOfferResponded(ctx context.Context, id, status string, at time.Time) error {
	query := `UPDATE offers SET status = $1, responded_at = $2 WHERE id = $3`
	_, err := t.tx.ExecContext(ctx, query, status, at, id)
	return err
}

func (t *matchTx) MarkContractAccepted(ctx context.Context, contractID, offerID, driverID string, at time.Time) error {
	query := `
		UPDATE contracts
		SET status = $1, accepted_offer_id = $2, driver_id = $3, accepted_at = $4, updated_at = $4
		WHERE id = $5
	`
	_, err := t.tx.ExecContext(ctx, query, models.ContractStatusAccepted, offerID, driverID, at, contractID)
	return err
}

func (t *matchTx) Commit() error {
	return t.tx.Commit()
}

func (t *matchTx) Rollback() error {
	return t.tx.Rollback()
}
