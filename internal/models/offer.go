package models

import (
	"time"
)

// Offer status constants
const (
	OfferStatusCreated  = "created"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
	OfferStatusDeleted  = "deleted"
)

// Valid offer state transitions. Only "created" offers may move; accepted,
// rejected and deleted are terminal. Acceptance and rejection additionally
// require the owning contract to be in "requested" status, checked under the
// row lock at commit time, not here.
var ValidOfferTransitions = map[string][]string{
	OfferStatusCreated:  {OfferStatusAccepted, OfferStatusRejected, OfferStatusDeleted},
	OfferStatusAccepted: {},
	OfferStatusRejected: {},
	OfferStatusDeleted:  {},
}

type Offer struct {
	ID          string     `db:"id" json:"id"`
	ContractID  string     `db:"contract_id" json:"contract_id"`
	DriverID    string     `db:"driver_id" json:"driver_id"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}

type CreateOfferRequest struct {
	ContractID string `json:"contract_id" validate:"required,uuid"`
	DriverID   string `json:"driver_id" validate:"required,uuid"`
}

type UpdateOfferStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OfferResponse struct {
	ID          string            `json:"id"`
	ContractID  string            `json:"contract_id"`
	DriverID    string            `json:"driver_id"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	RespondedAt *time.Time        `json:"responded_at,omitempty"`
	Contract    *ContractResponse `json:"contract,omitempty"`
	Driver      *UserResponse     `json:"driver,omitempty"`
}

func (o *Offer) ToResponse() *OfferResponse {
	return &OfferResponse{
		ID:          o.ID,
		ContractID:  o.ContractID,
		DriverID:    o.DriverID,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		RespondedAt: o.RespondedAt,
	}
}

// CanTransitionTo checks if an offer can transition to a new status
func (o *Offer) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidOfferTransitions[o.Status]
	if !exists {
		return false
	}

	for _, state := range validNextStates {
		if state == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal returns true once the offer can no longer change status
func (o *Offer) IsTerminal() bool {
	return o.Status != OfferStatusCreated
}

// IsLive returns true while the offer counts toward the one-live-offer-per-
// (contract, driver) uniqueness rule
func (o *Offer) IsLive() bool {
	return o.Status != OfferStatusDeleted
}

func IsValidOfferStatus(status string) bool {
	_, ok := ValidOfferTransitions[status]
	return ok
}
