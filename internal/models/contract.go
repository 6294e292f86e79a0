package models

import (
	"time"

	"github.com/lib/pq"
)

// Contract status constants
const (
	ContractStatusRequested = "requested"
	ContractStatusOffered   = "offered"
	ContractStatusAccepted  = "accepted"
	ContractStatusCanceled  = "canceled"
	ContractStatusCompleted = "completed"
	ContractStatusFinalized = "finalized"
	ContractStatusDeleted   = "deleted"
)

// Valid contract state transitions. "offered" is informational (a contract
// with at least one live offer); no core operation writes it, but it remains
// a legal source state for cancellation and deletion. "deleted" is reachable
// from every other state as an administrative override.
var ValidContractTransitions = map[string][]string{
	ContractStatusRequested: {ContractStatusOffered, ContractStatusAccepted, ContractStatusCanceled, ContractStatusDeleted},
	ContractStatusOffered:   {ContractStatusAccepted, ContractStatusCanceled, ContractStatusDeleted},
	ContractStatusAccepted:  {ContractStatusCompleted, ContractStatusDeleted},
	ContractStatusCompleted: {ContractStatusFinalized, ContractStatusDeleted},
	ContractStatusFinalized: {ContractStatusDeleted},
	ContractStatusCanceled:  {ContractStatusDeleted},
	ContractStatusDeleted:   {},
}

type Contract struct {
	ID              string         `db:"id" json:"id"`
	RequesterID     string         `db:"requester_id" json:"requester_id"`
	DriverID        *string        `db:"driver_id" json:"driver_id,omitempty"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	MassKg          float64        `db:"mass_kg" json:"mass_kg"`
	VolumeM3        float64        `db:"volume_m3" json:"volume_m3"`
	Fragile         bool           `db:"fragile" json:"fragile"`
	CoolingRequired bool           `db:"cooling_required" json:"cooling_required"`
	RideAlong       bool           `db:"ride_along" json:"ride_along"`
	ManPower        int            `db:"man_power" json:"man_power"`
	Price           float64        `db:"price" json:"price"`
	Collateral      float64        `db:"collateral" json:"collateral"`
	PickupAddress   string         `db:"pickup_address" json:"pickup_address"`
	DropoffAddress  string         `db:"dropoff_address" json:"dropoff_address"`
	MoveAt          time.Time      `db:"move_at" json:"move_at"`
	PhotoURLs       pq.StringArray `db:"photo_urls" json:"photo_urls,omitempty"`
	Status          string         `db:"status" json:"status"`
	AcceptedOfferID *string        `db:"accepted_offer_id" json:"accepted_offer_id,omitempty"`
	AcceptedAt      *time.Time     `db:"accepted_at" json:"accepted_at,omitempty"`
	CancelReason    *string        `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

type CreateContractRequest struct {
	RequesterID     string    `json:"requester_id" validate:"required,uuid"`
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	Description     string    `json:"description,omitempty" validate:"max=2000"`
	MassKg          float64   `json:"mass_kg" validate:"required,gt=0"`
	VolumeM3        float64   `json:"volume_m3" validate:"required,gt=0"`
	Fragile         bool      `json:"fragile"`
	CoolingRequired bool      `json:"cooling_required"`
	RideAlong       bool      `json:"ride_along"`
	ManPower        int       `json:"man_power" validate:"gte=0,lte=10"`
	Price           float64   `json:"price" validate:"required,gt=0"`
	Collateral      float64   `json:"collateral" validate:"gte=0"`
	PickupAddress   string    `json:"pickup_address" validate:"required"`
	DropoffAddress  string    `json:"dropoff_address" validate:"required"`
	MoveAt          time.Time `json:"move_at" validate:"required"`
	PhotoURLs       []string  `json:"photo_urls,omitempty" validate:"max=20,dive,url"`
}

type CancelContractRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type ContractResponse struct {
	ID              string        `json:"id"`
	Status          string        `json:"status"`
	RequesterID     string        `json:"requester_id"`
	DriverID        *string       `json:"driver_id,omitempty"`
	Requester       *UserResponse `json:"requester,omitempty"`
	Driver          *UserResponse `json:"driver,omitempty"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	MassKg          float64       `json:"mass_kg"`
	VolumeM3        float64       `json:"volume_m3"`
	Fragile         bool          `json:"fragile"`
	CoolingRequired bool          `json:"cooling_required"`
	RideAlong       bool          `json:"ride_along"`
	ManPower        int           `json:"man_power"`
	Price           float64       `json:"price"`
	Collateral      float64       `json:"collateral"`
	PickupAddress   string        `json:"pickup_address"`
	DropoffAddress  string        `json:"dropoff_address"`
	MoveAt          time.Time     `json:"move_at"`
	PhotoURLs       []string      `json:"photo_urls,omitempty"`
	AcceptedOfferID *string       `json:"accepted_offer_id,omitempty"`
	AcceptedAt      *time.Time    `json:"accepted_at,omitempty"`
	CancelReason    *string       `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (c *Contract) ToResponse() *ContractResponse {
	return &ContractResponse{
		ID:              c.ID,
		Status:          c.Status,
		RequesterID:     c.RequesterID,
		DriverID:        c.DriverID,
		Title:           c.Title,
		Description:     c.Description,
		MassKg:          c.MassKg,
		VolumeM3:        c.VolumeM3,
		Fragile:         c.Fragile,
		CoolingRequired: c.CoolingRequired,
		RideAlong:       c.RideAlong,
		ManPower:        c.ManPower,
		Price:           c.Price,
		Collateral:      c.Collateral,
		PickupAddress:   c.PickupAddress,
		DropoffAddress:  c.DropoffAddress,
		MoveAt:          c.MoveAt,
		PhotoURLs:       []string(c.PhotoURLs),
		AcceptedOfferID: c.AcceptedOfferID,
		AcceptedAt:      c.AcceptedAt,
		CancelReason:    c.CancelReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// CanTransitionTo checks if a contract can transition to a new status
func (c *Contract) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidContractTransitions[c.Status]
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

// IsOpenForOffers reports whether drivers may still bid on the contract.
// The acceptance gate is "requested"; offer creation uses the same gate.
func (c *Contract) IsOpenForOffers() bool {
	return c.Status == ContractStatusRequested
}

// IsActive returns true if the contract is not in a terminal state
func (c *Contract) IsActive() bool {
	return c.Status != ContractStatusFinalized &&
		c.Status != ContractStatusCanceled &&
		c.Status != ContractStatusDeleted
}

func IsValidContractStatus(status string) bool {
	_, ok := ValidContractTransitions[status]
	return ok
}
