package service

import (
	"context"
	"time"

	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
)

// MatchingService is the coordinator for the operations that cross the
// contract/offer boundary. Accepting an offer must flip both aggregates as
// one atomic unit, so it runs inside a transaction with both rows locked and
// the "contract is still requested" gate re-checked under the lock.
type MatchingService interface {
	AcceptOffer(ctx context.Context, offerID string) (*models.OfferResponse, error)
	RejectOffer(ctx context.Context, offerID string) (*models.OfferResponse, error)
	SetOfferStatus(ctx context.Context, offerID, newStatus string) (*models.OfferResponse, error)
}

type matchingService struct {
	store        repository.MatchStore
	offerRepo    repository.OfferRepository
	userRepo     repository.UserRepository
	offerService OfferService
}

func NewMatchingService(
	store repository.MatchStore,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
	offerService OfferService,
) MatchingService {
	return &matchingService{
		store:        store,
		offerRepo:    offerRepo,
		userRepo:     userRepo,
		offerService: offerService,
	}
}

func (s *matchingService) AcceptOffer(ctx context.Context, offerID string) (*models.OfferResponse, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Lock order is offer then contract, same as RejectOffer, so two
	// concurrent calls on offers of one contract serialize on the
	// contract row without deadlocking.
	offer, err := tx.GetOfferForUpdate(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperrors.NotFound("offer")
	}

	contract, err := tx.GetContractForUpdate(ctx, offer.ContractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, apperrors.NotFound("contract")
	}

	if err := validateAcceptOffer(contract, offer); err != nil {
		return nil, err
	}

	now := time.Now()

	if err := tx.MarkOfferResponded(ctx, offer.ID, models.OfferStatusAccepted, now); err != nil {
		return nil, err
	}
	if err := tx.MarkContractAccepted(ctx, contract.ID, offer.ID, offer.DriverID, now); err != nil {
		return nil, err
	}

	// Sibling offers deliberately stay "created": the contract is no longer
	// "requested", so none of them can ever be accepted or rejected.

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	offer.Status = models.OfferStatusAccepted
	offer.RespondedAt = &now
	contract.Status = models.ContractStatusAccepted
	contract.AcceptedOfferID = &offer.ID
	contract.DriverID = &offer.DriverID
	contract.AcceptedAt = &now

	return s.buildResponse(ctx, offer, contract), nil
}

func (s *matchingService) RejectOffer(ctx context.Context, offerID string) (*models.OfferResponse, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	offer, err := tx.GetOfferForUpdate(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperrors.NotFound("offer")
	}

	// The contract row is locked even though rejection does not change it:
	// the "still requested" gate must hold at commit time.
	contract, err := tx.GetContractForUpdate(ctx, offer.ContractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, apperrors.NotFound("contract")
	}

	if err := validateRejectOffer(contract, offer); err != nil {
		return nil, err
	}

	now := time.Now()

	if err := tx.MarkOfferResponded(ctx, offer.ID, models.OfferStatusRejected, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	offer.Status = models.OfferStatusRejected
	offer.RespondedAt = &now

	return s.buildResponse(ctx, offer, contract), nil
}

// SetOfferStatus is the generic transition entry point behind
// PUT /offers/{id}/status. Cross-entity transitions route through the
// coordinator paths; withdrawal stays in the offer lifecycle manager. Every
// disallowed transition surfaces as a conflict here, unlike the withdrawal
// endpoint proper which answers with forbidden.
func (s *matchingService) SetOfferStatus(ctx context.Context, offerID, newStatus string) (*models.OfferResponse, error) {
	switch newStatus {
	case models.OfferStatusAccepted:
		return s.AcceptOffer(ctx, offerID)
	case models.OfferStatusRejected:
		return s.RejectOffer(ctx, offerID)
	case models.OfferStatusDeleted:
		offer, err := s.offerRepo.GetByID(ctx, offerID)
		if err != nil {
			return nil, err
		}
		if offer == nil {
			return nil, apperrors.NotFound("offer")
		}
		if offer.IsTerminal() {
			return nil, apperrors.OfferTerminal(offer.Status)
		}
		if err := s.offerService.DeleteOffer(ctx, offerID); err != nil {
			return nil, err
		}
		return s.offerService.GetOffer(ctx, offerID)
	case models.OfferStatusCreated:
		// No transition re-enters "created", including created -> created.
		offer, err := s.offerRepo.GetByID(ctx, offerID)
		if err != nil {
			return nil, err
		}
		if offer == nil {
			return nil, apperrors.NotFound("offer")
		}
		if offer.IsTerminal() {
			return nil, apperrors.OfferTerminal(offer.Status)
		}
		return nil, apperrors.InvalidTransition(offer.Status, newStatus)
	default:
		return nil, apperrors.BadRequest("unknown offer status: " + newStatus)
	}
}

func (s *matchingService) buildResponse(ctx context.Context, offer *models.Offer, contract *models.Contract) *models.OfferResponse {
	response := offer.ToResponse()
	response.Contract = contract.ToResponse()

	driver, err := s.userRepo.GetByID(ctx, offer.DriverID)
	if err == nil && driver != nil {
		response.Driver = driver.ToResponse()
	}

	return response
}
