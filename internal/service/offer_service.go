package service

import (
	"context"

	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
)

type OfferService interface {
	CreateOffer(ctx context.Context, req *models.CreateOfferRequest) (*models.Offer, error)
	GetOffer(ctx context.Context, id string) (*models.OfferResponse, error)
	ListOffers(ctx context.Context, filter repository.OfferFilter) ([]*models.OfferResponse, error)
	DeleteOffer(ctx context.Context, id string) error
}

type offerService struct {
	offerRepo    repository.OfferRepository
	contractRepo repository.ContractRepository
	userRepo     repository.UserRepository
}

func NewOfferService(
	offerRepo repository.OfferRepository,
	contractRepo repository.ContractRepository,
	userRepo repository.UserRepository,
) OfferService {
	return &offerService{
		offerRepo:    offerRepo,
		contractRepo: contractRepo,
		userRepo:     userRepo,
	}
}

func (s *offerService) CreateOffer(ctx context.Context, req *models.CreateOfferRequest) (*models.Offer, error) {
	contract, err := s.contractRepo.GetByID(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}
	if contract == nil || contract.Status == models.ContractStatusDeleted {
		return nil, apperrors.NotFound("contract")
	}

	driver, err := s.userRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver")
	}

	existing, err := s.offerRepo.GetLiveByContractAndDriver(ctx, req.ContractID, req.DriverID)
	if err != nil {
		return nil, err
	}

	if err := validateCreateOffer(contract, driver, existing); err != nil {
		return nil, err
	}

	offer := &models.Offer{
		ContractID: req.ContractID,
		DriverID:   req.DriverID,
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	return offer, nil
}

func (s *offerService) GetOffer(ctx context.Context, id string) (*models.OfferResponse, error) {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, apperrors.NotFound("offer")
	}

	response := offer.ToResponse()

	contract, err := s.contractRepo.GetByID(ctx, offer.ContractID)
	if err == nil && contract != nil {
		response.Contract = contract.ToResponse()
	}

	driver, err := s.userRepo.GetByID(ctx, offer.DriverID)
	if err == nil && driver != nil {
		response.Driver = driver.ToResponse()
	}

	return response, nil
}

func (s *offerService) ListOffers(ctx context.Context, filter repository.OfferFilter) ([]*models.OfferResponse, error) {
	if filter.Status != nil && !models.IsValidOfferStatus(*filter.Status) {
		return nil, apperrors.BadRequest("unknown offer status: " + *filter.Status)
	}

	offers, err := s.offerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.OfferResponse, 0, len(offers))
	for _, offer := range offers {
		responses = append(responses, offer.ToResponse())
	}
	return responses, nil
}

// DeleteOffer is a logical transition to "deleted"; the row survives so the
// (contract, driver) history stays queryable. The write is guarded on the
// status the validation saw: if an acceptance commits in between, the guard
// misses and the fresh state decides the error.
func (s *offerService) DeleteOffer(ctx context.Context, id string) error {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if offer == nil {
		return apperrors.NotFound("offer")
	}

	if err := validateDeleteOffer(offer); err != nil {
		return err
	}

	ok, err := s.offerRepo.UpdateStatus(ctx, id, offer.Status, models.OfferStatusDeleted)
	if err != nil {
		return err
	}
	if !ok {
		fresh, err := s.offerRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if fresh == nil {
			return apperrors.NotFound("offer")
		}
		if err := validateDeleteOffer(fresh); err != nil {
			return err
		}
		return apperrors.Conflict("offer status changed, retry")
	}
	return nil
}
