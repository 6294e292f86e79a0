package service

import (
	"context"

	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
	"github.com/lib/pq"
)

type ContractService interface {
	CreateContract(ctx context.Context, req *models.CreateContractRequest) (*models.Contract, error)
	GetContract(ctx context.Context, id string) (*models.ContractResponse, error)
	ListContracts(ctx context.Context, filter repository.ContractFilter) ([]*models.ContractResponse, error)
	CancelContract(ctx context.Context, id string, req *models.CancelContractRequest) error
	CompleteContract(ctx context.Context, id string) error
	FinalizeContract(ctx context.Context, id string) error
	DeleteContract(ctx context.Context, id string) error
}

type contractService struct {
	contractRepo repository.ContractRepository
	offerRepo    repository.OfferRepository
	userRepo     repository.UserRepository
}

func NewContractService(
	contractRepo repository.ContractRepository,
	offerRepo repository.OfferRepository,
	userRepo repository.UserRepository,
) ContractService {
	return &contractService{
		contractRepo: contractRepo,
		offerRepo:    offerRepo,
		userRepo:     userRepo,
	}
}

func (s *contractService) CreateContract(ctx context.Context, req *models.CreateContractRequest) (*models.Contract, error) {
	requester, err := s.userRepo.GetByID(ctx, req.RequesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, apperrors.NotFound("requester")
	}
	if !requester.IsRequester() {
		return nil, apperrors.NotARequester()
	}

	contract := &models.Contract{
		RequesterID:     req.RequesterID,
		Title:           req.Title,
		Description:     req.Description,
		MassKg:          req.MassKg,
		VolumeM3:        req.VolumeM3,
		Fragile:         req.Fragile,
		CoolingRequired: req.CoolingRequired,
		RideAlong:       req.RideAlong,
		ManPower:        req.ManPower,
		Price:           req.Price,
		Collateral:      req.Collateral,
		PickupAddress:   req.PickupAddress,
		DropoffAddress:  req.DropoffAddress,
		MoveAt:          req.MoveAt,
		PhotoURLs:       pq.StringArray(req.PhotoURLs),
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}

	return contract, nil
}

func (s *contractService) GetContract(ctx context.Context, id string) (*models.ContractResponse, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, apperrors.NotFound("contract")
	}

	response := contract.ToResponse()

	requester, err := s.userRepo.GetByID(ctx, contract.RequesterID)
	if err == nil && requester != nil {
		response.Requester = requester.ToResponse()
	}

	if contract.DriverID != nil {
		driver, err := s.userRepo.GetByID(ctx, *contract.DriverID)
		if err == nil && driver != nil {
			response.Driver = driver.ToResponse()
		}
	}

	return response, nil
}

func (s *contractService) ListContracts(ctx context.Context, filter repository.ContractFilter) ([]*models.ContractResponse, error) {
	if filter.Status != nil && !models.IsValidContractStatus(*filter.Status) {
		return nil, apperrors.BadRequest("unknown contract status: " + *filter.Status)
	}

	contracts, err := s.contractRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ContractResponse, 0, len(contracts))
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}
	return responses, nil
}

func (s *contractService) CancelContract(ctx context.Context, id string, req *models.CancelContractRequest) error {
	contract, err := s.loadContract(ctx, id)
	if err != nil {
		return err
	}

	if err := validateContractTransition(contract, models.ContractStatusCanceled); err != nil {
		return err
	}

	ok, err := s.contractRepo.Cancel(ctx, id, contract.Status, req.Reason)
	if err != nil {
		return err
	}
	if !ok {
		return s.transitionConflict(ctx, id, models.ContractStatusCanceled)
	}
	return nil
}

func (s *contractService) CompleteContract(ctx context.Context, id string) error {
	return s.advance(ctx, id, models.ContractStatusCompleted)
}

func (s *contractService) FinalizeContract(ctx context.Context, id string) error {
	return s.advance(ctx, id, models.ContractStatusFinalized)
}

// DeleteContract is the administrative soft delete; valid from any live
// state, never a physical removal.
func (s *contractService) DeleteContract(ctx context.Context, id string) error {
	contract, err := s.loadContract(ctx, id)
	if err != nil {
		return err
	}

	if err := validateContractTransition(contract, models.ContractStatusDeleted); err != nil {
		return err
	}

	ok, err := s.contractRepo.MarkDeleted(ctx, id, contract.Status)
	if err != nil {
		return err
	}
	if !ok {
		return s.transitionConflict(ctx, id, models.ContractStatusDeleted)
	}
	return nil
}

// advance validates the transition against the loaded row, then writes
// guarded on the status that validation saw. A concurrent acceptance flips
// the row in between, the guard misses and the fresh state decides the
// error, so the state machine holds at commit time without a row lock.
func (s *contractService) advance(ctx context.Context, id, newStatus string) error {
	contract, err := s.loadContract(ctx, id)
	if err != nil {
		return err
	}

	if err := validateContractTransition(contract, newStatus); err != nil {
		return err
	}

	ok, err := s.contractRepo.UpdateStatus(ctx, id, contract.Status, newStatus)
	if err != nil {
		return err
	}
	if !ok {
		return s.transitionConflict(ctx, id, newStatus)
	}
	return nil
}

// transitionConflict builds the error for a guarded write that missed:
// re-read the row and let the fresh state explain the failure.
func (s *contractService) transitionConflict(ctx context.Context, id, newStatus string) error {
	fresh, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fresh == nil {
		return apperrors.NotFound("contract")
	}
	if err := validateContractTransition(fresh, newStatus); err != nil {
		return err
	}
	return apperrors.Conflict("contract status changed, retry")
}

func (s *contractService) loadContract(ctx context.Context, id string) (*models.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, apperrors.NotFound("contract")
	}
	return contract, nil
}
