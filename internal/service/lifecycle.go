package service

import (
	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/models"
)

// Pure transition validators. Each lifecycle operation first validates
// against the current persisted state, then commits; for cross-entity
// operations both steps run inside one transaction with the contract row
// locked, so the checks here hold at commit time.

// validateAcceptOffer gates the accept transition. The contract must still
// be "requested" — after the first acceptance it no longer is, which is the
// single check preventing two offers winning the same contract.
func validateAcceptOffer(contract *models.Contract, offer *models.Offer) error {
	if offer.IsTerminal() {
		return apperrors.OfferTerminal(offer.Status)
	}
	if contract.Status != models.ContractStatusRequested {
		return apperrors.ContractNotRequested(contract.Status)
	}
	return nil
}

// validateRejectOffer mirrors the accept gate: rejection only makes sense
// while the competition is still open.
func validateRejectOffer(contract *models.Contract, offer *models.Offer) error {
	if offer.IsTerminal() {
		return apperrors.OfferTerminal(offer.Status)
	}
	if contract.Status != models.ContractStatusRequested {
		return apperrors.ContractNotRequested(contract.Status)
	}
	return nil
}

// validateCreateOffer checks the offer-creation invariants given the loaded
// collaborators. existing is the live offer for the (contract, driver) pair,
// or nil.
func validateCreateOffer(contract *models.Contract, driver *models.User, existing *models.Offer) error {
	if !driver.IsDriver() {
		return apperrors.NotADriver()
	}
	if !contract.IsOpenForOffers() {
		return apperrors.ContractNotOpen(contract.Status)
	}
	if existing != nil {
		return apperrors.DuplicateOffer()
	}
	return nil
}

// validateDeleteOffer allows a driver to withdraw a bid only while it is
// still pending.
func validateDeleteOffer(offer *models.Offer) error {
	if offer.Status != models.OfferStatusCreated {
		return apperrors.Forbidden("only a created offer can be deleted")
	}
	return nil
}

// validateContractTransition enforces the contract state machine for the
// single-entity transitions (cancel, complete, finalize, delete).
func validateContractTransition(contract *models.Contract, newStatus string) error {
	if !models.IsValidContractStatus(newStatus) {
		return apperrors.BadRequest("unknown contract status: " + newStatus)
	}
	if !contract.CanTransitionTo(newStatus) {
		return apperrors.InvalidTransition(contract.Status, newStatus)
	}
	return nil
}
