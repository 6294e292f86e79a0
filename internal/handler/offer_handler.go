package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/identity"
	"github.com/artemk/movebid/internal/middleware"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
	"github.com/artemk/movebid/internal/service"
	"github.com/artemk/movebid/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OfferHandler struct {
	offerService    service.OfferService
	matchingService service.MatchingService
	validate        *validator.Validate
}

func NewOfferHandler(offerService service.OfferService, matchingService service.MatchingService) *OfferHandler {
	return &OfferHandler{
		offerService:    offerService,
		matchingService: matchingService,
		validate:        validator.New(),
	}
}

func (h *OfferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/offers", h.ListOffers)
	r.Post("/offers", h.CreateOffer)
	r.Get("/offers/{id}", h.GetOffer)
	r.Delete("/offers/{id}", h.DeleteOffer)
	r.Put("/offers/{id}/status", h.UpdateOfferStatus)
	r.Post("/offers/{id}/accept", h.AcceptOffer)
	r.Post("/offers/{id}/reject", h.RejectOffer)
}

// GET /v1/offers?contract_id&driver_id&status
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	filter := repository.OfferFilter{}
	if v := r.URL.Query().Get("contract_id"); v != "" {
		filter.ContractID = &v
	}
	if v := r.URL.Query().Get("driver_id"); v != "" {
		filter.DriverID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	offers, err := h.offerService.ListOffers(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]interface{}{
		"offers": offers,
	})
}

// POST /v1/offers
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	// A driver may only bid as themselves.
	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		if !identity.IsDriver(p) {
			utils.Forbidden(w, "only drivers can create offers")
			return
		}
		if p.ID != req.DriverID {
			utils.Forbidden(w, "cannot create an offer for another driver")
			return
		}
	}

	offer, err := h.offerService.CreateOffer(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, offer.ToResponse())
}

// GET /v1/offers/{id}
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "offer id must be a uuid")
		return
	}

	offer, err := h.offerService.GetOffer(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, offer)
}

// DELETE /v1/offers/{id}
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "offer id must be a uuid")
		return
	}

	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		offer, err := h.offerService.GetOffer(r.Context(), id)
		if err != nil {
			handleError(w, err)
			return
		}
		if offer.DriverID != p.ID {
			utils.Forbidden(w, "only the offering driver can withdraw this offer")
			return
		}
	}

	if err := h.offerService.DeleteOffer(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	utils.NoContent(w)
}

// PUT /v1/offers/{id}/status
func (h *OfferHandler) UpdateOfferStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "offer id must be a uuid")
		return
	}

	var req models.UpdateOfferStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, "status is required")
		return
	}

	offer, err := h.matchingService.SetOfferStatus(r.Context(), id, req.Status)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, offer)
}

// POST /v1/offers/{id}/accept
func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "offer id must be a uuid")
		return
	}

	if err := h.requireContractOwner(r, id); err != nil {
		handleError(w, err)
		return
	}

	offer, err := h.matchingService.AcceptOffer(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, offer)
}

// POST /v1/offers/{id}/reject
func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "offer id must be a uuid")
		return
	}

	if err := h.requireContractOwner(r, id); err != nil {
		handleError(w, err)
		return
	}

	offer, err := h.matchingService.RejectOffer(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, offer)
}

// requireContractOwner checks that the authenticated user, if any, owns the
// contract the offer targets. The lifecycle gate itself is re-checked later
// under the row lock.
func (h *OfferHandler) requireContractOwner(r *http.Request, offerID string) error {
	p := middleware.PrincipalFrom(r.Context())
	if p == nil {
		return nil
	}

	offer, err := h.offerService.GetOffer(r.Context(), offerID)
	if err != nil {
		return err
	}
	if offer.Contract == nil || offer.Contract.RequesterID != p.ID {
		return apperrors.Forbidden("only the contract requester can respond to offers")
	}
	return nil
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*apperrors.APIError); ok {
		utils.Error(w, apiErr)
		return
	}

	switch err {
	case apperrors.ErrNotFound:
		utils.Error(w, apperrors.NotFound("resource"))
	case apperrors.ErrConflict, apperrors.ErrInvalidTransition, apperrors.ErrOfferTerminal, apperrors.ErrOfferAlreadyExists:
		utils.Error(w, apperrors.Conflict(err.Error()))
	case apperrors.ErrBadRequest, apperrors.ErrNotADriver, apperrors.ErrNotARequester:
		utils.Error(w, apperrors.BadRequest(err.Error()))
	case apperrors.ErrForbidden:
		utils.Error(w, apperrors.Forbidden(err.Error()))
	case apperrors.ErrUnauthorized:
		utils.Error(w, apperrors.Unauthorized(err.Error()))
	default:
		utils.InternalError(w, "internal server error")
	}
}
