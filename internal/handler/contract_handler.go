package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

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

type ContractHandler struct {
	contractService service.ContractService
	validate        *validator.Validate
}

func NewContractHandler(contractService service.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		validate:        validator.New(),
	}
}

func (h *ContractHandler) RegisterRoutes(r chi.Router) {
	r.Get("/contracts", h.ListContracts)
	r.Post("/contracts", h.CreateContract)
	r.Get("/contracts/{id}", h.GetContract)
	r.Post("/contracts/{id}/cancel", h.CancelContract)
	r.Post("/contracts/{id}/complete", h.CompleteContract)
	r.Post("/contracts/{id}/finalize", h.FinalizeContract)
	r.Delete("/contracts/{id}", h.DeleteContract)
}

// GET /v1/contracts?requester_id&driver_id&status&move_before
func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ContractFilter{}
	if v := r.URL.Query().Get("requester_id"); v != "" {
		filter.RequesterID = &v
	}
	if v := r.URL.Query().Get("driver_id"); v != "" {
		filter.DriverID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	if v := r.URL.Query().Get("move_before"); v != "" {
		cutoff, err := time.Parse(time.RFC3339, v)
		if err != nil {
			utils.BadRequest(w, "move_before must be RFC 3339")
			return
		}
		filter.MoveBefore = &cutoff
	}

	contracts, err := h.contractService.ListContracts(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]interface{}{
		"contracts": contracts,
	})
}

// POST /v1/contracts
func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		if !identity.IsRequester(p) {
			utils.Forbidden(w, "only requesters can post contracts")
			return
		}
		if p.ID != req.RequesterID {
			utils.Forbidden(w, "cannot create a contract for another requester")
			return
		}
	}

	contract, err := h.contractService.CreateContract(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, contract.ToResponse())
}

// GET /v1/contracts/{id}
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "contract id must be a uuid")
		return
	}

	contract, err := h.contractService.GetContract(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, contract)
}

// POST /v1/contracts/{id}/cancel
func (h *ContractHandler) CancelContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "contract id must be a uuid")
		return
	}

	var req models.CancelContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.requireRequester(r, id); err != nil {
		handleError(w, err)
		return
	}

	if err := h.contractService.CancelContract(r.Context(), id, &req); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{
		"status":  models.ContractStatusCanceled,
		"message": "contract canceled",
	})
}

// POST /v1/contracts/{id}/complete
func (h *ContractHandler) CompleteContract(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, models.ContractStatusCompleted, h.contractService.CompleteContract)
}

// POST /v1/contracts/{id}/finalize
func (h *ContractHandler) FinalizeContract(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, models.ContractStatusFinalized, h.contractService.FinalizeContract)
}

func (h *ContractHandler) advance(w http.ResponseWriter, r *http.Request, status string, op func(ctx context.Context, id string) error) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "contract id must be a uuid")
		return
	}

	if err := h.requireRequester(r, id); err != nil {
		handleError(w, err)
		return
	}

	if err := op(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{
		"status": status,
	})
}

// DELETE /v1/contracts/{id}
func (h *ContractHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "contract id must be a uuid")
		return
	}

	if err := h.contractService.DeleteContract(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	utils.NoContent(w)
}

func (h *ContractHandler) requireRequester(r *http.Request, contractID string) error {
	p := middleware.PrincipalFrom(r.Context())
	if p == nil {
		return nil
	}

	contract, err := h.contractService.GetContract(r.Context(), contractID)
	if err != nil {
		return err
	}
	if contract.RequesterID != p.ID {
		return apperrors.Forbidden("only the contract requester can do this")
	}
	return nil
}
