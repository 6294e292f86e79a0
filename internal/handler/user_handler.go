package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
	"github.com/artemk/movebid/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// UserHandler covers the thin user surface the marketplace needs for the
// driver-role check and ownership checks. Registration flows proper live in
// the external identity service.
type UserHandler struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
	r.Get("/users/{id}", h.GetUser)
}

// POST /v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	existing, err := h.userRepo.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		handleError(w, err)
		return
	}
	if existing != nil {
		utils.Error(w, apperrors.Conflict("user with this phone already exists"))
		return
	}

	user := &models.User{
		Phone: req.Phone,
		Name:  req.Name,
		Role:  req.Role,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	switch req.Role {
	case models.RoleDriver:
		if req.LicenseNumber == "" || req.VehicleNumber == "" {
			utils.BadRequest(w, "license_number and vehicle_number are required for drivers")
			return
		}
		user.Driver = &models.DriverProfile{
			LicenseNumber: req.LicenseNumber,
			VehicleNumber: req.VehicleNumber,
			CapacityKg:    req.CapacityKg,
		}
	case models.RoleRequester:
		user.Requester = &models.RequesterProfile{
			DefaultAddress: req.DefaultAddress,
		}
	}

	if err := h.userRepo.Create(r.Context(), user); err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, user.ToResponse())
}

// GET /v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "user id must be a uuid")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if user == nil {
		utils.NotFound(w, "user")
		return
	}

	utils.Success(w, http.StatusOK, user.ToResponse())
}
