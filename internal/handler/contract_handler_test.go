package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/artemk/movebid/internal/middleware"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fakeContractService struct {
	created *models.Contract
}

func (s *fakeContractService) CreateContract(ctx context.Context, req *models.CreateContractRequest) (*models.Contract, error) {
	s.created = &models.Contract{
		ID:          uuid.New().String(),
		RequesterID: req.RequesterID,
		Status:      models.ContractStatusRequested,
	}
	return s.created, nil
}

func (s *fakeContractService) GetContract(ctx context.Context, id string) (*models.ContractResponse, error) {
	return nil, nil
}

func (s *fakeContractService) ListContracts(ctx context.Context, filter repository.ContractFilter) ([]*models.ContractResponse, error) {
	return nil, nil
}

func (s *fakeContractService) CancelContract(ctx context.Context, id string, req *models.CancelContractRequest) error {
	return nil
}

func (s *fakeContractService) CompleteContract(ctx context.Context, id string) error { return nil }
func (s *fakeContractService) FinalizeContract(ctx context.Context, id string) error { return nil }
func (s *fakeContractService) DeleteContract(ctx context.Context, id string) error   { return nil }

func newContractRouter(svc *fakeContractService, principal *models.User) http.Handler {
	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithPrincipal(req.Context(), principal)))
			})
		})
	}
	NewContractHandler(svc).RegisterRoutes(r)
	return r
}

func validCreateContractRequest(requesterID string) models.CreateContractRequest {
	return models.CreateContractRequest{
		RequesterID:    requesterID,
		Title:          "two-bedroom move",
		MassKg:         120,
		VolumeM3:       8,
		Price:          3500,
		PickupAddress:  "12 Elm St",
		DropoffAddress: "80 Oak Ave",
		MoveAt:         time.Now().Add(48 * time.Hour),
	}
}

func TestCreateContractHandler(t *testing.T) {
	requesterID := uuid.New().String()

	t.Run("created", func(t *testing.T) {
		principal := &models.User{ID: requesterID, Role: models.RoleRequester}
		router := newContractRouter(&fakeContractService{}, principal)
		rec := doRequest(t, router, http.MethodPost, "/contracts", validCreateContractRequest(requesterID))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("posting for another requester", func(t *testing.T) {
		principal := &models.User{ID: uuid.New().String(), Role: models.RoleRequester}
		router := newContractRouter(&fakeContractService{}, principal)
		rec := doRequest(t, router, http.MethodPost, "/contracts", validCreateContractRequest(requesterID))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("driver principal cannot post", func(t *testing.T) {
		svc := &fakeContractService{}
		principal := &models.User{ID: requesterID, Role: models.RoleDriver}
		router := newContractRouter(svc, principal)
		rec := doRequest(t, router, http.MethodPost, "/contracts", validCreateContractRequest(requesterID))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
		if svc.created != nil {
			t.Error("contract created despite the role gate")
		}
	})
}
