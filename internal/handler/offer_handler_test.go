package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/middleware"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fakeOfferService struct {
	offers    map[string]*models.OfferResponse
	createErr error
	deleteErr error
	deleted   []string
}

func (s *fakeOfferService) CreateOffer(ctx context.Context, req *models.CreateOfferRequest) (*models.Offer, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Offer{
		ID:         uuid.New().String(),
		ContractID: req.ContractID,
		DriverID:   req.DriverID,
		Status:     models.OfferStatusCreated,
	}, nil
}

func (s *fakeOfferService) GetOffer(ctx context.Context, id string) (*models.OfferResponse, error) {
	offer, ok := s.offers[id]
	if !ok {
		return nil, apperrors.NotFound("offer")
	}
	return offer, nil
}

func (s *fakeOfferService) ListOffers(ctx context.Context, filter repository.OfferFilter) ([]*models.OfferResponse, error) {
	out := []*models.OfferResponse{}
	for _, offer := range s.offers {
		if filter.ContractID != nil && offer.ContractID != *filter.ContractID {
			continue
		}
		out = append(out, offer)
	}
	return out, nil
}

func (s *fakeOfferService) DeleteOffer(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.offers[id]; !ok {
		return apperrors.NotFound("offer")
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type fakeMatchingService struct {
	resp *models.OfferResponse
	err  error
}

func (s *fakeMatchingService) AcceptOffer(ctx context.Context, offerID string) (*models.OfferResponse, error) {
	return s.resp, s.err
}

func (s *fakeMatchingService) RejectOffer(ctx context.Context, offerID string) (*models.OfferResponse, error) {
	return s.resp, s.err
}

func (s *fakeMatchingService) SetOfferStatus(ctx context.Context, offerID, newStatus string) (*models.OfferResponse, error) {
	return s.resp, s.err
}

func newOfferRouter(offerSvc *fakeOfferService, matchingSvc *fakeMatchingService, principal *models.User) http.Handler {
	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithPrincipal(req.Context(), principal)))
			})
		})
	}
	NewOfferHandler(offerSvc, matchingSvc).RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateOfferHandler(t *testing.T) {
	contractID := uuid.New().String()
	driverID := uuid.New().String()

	t.Run("created", func(t *testing.T) {
		router := newOfferRouter(&fakeOfferService{}, &fakeMatchingService{}, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers", models.CreateOfferRequest{
			ContractID: contractID,
			DriverID:   driverID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}
		var resp models.OfferResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != models.OfferStatusCreated {
			t.Errorf("offer status = %q, want created", resp.Status)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newOfferRouter(&fakeOfferService{}, &fakeMatchingService{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/offers", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("non-uuid ids", func(t *testing.T) {
		router := newOfferRouter(&fakeOfferService{}, &fakeMatchingService{}, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers", models.CreateOfferRequest{
			ContractID: "c1",
			DriverID:   "d1",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bidding for another driver", func(t *testing.T) {
		principal := &models.User{ID: uuid.New().String(), Role: models.RoleDriver}
		router := newOfferRouter(&fakeOfferService{}, &fakeMatchingService{}, principal)
		rec := doRequest(t, router, http.MethodPost, "/offers", models.CreateOfferRequest{
			ContractID: contractID,
			DriverID:   driverID,
		})
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("requester principal cannot bid", func(t *testing.T) {
		principal := &models.User{ID: driverID, Role: models.RoleRequester}
		router := newOfferRouter(&fakeOfferService{}, &fakeMatchingService{}, principal)
		rec := doRequest(t, router, http.MethodPost, "/offers", models.CreateOfferRequest{
			ContractID: contractID,
			DriverID:   driverID,
		})
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("duplicate offer", func(t *testing.T) {
		router := newOfferRouter(&fakeOfferService{createErr: apperrors.DuplicateOffer()}, &fakeMatchingService{}, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers", models.CreateOfferRequest{
			ContractID: contractID,
			DriverID:   driverID,
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("contract not open", func(t *testing.T) {
		router := newOfferRouter(&fakeOfferService{createErr: apperrors.ContractNotOpen(models.ContractStatusAccepted)}, &fakeMatchingService{}, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers", models.CreateOfferRequest{
			ContractID: contractID,
			DriverID:   driverID,
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestGetOfferHandler(t *testing.T) {
	offerID := uuid.New().String()
	svc := &fakeOfferService{offers: map[string]*models.OfferResponse{
		offerID: {ID: offerID, Status: models.OfferStatusCreated},
	}}
	router := newOfferRouter(svc, &fakeMatchingService{}, nil)

	rec := doRequest(t, router, http.MethodGet, "/offers/"+offerID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp models.OfferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != offerID {
		t.Errorf("id = %q, want %q", resp.ID, offerID)
	}

	rec = doRequest(t, router, http.MethodGet, "/offers/"+uuid.New().String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteOfferHandler(t *testing.T) {
	offerID := uuid.New().String()
	driverID := uuid.New().String()

	newSvc := func() *fakeOfferService {
		return &fakeOfferService{offers: map[string]*models.OfferResponse{
			offerID: {ID: offerID, DriverID: driverID, Status: models.OfferStatusCreated},
		}}
	}

	t.Run("withdrawn", func(t *testing.T) {
		svc := newSvc()
		router := newOfferRouter(svc, &fakeMatchingService{}, &models.User{ID: driverID, Role: models.RoleDriver})
		rec := doRequest(t, router, http.MethodDelete, "/offers/"+offerID, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204, body %s", rec.Code, rec.Body.String())
		}
		if len(svc.deleted) != 1 || svc.deleted[0] != offerID {
			t.Error("offer not deleted")
		}
	})

	t.Run("not the offering driver", func(t *testing.T) {
		router := newOfferRouter(newSvc(), &fakeMatchingService{}, &models.User{ID: uuid.New().String(), Role: models.RoleDriver})
		rec := doRequest(t, router, http.MethodDelete, "/offers/"+offerID, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("terminal offer", func(t *testing.T) {
		svc := newSvc()
		svc.deleteErr = apperrors.Forbidden("only a created offer can be deleted")
		router := newOfferRouter(svc, &fakeMatchingService{}, nil)
		rec := doRequest(t, router, http.MethodDelete, "/offers/"+offerID, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}

func TestUpdateOfferStatusHandler(t *testing.T) {
	offerID := uuid.New().String()

	t.Run("accepted", func(t *testing.T) {
		matching := &fakeMatchingService{resp: &models.OfferResponse{ID: offerID, Status: models.OfferStatusAccepted}}
		router := newOfferRouter(&fakeOfferService{}, matching, nil)
		rec := doRequest(t, router, http.MethodPut, "/offers/"+offerID+"/status", models.UpdateOfferStatusRequest{
			Status: models.OfferStatusAccepted,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp models.OfferResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != models.OfferStatusAccepted {
			t.Errorf("offer status = %q, want accepted", resp.Status)
		}
	})

	t.Run("status missing", func(t *testing.T) {
		router := newOfferRouter(&fakeOfferService{}, &fakeMatchingService{}, nil)
		rec := doRequest(t, router, http.MethodPut, "/offers/"+offerID+"/status", map[string]string{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("terminal offer", func(t *testing.T) {
		matching := &fakeMatchingService{err: apperrors.OfferTerminal(models.OfferStatusRejected)}
		router := newOfferRouter(&fakeOfferService{}, matching, nil)
		rec := doRequest(t, router, http.MethodPut, "/offers/"+offerID+"/status", models.UpdateOfferStatusRequest{
			Status: models.OfferStatusAccepted,
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		matching := &fakeMatchingService{err: apperrors.BadRequest("unknown offer status: pending")}
		router := newOfferRouter(&fakeOfferService{}, matching, nil)
		rec := doRequest(t, router, http.MethodPut, "/offers/"+offerID+"/status", models.UpdateOfferStatusRequest{
			Status: "pending",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAcceptOfferHandler(t *testing.T) {
	offerID := uuid.New().String()
	requesterID := uuid.New().String()
	contractID := uuid.New().String()

	offerWithContract := &models.OfferResponse{
		ID:         offerID,
		ContractID: contractID,
		Status:     models.OfferStatusCreated,
		Contract:   &models.ContractResponse{ID: contractID, RequesterID: requesterID},
	}

	t.Run("accepted", func(t *testing.T) {
		svc := &fakeOfferService{offers: map[string]*models.OfferResponse{offerID: offerWithContract}}
		matching := &fakeMatchingService{resp: &models.OfferResponse{ID: offerID, Status: models.OfferStatusAccepted}}
		router := newOfferRouter(svc, matching, &models.User{ID: requesterID, Role: models.RoleRequester})
		rec := doRequest(t, router, http.MethodPost, "/offers/"+offerID+"/accept", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("not the contract requester", func(t *testing.T) {
		svc := &fakeOfferService{offers: map[string]*models.OfferResponse{offerID: offerWithContract}}
		router := newOfferRouter(svc, &fakeMatchingService{}, &models.User{ID: uuid.New().String(), Role: models.RoleRequester})
		rec := doRequest(t, router, http.MethodPost, "/offers/"+offerID+"/accept", nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("contract no longer requested", func(t *testing.T) {
		matching := &fakeMatchingService{err: apperrors.ContractNotRequested(models.ContractStatusAccepted)}
		router := newOfferRouter(&fakeOfferService{}, matching, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers/"+offerID+"/accept", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("offer not found", func(t *testing.T) {
		matching := &fakeMatchingService{err: apperrors.NotFound("offer")}
		router := newOfferRouter(&fakeOfferService{}, matching, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers/"+offerID+"/accept", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestRejectOfferHandler(t *testing.T) {
	offerID := uuid.New().String()

	t.Run("rejected", func(t *testing.T) {
		matching := &fakeMatchingService{resp: &models.OfferResponse{ID: offerID, Status: models.OfferStatusRejected}}
		router := newOfferRouter(&fakeOfferService{}, matching, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers/"+offerID+"/reject", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("terminal offer", func(t *testing.T) {
		matching := &fakeMatchingService{err: apperrors.OfferTerminal(models.OfferStatusAccepted)}
		router := newOfferRouter(&fakeOfferService{}, matching, nil)
		rec := doRequest(t, router, http.MethodPost, "/offers/"+offerID+"/reject", nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestListOffersHandler(t *testing.T) {
	contractID := uuid.New().String()
	svc := &fakeOfferService{offers: map[string]*models.OfferResponse{
		"o1": {ID: "o1", ContractID: contractID, Status: models.OfferStatusCreated},
		"o2": {ID: "o2", ContractID: uuid.New().String(), Status: models.OfferStatusCreated},
	}}
	router := newOfferRouter(svc, &fakeMatchingService{}, nil)

	rec := doRequest(t, router, http.MethodGet, "/offers?contract_id="+contractID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Offers []*models.OfferResponse `json:"offers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Offers) != 1 || resp.Offers[0].ID != "o1" {
		t.Errorf("got %d offers, want the one for the contract", len(resp.Offers))
	}
}
