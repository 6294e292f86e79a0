package service

import (
	"context"
	"time"

	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
	"github.com/google/uuid"
)

// In-memory repository fakes. Insertion order is preserved so List results
// stay deterministic, matching the SQL ordering.

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}

type fakeContractRepo struct {
	contracts map[string]*models.Contract
	order     []string
}

func newFakeContractRepo(contracts ...*models.Contract) *fakeContractRepo {
	repo := &fakeContractRepo{contracts: map[string]*models.Contract{}}
	for _, c := range contracts {
		repo.contracts[c.ID] = c
		repo.order = append(repo.order, c.ID)
	}
	return repo
}

func (r *fakeContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}
	contract.Status = models.ContractStatusRequested
	contract.CreatedAt = time.Now()
	contract.UpdatedAt = time.Now()
	r.contracts[contract.ID] = contract
	r.order = append(r.order, contract.ID)
	return nil
}

func (r *fakeContractRepo) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	return r.contracts[id], nil
}

func (r *fakeContractRepo) List(ctx context.Context, filter repository.ContractFilter) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, id := range r.order {
		c := r.contracts[id]
		if filter.RequesterID != nil && c.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.DriverID != nil && (c.DriverID == nil || *c.DriverID != *filter.DriverID) {
			continue
		}
		if filter.Status != nil {
			if c.Status != *filter.Status {
				continue
			}
		} else if c.Status == models.ContractStatusDeleted {
			continue
		}
		if filter.MoveBefore != nil && c.MoveAt.After(*filter.MoveBefore) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeContractRepo) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	c := r.contracts[id]
	if c == nil || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeContractRepo) Cancel(ctx context.Context, id, from, reason string) (bool, error) {
	c := r.contracts[id]
	if c == nil || c.Status != from {
		return false, nil
	}
	c.Status = models.ContractStatusCanceled
	c.CancelReason = &reason
	c.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeContractRepo) MarkDeleted(ctx context.Context, id, from string) (bool, error) {
	return r.UpdateStatus(ctx, id, from, models.ContractStatusDeleted)
}

type fakeOfferRepo struct {
	offers map[string]*models.Offer
	order  []string
}

func newFakeOfferRepo(offers ...*models.Offer) *fakeOfferRepo {
	repo := &fakeOfferRepo{offers: map[string]*models.Offer{}}
	for _, o := range offers {
		repo.offers[o.ID] = o
		repo.order = append(repo.order, o.ID)
	}
	return repo
}

func (r *fakeOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	offer.Status = models.OfferStatusCreated
	offer.CreatedAt = time.Now()
	r.offers[offer.ID] = offer
	r.order = append(r.order, offer.ID)
	return nil
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	return r.offers[id], nil
}

func (r *fakeOfferRepo) GetLiveByContractAndDriver(ctx context.Context, contractID, driverID string) (*models.Offer, error) {
	for _, id := range r.order {
		o := r.offers[id]
		if o.ContractID == contractID && o.DriverID == driverID && o.IsLive() {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOfferRepo) List(ctx context.Context, filter repository.OfferFilter) ([]*models.Offer, error) {
	var out []*models.Offer
	for _, id := range r.order {
		o := r.offers[id]
		if filter.ContractID != nil && o.ContractID != *filter.ContractID {
			continue
		}
		if filter.DriverID != nil && o.DriverID != *filter.DriverID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOfferRepo) byContract(ctx context.Context, contractID string) ([]*models.Offer, error) {
	return r.List(ctx, repository.OfferFilter{ContractID: &contractID})
}

func (r *fakeOfferRepo) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	o := r.offers[id]
	if o == nil || o.Status != from {
		return false, nil
	}
	now := time.Now()
	o.Status = to
	o.RespondedAt = &now
	return true, nil
}

// fakeMatchStore runs acceptance transactions against the in-memory repos.
// Reads hand out copies and writes are staged until Commit, mimicking
// transactional visibility.
type fakeMatchStore struct {
	offers    *fakeOfferRepo
	contracts *fakeContractRepo
}

func (s *fakeMatchStore) Begin(ctx context.Context) (repository.MatchTx, error) {
	return &fakeMatchTx{store: s}, nil
}

type fakeMatchTx struct {
	store     *fakeMatchStore
	staged    []func()
	committed bool
}

func (t *fakeMatchTx) GetOfferForUpdate(ctx context.Context, id string) (*models.Offer, error) {
	o := t.store.offers.offers[id]
	if o == nil {
		return nil, nil
	}
	snapshot := *o
	return &snapshot, nil
}

func (t *fakeMatchTx) GetContractForUpdate(ctx context.Context, id string) (*models.Contract, error) {
	c := t.store.contracts.contracts[id]
	if c == nil {
		return nil, nil
	}
	snapshot := *c
	return &snapshot, nil
}

func (t *fakeMatchTx) MarkOfferResponded(ctx context.Context, id, status string, at time.Time) error {
	t.staged = append(t.staged, func() {
		o := t.store.offers.offers[id]
		o.Status = status
		respondedAt := at
		o.RespondedAt = &respondedAt
	})
	return nil
}

func (t *fakeMatchTx) MarkContractAccepted(ctx context.Context, contractID, offerID, driverID string, at time.Time) error {
	t.staged = append(t.staged, func() {
		c := t.store.contracts.contracts[contractID]
		c.Status = models.ContractStatusAccepted
		acceptedOfferID, acceptedDriverID, acceptedAt := offerID, driverID, at
		c.AcceptedOfferID = &acceptedOfferID
		c.DriverID = &acceptedDriverID
		c.AcceptedAt = &acceptedAt
		c.UpdatedAt = at
	})
	return nil
}

func (t *fakeMatchTx) Commit() error {
	for _, apply := range t.staged {
		apply()
	}
	t.staged = nil
	t.committed = true
	return nil
}

func (t *fakeMatchTx) Rollback() error {
	t.staged = nil
	return nil
}

func testDriver(id string) *models.User {
	return &models.User{
		ID:    id,
		Phone: "9" + id,
		Name:  "driver " + id,
		Role:  models.RoleDriver,
		Driver: &models.DriverProfile{
			LicenseNumber: "DL-" + id,
			VehicleNumber: "KA-01-" + id,
			CapacityKg:    500,
		},
	}
}

func testRequester(id string) *models.User {
	return &models.User{
		ID:        id,
		Phone:     "8" + id,
		Name:      "requester " + id,
		Role:      models.RoleRequester,
		Requester: &models.RequesterProfile{DefaultAddress: "12 Elm St"},
	}
}

func testContract(id, requesterID, status string) *models.Contract {
	return &models.Contract{
		ID:             id,
		RequesterID:    requesterID,
		Title:          "two-bedroom move",
		MassKg:         120,
		Price:          3500,
		PickupAddress:  "12 Elm St",
		DropoffAddress: "80 Oak Ave",
		MoveAt:         time.Now().Add(48 * time.Hour),
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}
