package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/pkg/utils"
	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// userRow is the flat users table shape; role-specific columns are nullable
// and folded into the profile variant on scan.
type userRow struct {
	ID             string    `db:"id"`
	Phone          string    `db:"phone"`
	Name           string    `db:"name"`
	Email          *string   `db:"email"`
	Role           string    `db:"role"`
	LicenseNumber  *string   `db:"license_number"`
	VehicleNumber  *string   `db:"vehicle_number"`
	CapacityKg     *float64  `db:"capacity_kg"`
	DefaultAddress *string   `db:"default_address"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (row *userRow) toUser() *models.User {
	user := &models.User{
		ID:        row.ID,
		Phone:     row.Phone,
		Name:      row.Name,
		Email:     row.Email,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	switch row.Role {
	case models.RoleDriver:
		profile := &models.DriverProfile{}
		if row.LicenseNumber != nil {
			profile.LicenseNumber = *row.LicenseNumber
		}
		if row.VehicleNumber != nil {
			profile.VehicleNumber = *row.VehicleNumber
		}
		if row.CapacityKg != nil {
			profile.CapacityKg = *row.CapacityKg
		}
		user.Driver = profile
	case models.RoleRequester:
		profile := &models.RequesterProfile{}
		if row.DefaultAddress != nil {
			profile.DefaultAddress = *row.DefaultAddress
		}
		user.Requester = profile
	}

	return user
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = utils.GenerateID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	var licenseNumber, vehicleNumber, defaultAddress *string
	var capacityKg *float64
	switch user.Role {
	case models.RoleDriver:
		if user.Driver != nil {
			licenseNumber = &user.Driver.LicenseNumber
			vehicleNumber = &user.Driver.VehicleNumber
			capacityKg = &user.Driver.CapacityKg
		}
	case models.RoleRequester:
		if user.Requester != nil && user.Requester.DefaultAddress != "" {
			defaultAddress = &user.Requester.DefaultAddress
		}
	}

	query := `
		INSERT INTO users (id, phone, name, email, role, license_number, vehicle_number,
			capacity_kg, default_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Phone, user.Name, user.Email, user.Role,
		licenseNumber, vehicleNumber, capacityKg, defaultAddress,
		user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toUser(), nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var row userRow
	query := `SELECT * FROM users WHERE phone = $1`
	err := r.db.GetContext(ctx, &row, query, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toUser(), nil
}
