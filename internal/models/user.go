package models

import (
	"time"
)

// User roles. A user is exactly one of the two; the role selects which
// profile payload is populated.
const (
	RoleDriver    = "driver"
	RoleRequester = "requester"
)

type DriverProfile struct {
	LicenseNumber string  `json:"license_number"`
	VehicleNumber string  `json:"vehicle_number"`
	CapacityKg    float64 `json:"capacity_kg"`
}

type RequesterProfile struct {
	DefaultAddress string `json:"default_address,omitempty"`
}

type User struct {
	ID        string    `db:"id" json:"id"`
	Phone     string    `db:"phone" json:"phone"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Exactly one of these is non-nil, selected by Role.
	Driver    *DriverProfile    `db:"-" json:"driver,omitempty"`
	Requester *RequesterProfile `db:"-" json:"requester,omitempty"`
}

type CreateUserRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=15"`
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Role  string `json:"role" validate:"required,oneof=driver requester"`

	// Driver-only fields
	LicenseNumber string  `json:"license_number,omitempty"`
	VehicleNumber string  `json:"vehicle_number,omitempty"`
	CapacityKg    float64 `json:"capacity_kg,omitempty"`

	// Requester-only fields
	DefaultAddress string `json:"default_address,omitempty"`
}

type UserResponse struct {
	ID        string            `json:"id"`
	Phone     string            `json:"phone"`
	Name      string            `json:"name"`
	Email     *string           `json:"email,omitempty"`
	Role      string            `json:"role"`
	Driver    *DriverProfile    `json:"driver,omitempty"`
	Requester *RequesterProfile `json:"requester,omitempty"`
}

func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}

func (u *User) IsRequester() bool {
	return u.Role == RoleRequester
}

func IsValidRole(role string) bool {
	return role == RoleDriver || role == RoleRequester
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Phone:     u.Phone,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Driver:    u.Driver,
		Requester: u.Requester,
	}
}
