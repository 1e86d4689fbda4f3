package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/types"
)

// UserDTO is the transport shape of a customer.
type UserDTO struct {
	ID             uuid.UUID     `json:"id"`
	Number         string        `json:"number"`
	Email          string        `json:"email"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Organization   *string       `json:"organization,omitempty"`
	Role           string        `json:"role"`
	VATRegNo       *string       `json:"vat_reg_no,omitempty"`
	Locale         string        `json:"locale"`
	BillingAddress types.Address `json:"billing_address"`
	IsActive       bool          `json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Number         string        `json:"number" validate:"required"`
	Email          string        `json:"email" validate:"required,email"`
	FirstName      string        `json:"first_name" validate:"required"`
	LastName       string        `json:"last_name" validate:"required"`
	Organization   *string       `json:"organization"`
	Role           string        `json:"role" validate:"omitempty,oneof=customer merchant"`
	VATRegNo       *string       `json:"vat_reg_no"`
	Locale         string        `json:"locale" validate:"omitempty,bcp47_language_tag"`
	BillingAddress types.Address `json:"billing_address"`
	IsActive       *bool         `json:"is_active"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:             u.ID,
		Number:         u.Number,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Organization:   u.Organization,
		Role:           u.Role,
		VATRegNo:       u.VATRegNo,
		Locale:         u.Locale,
		BillingAddress: u.BillingAddress,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	role := c.Role
	if role == "" {
		role = RoleCustomer
	}
	locale := c.Locale
	if locale == "" {
		locale = "en"
	}

	return &models.User{
		Number:         c.Number,
		Email:          strings.ToLower(strings.TrimSpace(c.Email)),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Organization:   c.Organization,
		Role:           role,
		VATRegNo:       c.VATRegNo,
		Locale:         locale,
		BillingAddress: c.BillingAddress,
		IsActive:       isActive,
	}
}
