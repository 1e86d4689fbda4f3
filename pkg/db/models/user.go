package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/pkg/types"
)

// User is the customer an estimate is addressed to.
type User struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Number         string        `gorm:"column:number;not null;uniqueIndex"`
	Email          string        `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName      string        `gorm:"column:first_name;not null"`
	LastName       string        `gorm:"column:last_name;not null"`
	Organization   *string       `gorm:"column:organization"`
	Role           string        `gorm:"column:role;not null;default:'customer'"`
	VATRegNo       *string       `gorm:"column:vat_reg_no"`
	Locale         string        `gorm:"column:locale;not null;default:'en'"`
	BillingAddress types.Address `gorm:"column:billing_address;type:billing_address_t"`
	IsActive       bool          `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Name joins first and last name.
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
