package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/money"
	"github.com/angelmondragon/estimates-backend/pkg/types"
)

// Invoice is created from an accepted estimate.
type Invoice struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Number       string              `gorm:"column:number;not null;uniqueIndex:uq_invoices_number"`
	Status       enums.InvoiceStatus `gorm:"column:status;type:invoice_status;not null;default:'created'"`
	Date         time.Time           `gorm:"column:date;type:date;not null"`
	EstimateID   *uuid.UUID          `gorm:"column:estimate_id;type:uuid;index"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	OwnerID      *uuid.UUID          `gorm:"column:owner_id;type:uuid"`
	UserVATRegNo *string             `gorm:"column:user_vat_reg_no"`
	Address      types.Address       `gorm:"column:address;type:billing_address_t"`
	TaxType      string              `gorm:"column:tax_type;not null"`
	TaxNote      *string             `gorm:"column:tax_note"`
	Letter       *string             `gorm:"column:letter"`
	Terms        *string             `gorm:"column:terms"`
	Note         *string             `gorm:"column:note"`
	Positions    []InvoicePosition   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Totals collects the total of every position.
func (i Invoice) Totals() money.Prices {
	out := make(money.Prices, 0, len(i.Positions))
	for _, p := range i.Positions {
		out = append(out, p.Total())
	}
	return out
}

// InvoicePosition mirrors EstimatePosition without the optional flag.
type InvoicePosition struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID      uuid.UUID        `gorm:"column:invoice_id;type:uuid;not null;index"`
	UserID         uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Description    string           `gorm:"column:description;not null"`
	Tags           pq.StringArray   `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	Quantity       decimal.Decimal  `gorm:"column:quantity;type:numeric(12,4);not null"`
	Amount         int64            `gorm:"column:amount;not null"`
	AmountCurrency enums.Currency   `gorm:"column:amount_currency;not null"`
	AmountType     enums.AmountType `gorm:"column:amount_type;type:amount_type;not null"`
	AmountRate     decimal.Decimal  `gorm:"column:amount_rate;type:numeric(5,2);not null"`
	TaxType        string           `gorm:"column:tax_type"`
	Sort           int              `gorm:"column:sort;not null;default:0"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *InvoicePosition) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Total is the unit price scaled by quantity.
func (p InvoicePosition) Total() money.Price {
	return money.NewPrice(p.Amount, p.AmountCurrency, p.AmountType, p.AmountRate).Scale(p.Quantity)
}
