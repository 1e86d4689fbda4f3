package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/money"
	"github.com/angelmondragon/estimates-backend/pkg/types"
)

// Estimate is a quote sent to a user. Address, tax and VAT fields are
// snapshots taken when the estimate was created.
type Estimate struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Number       string               `gorm:"column:number;not null;uniqueIndex:uq_estimates_number"`
	Status       enums.EstimateStatus `gorm:"column:status;type:estimate_status;not null;default:'created'"`
	Date         time.Time            `gorm:"column:date;type:date;not null"`
	UserID       uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	OwnerID      *uuid.UUID           `gorm:"column:owner_id;type:uuid"`
	UserVATRegNo *string              `gorm:"column:user_vat_reg_no"`
	Address      types.Address        `gorm:"column:address;type:billing_address_t"`
	TaxType      string               `gorm:"column:tax_type;not null"`
	TaxNote      *string              `gorm:"column:tax_note"`
	Letter       *string              `gorm:"column:letter"`
	Terms        *string              `gorm:"column:terms"`
	Note         *string              `gorm:"column:note"`
	Positions    []EstimatePosition   `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
	User         *User                `gorm:"foreignKey:UserID"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Title renders the number as shown in listings.
func (e Estimate) Title() string {
	return "#" + e.Number
}

// Totals collects the total of each position, skipping optional positions
// unless includeOptional is set.
func (e Estimate) Totals(includeOptional bool) money.Prices {
	out := make(money.Prices, 0, len(e.Positions))
	for _, p := range e.Positions {
		if p.IsOptional && !includeOptional {
			continue
		}
		out = append(out, p.Total())
	}
	return out
}

// Taxes returns the tax per rate, keyed by money.RateKey.
func (e Estimate) Taxes(includeOptional bool) map[string]money.Monies {
	return e.Totals(includeOptional).TaxesByRate()
}

// Balance is what the user owes: the negated gross total.
func (e Estimate) Balance(includeOptional bool) money.Monies {
	return e.Totals(includeOptional).Gross().Negate()
}

// IsOverdue reports whether a sent estimate went unanswered past its date
// plus grace. A zero grace disables overdue tracking.
func (e Estimate) IsOverdue(now time.Time, grace time.Duration) bool {
	if grace <= 0 || e.Status != enums.EstimateStatusSent {
		return false
	}
	return now.After(e.Date.Add(grace))
}

// IsCancelable reports whether the estimate may still be cancelled.
func (e Estimate) IsCancelable() bool {
	return e.Status == enums.EstimateStatusCreated
}

func (e Estimate) HasOptionalPositions() bool {
	for _, p := range e.Positions {
		if p.IsOptional {
			return true
		}
	}
	return false
}

// PositionGroup is a run of positions sharing a grouping tag. Name is empty
// for positions without one.
type PositionGroup struct {
	Name      string
	Positions []EstimatePosition
}

// PositionsGroupedByTags partitions positions by their grouping tag. Groups
// named in order come first in that order; others follow in order of first
// appearance. Groups left empty are dropped.
func (e Estimate) PositionsGroupedByTags(order []string) []PositionGroup {
	index := map[string]int{}
	groups := make([]PositionGroup, 0, len(order))
	for _, name := range order {
		if _, ok := index[name]; ok {
			continue
		}
		index[name] = len(groups)
		groups = append(groups, PositionGroup{Name: name})
	}

	for _, p := range e.Positions {
		name, _ := p.GroupKey()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, PositionGroup{Name: name})
		}
		groups[i].Positions = append(groups[i].Positions, p)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Positions) > 0 {
			out = append(out, g)
		}
	}
	return out
}
