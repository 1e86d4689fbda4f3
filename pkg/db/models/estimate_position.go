package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/money"
)

// GroupTagPrefix marks a tag as the grouping tag of a position.
const GroupTagPrefix = "$"

var productRefPattern = regexp.MustCompile(`\(#(.*)\)`)

// EstimatePosition is one line of an estimate. Amount is the unit price in
// minor units of AmountCurrency.
type EstimatePosition struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	EstimateID     uuid.UUID        `gorm:"column:estimate_id;type:uuid;not null;index"`
	UserID         uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Description    string           `gorm:"column:description;not null"`
	Tags           pq.StringArray   `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	Quantity       decimal.Decimal  `gorm:"column:quantity;type:numeric(12,4);not null"`
	Amount         int64            `gorm:"column:amount;not null"`
	AmountCurrency enums.Currency   `gorm:"column:amount_currency;not null"`
	AmountType     enums.AmountType `gorm:"column:amount_type;type:amount_type;not null"`
	AmountRate     decimal.Decimal  `gorm:"column:amount_rate;type:numeric(5,2);not null"`
	IsOptional     bool             `gorm:"column:is_optional;not null;default:false"`
	TaxType        string           `gorm:"column:tax_type"`
	Sort           int              `gorm:"column:sort;not null;default:0"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *EstimatePosition) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Price returns the unit price.
func (p EstimatePosition) Price() money.Price {
	return money.NewPrice(p.Amount, p.AmountCurrency, p.AmountType, p.AmountRate)
}

// Total is the unit price scaled by quantity.
func (p EstimatePosition) Total() money.Price {
	return p.Price().Scale(p.Quantity)
}

// GroupKey returns the first tag carrying GroupTagPrefix, in stored order.
func (p EstimatePosition) GroupKey() (string, bool) {
	return groupKey(p.Tags)
}

// ProductNumber extracts the product reference from descriptions shaped
// like "Foobar (#12345)".
func (p EstimatePosition) ProductNumber() (string, bool) {
	m := productRefPattern.FindStringSubmatch(p.Description)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping order.
func NormalizeTags(tags []string) pq.StringArray {
	seen := make(map[string]struct{}, len(tags))
	out := make(pq.StringArray, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func groupKey(tags []string) (string, bool) {
	for _, t := range tags {
		if strings.HasPrefix(t, GroupTagPrefix) {
			return t, true
		}
	}
	return "", false
}
