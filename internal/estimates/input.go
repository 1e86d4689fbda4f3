package estimates

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/estimates-backend/internal/clientgroups"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/types"
)

// CreateInput describes a new estimate. Number is only read when number
// generation is disabled.
type CreateInput struct {
	UserID    uuid.UUID
	OwnerID   *uuid.UUID
	Number    string
	Status    enums.EstimateStatus
	Date      *time.Time
	Letter    *string
	Terms     *string
	Note      *string
	Positions []PositionInput
}

// SaveInput carries changes to an existing estimate. Nil fields are left
// untouched.
type SaveInput struct {
	OwnerID   types.NullableUUID
	Number    *string
	Status    *enums.EstimateStatus
	Date      *time.Time
	Address   *types.Address
	Letter    *string
	Terms     *string
	Note      *string
	Positions []PositionInput
}

// PositionInput is one entry of the nested positions payload. With an ID it
// targets an existing position, deleting it when Delete is set; without an
// ID it creates a new one.
type PositionInput struct {
	ID             *uuid.UUID
	Delete         bool
	Description    string
	Tags           []string
	Quantity       *decimal.Decimal
	Amount         int64
	AmountCurrency enums.Currency
	AmountType     enums.AmountType
	AmountRate     *decimal.Decimal
	IsOptional     bool
}

func (in CreateInput) validate() error {
	if in.UserID == uuid.Nil {
		return validationError("user_id is required", nil)
	}
	if in.Status != "" && !in.Status.IsValid() {
		return validationError("invalid status", map[string]any{"status": in.Status})
	}
	for i, p := range in.Positions {
		if p.ID != nil || p.Delete {
			return validationError("new estimates cannot reference existing positions", map[string]any{"position": i})
		}
		if err := p.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (in SaveInput) validate() error {
	if in.Status != nil && !in.Status.IsValid() {
		return validationError("invalid status", map[string]any{"status": *in.Status})
	}
	for i, p := range in.Positions {
		if p.Delete {
			continue
		}
		if err := p.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (p PositionInput) validate(i int) error {
	if strings.TrimSpace(p.Description) == "" {
		return validationError("position description is required", map[string]any{"position": i})
	}
	if p.AmountCurrency != "" && !p.AmountCurrency.IsValid() {
		return validationError("invalid position currency", map[string]any{"position": i, "currency": p.AmountCurrency})
	}
	if p.AmountType != "" && !p.AmountType.IsValid() {
		return validationError("invalid position amount type", map[string]any{"position": i, "amount_type": p.AmountType})
	}
	if p.Quantity != nil && p.Quantity.IsNegative() {
		return validationError("position quantity must not be negative", map[string]any{"position": i})
	}
	if p.AmountRate != nil && p.AmountRate.IsNegative() {
		return validationError("position rate must not be negative", map[string]any{"position": i})
	}
	return nil
}

// positionDefaults fill in what a position input leaves open.
type positionDefaults struct {
	UserID   uuid.UUID
	Currency enums.Currency
	Type     enums.AmountType
	Rate     decimal.Decimal
	TaxType  string
	known    bool
}

func defaultsFor(userID uuid.UUID, res clientgroups.Resolution) positionDefaults {
	return positionDefaults{
		UserID:   userID,
		Currency: res.Group.AmountCurrency,
		Type:     res.Group.AmountType,
		Rate:     res.TaxType.Rate,
		TaxType:  res.TaxType.Name,
		known:    true,
	}
}

// build creates a new position from the input.
func (p PositionInput) build(estimateID uuid.UUID, sort int, d positionDefaults) (models.EstimatePosition, error) {
	pos := models.EstimatePosition{
		EstimateID: estimateID,
		UserID:     d.UserID,
		Quantity:   decimal.NewFromInt(1),
		TaxType:    d.TaxType,
		Sort:       sort,
	}
	if err := p.apply(&pos, d); err != nil {
		return models.EstimatePosition{}, err
	}
	return pos, nil
}

// apply copies the input onto pos. Unset currency, type and rate keep the
// value already on pos or, if there is none, the defaults.
func (p PositionInput) apply(pos *models.EstimatePosition, d positionDefaults) error {
	pos.Description = strings.TrimSpace(p.Description)
	pos.Tags = models.NormalizeTags(p.Tags)
	pos.Amount = p.Amount
	pos.IsOptional = p.IsOptional
	if p.Quantity != nil {
		pos.Quantity = *p.Quantity
	}

	switch {
	case p.AmountCurrency != "":
		pos.AmountCurrency = p.AmountCurrency
	case pos.AmountCurrency == "" && d.known:
		pos.AmountCurrency = d.Currency
	}
	switch {
	case p.AmountType != "":
		pos.AmountType = p.AmountType
	case pos.AmountType == "" && d.known:
		pos.AmountType = d.Type
	}
	switch {
	case p.AmountRate != nil:
		pos.AmountRate = *p.AmountRate
	case pos.ID == uuid.Nil && d.known:
		pos.AmountRate = d.Rate
	}

	if pos.AmountCurrency == "" || pos.AmountType == "" {
		return validationError("position currency and amount type are required", map[string]any{"description": pos.Description})
	}
	return nil
}
