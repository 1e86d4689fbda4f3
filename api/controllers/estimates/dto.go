package estimates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalestimates "github.com/angelmondragon/estimates-backend/internal/estimates"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/money"
	"github.com/angelmondragon/estimates-backend/pkg/types"
)

// date is a calendar day in YYYY-MM-DD form.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("date must be formatted as %s", time.DateOnly)
	}
	d.Time = parsed
	return nil
}

func (d *date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type positionRequest struct {
	ID             *uuid.UUID       `json:"id"`
	Delete         bool             `json:"_delete"`
	Description    string           `json:"description" validate:"max=2000"`
	Tags           []string         `json:"tags" validate:"max=20,dive,max=64"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Amount         int64            `json:"amount"`
	AmountCurrency string           `json:"amount_currency" validate:"omitempty,currency"`
	AmountType     string           `json:"amount_type" validate:"omitempty,amount_type"`
	AmountRate     *decimal.Decimal `json:"amount_rate"`
	IsOptional     bool             `json:"is_optional"`
}

func (p positionRequest) input() internalestimates.PositionInput {
	return internalestimates.PositionInput{
		ID:             p.ID,
		Delete:         p.Delete,
		Description:    p.Description,
		Tags:           p.Tags,
		Quantity:       p.Quantity,
		Amount:         p.Amount,
		AmountCurrency: enums.Currency(p.AmountCurrency),
		AmountType:     enums.AmountType(p.AmountType),
		AmountRate:     p.AmountRate,
		IsOptional:     p.IsOptional,
	}
}

func positionInputs(in []positionRequest) []internalestimates.PositionInput {
	if in == nil {
		return nil
	}
	out := make([]internalestimates.PositionInput, 0, len(in))
	for _, p := range in {
		out = append(out, p.input())
	}
	return out
}

type createRequest struct {
	UserID    uuid.UUID         `json:"user_id" validate:"required"`
	OwnerID   *uuid.UUID        `json:"owner_id"`
	Number    string            `json:"number" validate:"max=64"`
	Status    string            `json:"status" validate:"omitempty,estimate_status"`
	Date      *date             `json:"date"`
	Letter    *string           `json:"letter"`
	Terms     *string           `json:"terms"`
	Note      *string           `json:"note"`
	Positions []positionRequest `json:"positions" validate:"max=500,dive"`
}

func (r createRequest) input() internalestimates.CreateInput {
	return internalestimates.CreateInput{
		UserID:    r.UserID,
		OwnerID:   r.OwnerID,
		Number:    r.Number,
		Status:    enums.EstimateStatus(r.Status),
		Date:      r.Date.ptr(),
		Letter:    r.Letter,
		Terms:     r.Terms,
		Note:      r.Note,
		Positions: positionInputs(r.Positions),
	}
}

type updateRequest struct {
	OwnerID   types.NullableUUID `json:"owner_id"`
	Number    *string            `json:"number" validate:"omitempty,max=64"`
	Status    *string            `json:"status" validate:"omitempty,estimate_status"`
	Date      *date              `json:"date"`
	Address   *types.Address     `json:"address"`
	Letter    *string            `json:"letter"`
	Terms     *string            `json:"terms"`
	Note      *string            `json:"note"`
	Positions []positionRequest  `json:"positions" validate:"max=500,dive"`
}

func (r updateRequest) input() internalestimates.SaveInput {
	in := internalestimates.SaveInput{
		OwnerID:   r.OwnerID,
		Number:    r.Number,
		Date:      r.Date.ptr(),
		Address:   r.Address,
		Letter:    r.Letter,
		Terms:     r.Terms,
		Note:      r.Note,
		Positions: positionInputs(r.Positions),
	}
	if r.Status != nil {
		status := enums.EstimateStatus(*r.Status)
		in.Status = &status
	}
	return in
}

type statusRequest struct {
	Status string `json:"status" validate:"required,estimate_status"`
}

type moneyDTO struct {
	Amount    int64          `json:"amount"`
	Currency  enums.Currency `json:"currency"`
	Formatted string         `json:"formatted"`
}

func moneyFrom(m money.Money) moneyDTO {
	return moneyDTO{Amount: m.Amount(), Currency: m.Currency(), Formatted: m.String()}
}

func moniesFrom(ms money.Monies) []moneyDTO {
	out := make([]moneyDTO, 0, len(ms))
	for _, c := range ms.Currencies() {
		out = append(out, moneyFrom(ms.Get(c)))
	}
	return out
}

type taxDTO struct {
	Rate    string     `json:"rate"`
	Amounts []moneyDTO `json:"amounts"`
}

type totalsDTO struct {
	Net     []moneyDTO `json:"net"`
	Taxes   []taxDTO   `json:"taxes"`
	Gross   []moneyDTO `json:"gross"`
	Balance []moneyDTO `json:"balance"`
}

func totalsFrom(prices money.Prices) totalsDTO {
	out := totalsDTO{
		Net:     moniesFrom(prices.Net()),
		Gross:   moniesFrom(prices.Gross()),
		Balance: moniesFrom(prices.Gross().Negate()),
		Taxes:   []taxDTO{},
	}
	taxes := prices.TaxesByRate()
	for _, rate := range prices.Sum().Rates() {
		out.Taxes = append(out.Taxes, taxDTO{Rate: rate, Amounts: moniesFrom(taxes[rate])})
	}
	return out
}

type positionDTO struct {
	ID             uuid.UUID        `json:"id"`
	Description    string           `json:"description"`
	Tags           []string         `json:"tags"`
	Group          string           `json:"group,omitempty"`
	ProductNumber  string           `json:"product_number,omitempty"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Amount         int64            `json:"amount"`
	AmountCurrency enums.Currency   `json:"amount_currency"`
	AmountType     enums.AmountType `json:"amount_type"`
	AmountRate     decimal.Decimal  `json:"amount_rate"`
	IsOptional     bool             `json:"is_optional"`
	TaxType        string           `json:"tax_type,omitempty"`
	Net            moneyDTO         `json:"net"`
	Gross          moneyDTO         `json:"gross"`
}

func positionFrom(p models.EstimatePosition) positionDTO {
	total := p.Total()
	group, _ := p.GroupKey()
	product, _ := p.ProductNumber()
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return positionDTO{
		ID:             p.ID,
		Description:    p.Description,
		Tags:           tags,
		Group:          group,
		ProductNumber:  product,
		Quantity:       p.Quantity,
		Amount:         p.Amount,
		AmountCurrency: p.AmountCurrency,
		AmountType:     p.AmountType,
		AmountRate:     p.AmountRate,
		IsOptional:     p.IsOptional,
		TaxType:        p.TaxType,
		Net:            moneyFrom(total.Net()),
		Gross:          moneyFrom(total.Gross()),
	}
}

type estimateDTO struct {
	ID           uuid.UUID            `json:"id"`
	Number       string               `json:"number"`
	Title        string               `json:"title"`
	Status       enums.EstimateStatus `json:"status"`
	Date         string               `json:"date"`
	UserID       uuid.UUID            `json:"user_id"`
	OwnerID      *uuid.UUID           `json:"owner_id,omitempty"`
	UserVATRegNo *string              `json:"user_vat_reg_no,omitempty"`
	Address      types.Address        `json:"address"`
	TaxType      string               `json:"tax_type"`
	TaxNote      *string              `json:"tax_note,omitempty"`
	Letter       *string              `json:"letter,omitempty"`
	Terms        *string              `json:"terms,omitempty"`
	Note         *string              `json:"note,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func estimateFrom(e models.Estimate) estimateDTO {
	return estimateDTO{
		ID:           e.ID,
		Number:       e.Number,
		Title:        e.Title(),
		Status:       e.Status,
		Date:         e.Date.Format(time.DateOnly),
		UserID:       e.UserID,
		OwnerID:      e.OwnerID,
		UserVATRegNo: e.UserVATRegNo,
		Address:      e.Address,
		TaxType:      e.TaxType,
		TaxNote:      e.TaxNote,
		Letter:       e.Letter,
		Terms:        e.Terms,
		Note:         e.Note,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// estimateDetailDTO adds positions and derived figures. Totals skip optional
// positions; TotalsWithOptional includes them.
type estimateDetailDTO struct {
	estimateDTO
	Positions            []positionDTO `json:"positions"`
	Totals               totalsDTO     `json:"totals"`
	TotalsWithOptional   *totalsDTO    `json:"totals_with_optional,omitempty"`
	IsOverdue            bool          `json:"is_overdue"`
	IsCancelable         bool          `json:"is_cancelable"`
	HasOptionalPositions bool          `json:"has_optional_positions"`
}

func detailFrom(e models.Estimate, now time.Time, grace time.Duration) estimateDetailDTO {
	out := estimateDetailDTO{
		estimateDTO:          estimateFrom(e),
		Positions:            make([]positionDTO, 0, len(e.Positions)),
		Totals:               totalsFrom(e.Totals(false)),
		IsOverdue:            e.IsOverdue(now, grace),
		IsCancelable:         e.IsCancelable(),
		HasOptionalPositions: e.HasOptionalPositions(),
	}
	for _, p := range e.Positions {
		out.Positions = append(out.Positions, positionFrom(p))
	}
	if out.HasOptionalPositions {
		all := totalsFrom(e.Totals(true))
		out.TotalsWithOptional = &all
	}
	return out
}

type invoiceDTO struct {
	ID         uuid.UUID           `json:"id"`
	Number     string              `json:"number"`
	Status     enums.InvoiceStatus `json:"status"`
	Date       string              `json:"date"`
	EstimateID *uuid.UUID          `json:"estimate_id,omitempty"`
	UserID     uuid.UUID           `json:"user_id"`
	Positions  int                 `json:"positions"`
	Totals     totalsDTO           `json:"totals"`
}

func invoiceFrom(i models.Invoice) invoiceDTO {
	return invoiceDTO{
		ID:         i.ID,
		Number:     i.Number,
		Status:     i.Status,
		Date:       i.Date.Format(time.DateOnly),
		EstimateID: i.EstimateID,
		UserID:     i.UserID,
		Positions:  len(i.Positions),
		Totals:     totalsFrom(i.Totals()),
	}
}

type listDTO struct {
	Items      []estimateDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type statsDTO struct {
	Year        int             `json:"year"`
	TotalNet    []moneyDTO      `json:"total_net"`
	Open        int64           `json:"open"`
	Pending     int64           `json:"pending"`
	Accepted    int64           `json:"accepted"`
	SuccessRate decimal.Decimal `json:"success_rate"`
}
