package estimates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/estimates-backend/internal/repo"
	"github.com/angelmondragon/estimates-backend/pkg/db"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/pagination"
	"github.com/angelmondragon/estimates-backend/pkg/refnumber"
)

// numberConstraints are the names the unique index on estimates.number is
// reported under by Postgres and SQLite respectively.
var numberConstraints = []string{"uq_estimates_number", "estimates.number"}

// ListFilter narrows estimate listings. Zero values are ignored.
type ListFilter struct {
	Status *enums.EstimateStatus
	UserID *uuid.UUID
	Year   int
	From   *time.Time
	To     *time.Time
	Search string
}

// PositionSum is sum(amount * quantity) over positions sharing currency,
// amount type and rate.
type PositionSum struct {
	Currency enums.Currency   `gorm:"column:amount_currency"`
	Type     enums.AmountType `gorm:"column:amount_type"`
	Rate     decimal.Decimal  `gorm:"column:amount_rate"`
	Total    decimal.Decimal  `gorm:"column:total"`
}

// Repository manages persistence for estimates and their positions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, estimate *models.Estimate) error
	UpdateRoot(ctx context.Context, estimate *models.Estimate) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EstimateStatus) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Estimate], error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreatePositions(ctx context.Context, positions []models.EstimatePosition) error
	FindPosition(ctx context.Context, estimateID, positionID uuid.UUID) (*models.EstimatePosition, error)
	UpdatePosition(ctx context.Context, position *models.EstimatePosition) error
	DeletePosition(ctx context.Context, estimateID, positionID uuid.UUID) error
	DeletePositions(ctx context.Context, estimateID uuid.UUID) error
	NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	NumberExists(ctx context.Context, number string, exclude uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context) (map[enums.EstimateStatus]int64, error)
	SumPositions(ctx context.Context, status enums.EstimateStatus, from, to time.Time) ([]PositionSum, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns an estimates repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

// Create inserts the estimate row only; positions go through CreatePositions.
func (r *repository) Create(ctx context.Context, estimate *models.Estimate) error {
	err := r.DB(ctx).Omit(clause.Associations).Create(estimate).Error
	return numberConflict(err, estimate.Number)
}

func (r *repository) UpdateRoot(ctx context.Context, estimate *models.Estimate) error {
	res := r.DB(ctx).
		Model(&models.Estimate{}).
		Where("id = ?", estimate.ID).
		Updates(map[string]any{
			"number":          estimate.Number,
			"status":          estimate.Status,
			"date":            estimate.Date,
			"owner_id":        estimate.OwnerID,
			"user_vat_reg_no": estimate.UserVATRegNo,
			"address":         estimate.Address,
			"tax_type":        estimate.TaxType,
			"tax_note":        estimate.TaxNote,
			"letter":          estimate.Letter,
			"terms":           estimate.Terms,
			"note":            estimate.Note,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return numberConflict(res.Error, estimate.Number)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.EstimateStatus) error {
	res := r.DB(ctx).
		Model(&models.Estimate{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	var estimate models.Estimate
	err := r.DB(ctx).
		Preload("Positions", orderPositions).
		Where("id = ?", id).
		First(&estimate).Error
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}

// List returns estimates newest first by (date, number) with cursor pagination.
func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Estimate], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Estimate]{}, err
	}

	q := r.DB(ctx).Model(&models.Estimate{}).Preload("Positions", orderPositions)
	q = applyFilter(q, filter)
	if cursor != nil {
		q = q.Where("(date < ?) OR (date = ? AND number < ?)", cursor.At, cursor.At, cursor.Key)
	}

	var rows []models.Estimate
	if err := q.Order("date DESC").Order("number DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return pagination.Page[models.Estimate]{}, err
	}
	return pagination.Trim(rows, params.Limit, func(e models.Estimate) pagination.Cursor {
		return pagination.Cursor{At: e.Date, Key: e.Number}
	}), nil
}

func applyFilter(q *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Year > 0 {
		from, to := yearBounds(filter.Year)
		q = q.Where("date >= ? AND date < ?", from, to)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		pattern := db.ContainsPattern(term)
		q = q.Where(
			"LOWER(number) LIKE ? "+db.LikeEscape+
				" OR LOWER(CAST(status AS TEXT)) LIKE ? "+db.LikeEscape+
				" OR LOWER(CAST(address AS TEXT)) LIKE ? "+db.LikeEscape,
			pattern, pattern, pattern,
		)
	}
	return q
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Estimate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreatePositions(ctx context.Context, positions []models.EstimatePosition) error {
	if len(positions) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&positions).Error
}

func (r *repository) FindPosition(ctx context.Context, estimateID, positionID uuid.UUID) (*models.EstimatePosition, error) {
	var position models.EstimatePosition
	if err := r.DB(ctx).
		Where("id = ? AND estimate_id = ?", positionID, estimateID).
		First(&position).Error; err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *repository) UpdatePosition(ctx context.Context, position *models.EstimatePosition) error {
	res := r.DB(ctx).
		Model(&models.EstimatePosition{}).
		Where("id = ? AND estimate_id = ?", position.ID, position.EstimateID).
		Updates(map[string]any{
			"description":     position.Description,
			"tags":            position.Tags,
			"quantity":        position.Quantity,
			"amount":          position.Amount,
			"amount_currency": position.AmountCurrency,
			"amount_type":     position.AmountType,
			"amount_rate":     position.AmountRate,
			"is_optional":     position.IsOptional,
			"tax_type":        position.TaxType,
			"sort":            position.Sort,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeletePosition(ctx context.Context, estimateID, positionID uuid.UUID) error {
	res := r.DB(ctx).
		Where("id = ? AND estimate_id = ?", positionID, estimateID).
		Delete(&models.EstimatePosition{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeletePositions(ctx context.Context, estimateID uuid.UUID) error {
	return r.DB(ctx).Where("estimate_id = ?", estimateID).Delete(&models.EstimatePosition{}).Error
}

// NumbersWithPrefix returns every estimate number starting with prefix.
func (r *repository) NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	if err := r.DB(ctx).
		Model(&models.Estimate{}).
		Where("number LIKE ? "+db.LikeEscape, db.PrefixPattern(prefix)).
		Pluck("number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *repository) NumberExists(ctx context.Context, number string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.DB(ctx).Model(&models.Estimate{}).Where("number = ?", number)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.EstimateStatus]int64, error) {
	var rows []struct {
		Status enums.EstimateStatus
		Total  int64
	}
	if err := r.DB(ctx).
		Model(&models.Estimate{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.EstimateStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

const sumPositionsQuery = `
SELECT p.amount_currency, p.amount_type, p.amount_rate, SUM(p.amount * p.quantity) AS total
FROM estimate_positions p
JOIN estimates e ON e.id = p.estimate_id
WHERE e.status = ? AND e.date >= ? AND e.date < ? AND p.is_optional = ?
GROUP BY p.amount_currency, p.amount_type, p.amount_rate`

// SumPositions aggregates non-optional positions of estimates in status
// dated within [from, to).
func (r *repository) SumPositions(ctx context.Context, status enums.EstimateStatus, from, to time.Time) ([]PositionSum, error) {
	var rows []PositionSum
	if err := r.DB(ctx).
		Raw(sumPositionsQuery, string(status), from, to, false).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func orderPositions(q *gorm.DB) *gorm.DB {
	return q.Order("sort ASC").Order("created_at ASC")
}

func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

func numberConflict(err error, number string) error {
	if err == nil {
		return nil
	}
	for _, name := range numberConstraints {
		if db.IsUniqueViolation(err, name) {
			return fmt.Errorf("%w: %s", refnumber.ErrDuplicateNumber, number)
		}
	}
	return err
}
