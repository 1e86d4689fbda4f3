package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/estimates-backend/internal/repo"
	"github.com/angelmondragon/estimates-backend/pkg/db"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
)

// Repository manages persistence for invoices and their positions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	CreatePositions(ctx context.Context, positions []models.InvoicePosition) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListByEstimateID(ctx context.Context, estimateID uuid.UUID) ([]models.Invoice, error)
	NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns an invoices repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

// Create inserts the invoice row only; positions go through CreatePositions.
func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.DB(ctx).Omit(clause.Associations).Create(invoice).Error
}

func (r *repository) CreatePositions(ctx context.Context, positions []models.InvoicePosition) error {
	if len(positions) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&positions).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.DB(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort ASC").Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) ListByEstimateID(ctx context.Context, estimateID uuid.UUID) ([]models.Invoice, error) {
	var rows []models.Invoice
	if err := r.DB(ctx).
		Where("estimate_id = ?", estimateID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// NumbersWithPrefix returns every invoice number starting with prefix.
func (r *repository) NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	if err := r.DB(ctx).
		Model(&models.Invoice{}).
		Where("number LIKE ? "+db.LikeEscape, db.PrefixPattern(prefix)).
		Pluck("number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}
