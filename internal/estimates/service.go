package estimates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/internal/clientgroups"
	"github.com/angelmondragon/estimates-backend/internal/invoices"
	"github.com/angelmondragon/estimates-backend/internal/users"
	"github.com/angelmondragon/estimates-backend/pkg/config"
	"github.com/angelmondragon/estimates-backend/pkg/db"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
	"github.com/angelmondragon/estimates-backend/pkg/metrics"
	"github.com/angelmondragon/estimates-backend/pkg/pagination"
	"github.com/angelmondragon/estimates-backend/pkg/refnumber"
)

var invoiceNumberConstraints = []string{"uq_invoices_number", "invoices.number"}

// Service drives estimates through their lifecycle. Every mutating call is
// a single transaction.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Estimate], error)
	Create(ctx context.Context, input CreateInput) (*models.Estimate, error)
	Save(ctx context.Context, id uuid.UUID, input SaveInput) (*models.Estimate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Duplicate(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
	ConvertToInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status enums.EstimateStatus) (*models.Estimate, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
}

type classifier interface {
	Resolve(user models.User) (clientgroups.Resolution, bool)
}

// Settings are the configurable parts of the lifecycle.
type Settings struct {
	Numbers           *refnumber.Scheme
	AutoNumber        bool
	NumberMaxAttempts int
	InvoiceNumbers    *refnumber.Scheme
	Letter            config.TextSetting
	Terms             config.TextSetting
}

// SettingsFromConfig compiles the number schemes of cfg.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	if cfg == nil {
		return Settings{}, fmt.Errorf("config required")
	}
	numbers, err := refnumber.NewScheme(cfg.Estimate.NumberSort, cfg.Estimate.NumberExtract, cfg.Estimate.NumberGenerate)
	if err != nil {
		return Settings{}, fmt.Errorf("estimate number scheme: %w", err)
	}
	invoiceNumbers, err := refnumber.NewScheme(cfg.Invoice.NumberSort, cfg.Invoice.NumberExtract, cfg.Invoice.NumberGenerate)
	if err != nil {
		return Settings{}, fmt.Errorf("invoice number scheme: %w", err)
	}
	return Settings{
		Numbers:           numbers,
		AutoNumber:        cfg.Estimate.NumberAutoGenerate,
		NumberMaxAttempts: cfg.Estimate.NumberMaxAttempts,
		InvoiceNumbers:    invoiceNumbers,
		Letter:            cfg.Estimate.Letter,
		Terms:             cfg.Estimate.Terms,
	}, nil
}

// Option customizes a service.
type Option func(*service)

// WithClock replaces time.Now, which decides "today" for new records.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.clock = now
		}
	}
}

type service struct {
	tx             txRunner
	repo           Repository
	users          *users.Repository
	groups         classifier
	invoices       invoices.Repository
	numbers        numberer
	invoiceNumbers numberer
	settings       Settings
	clock          func() time.Time
	logg           *logger.Logger
	obs            observer
}

// NewService wires the lifecycle engine.
func NewService(
	tx txRunner,
	repo Repository,
	usersRepo *users.Repository,
	groups classifier,
	invoiceRepo invoices.Repository,
	settings Settings,
	logg *logger.Logger,
	m *metrics.LifecycleMetrics,
	opts ...Option,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("estimates repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if groups == nil {
		return nil, fmt.Errorf("client group registry required")
	}
	if invoiceRepo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if settings.Numbers == nil {
		settings.Numbers = refnumber.Default()
	}
	if settings.InvoiceNumbers == nil {
		settings.InvoiceNumbers = refnumber.Default()
	}
	s := &service{
		tx:             tx,
		repo:           repo,
		users:          usersRepo,
		groups:         groups,
		invoices:       invoiceRepo,
		numbers:        numberer{scheme: settings.Numbers, auto: settings.AutoNumber},
		invoiceNumbers: numberer{scheme: settings.InvoiceNumbers, auto: true},
		settings:       settings,
		clock:          time.Now,
		logg:           logg,
		obs:            observer{logg: logg, metrics: m},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	estimate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return estimate, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[models.Estimate], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pagination.Page[models.Estimate]{}, validationError("invalid cursor", nil)
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return pagination.Page[models.Estimate]{}, validationError("invalid status", map[string]any{"status": *filter.Status})
	}
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Page[models.Estimate]{}, classify(err)
	}
	return page, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Estimate, error) {
	started := time.Now()
	var created *models.Estimate
	err := s.retryOnCollision(ctx, OpCreate, s.numbers.auto, func() error {
		var err error
		created, err = s.create(ctx, input)
		return err
	})
	s.obs.finish(ctx, OpCreate, started, err)
	if err != nil {
		return nil, err
	}
	s.logDone(ctx, "estimate.created", created)
	return created, nil
}

func (s *service) create(ctx context.Context, input CreateInput) (*models.Estimate, error) {
	var (
		estimate *models.Estimate
		defaults positionDefaults
	)
	err := newPipeline(OpCreate).
		then(StepValidate, func(context.Context, *gorm.DB) error {
			return input.validate()
		}).
		then(StepResolveDefaults, func(ctx context.Context, tx *gorm.DB) error {
			user, err := s.users.WithTx(tx).FindByID(ctx, input.UserID)
			if err != nil {
				return err
			}
			res, ok := s.groups.Resolve(*user)
			if !ok {
				return fmt.Errorf("%w: user %s", ErrNoClientGroup, user.Number)
			}

			status := input.Status
			if status == "" {
				status = enums.EstimateStatusCreated
			}
			date := s.today()
			if input.Date != nil {
				date = dateOnly(*input.Date)
			}
			textCtx := config.TextContext{
				Purpose:      "entity",
				UserName:     user.Name(),
				Organization: derefString(user.Organization),
			}
			estimate = &models.Estimate{
				Status:       status,
				Date:         date,
				UserID:       user.ID,
				OwnerID:      input.OwnerID,
				UserVATRegNo: cloneString(user.VATRegNo),
				Address:      user.BillingAddress,
				TaxType:      res.TaxType.Name,
				TaxNote:      optionalString(res.TaxType.Note),
				Letter:       settingText(input.Letter, s.settings.Letter, textCtx),
				Terms:        settingText(input.Terms, s.settings.Terms, textCtx),
				Note:         optionalString(derefString(input.Note)),
			}
			estimate.Number, err = s.numbers.assign(ctx, s.repo.WithTx(tx), date, input.Number)
			if err != nil {
				return err
			}
			defaults = defaultsFor(user.ID, res)
			return nil
		}).
		then(StepPersistRoot, func(ctx context.Context, tx *gorm.DB) error {
			return s.repo.WithTx(tx).Create(ctx, estimate)
		}).
		then(StepReconcileChildren, func(ctx context.Context, tx *gorm.DB) error {
			positions := make([]models.EstimatePosition, 0, len(input.Positions))
			for i, in := range input.Positions {
				p, err := in.build(estimate.ID, i, defaults)
				if err != nil {
					return nestedSaveError(i, err)
				}
				positions = append(positions, p)
			}
			if err := s.repo.WithTx(tx).CreatePositions(ctx, positions); err != nil {
				return fmt.Errorf("%w: %w", ErrNestedSave, err)
			}
			estimate.Positions = positions
			return nil
		}).
		run(ctx, s.tx)
	if err != nil {
		return nil, err
	}
	return estimate, nil
}

func (s *service) Save(ctx context.Context, id uuid.UUID, input SaveInput) (*models.Estimate, error) {
	started := time.Now()
	var (
		estimate *models.Estimate
		defaults positionDefaults
	)
	err := newPipeline(OpSave).
		then(StepValidate, func(context.Context, *gorm.DB) error {
			return input.validate()
		}).
		then(StepResolveDefaults, func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			var err error
			estimate, err = repo.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if err := s.applyNumber(ctx, repo, estimate, input.Number); err != nil {
				return err
			}
			applyRoot(estimate, input)
			defaults, err = s.defaultsForSave(ctx, tx, estimate)
			return err
		}).
		then(StepPersistRoot, func(ctx context.Context, tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpdateRoot(ctx, estimate)
		}).
		then(StepReconcileChildren, func(ctx context.Context, tx *gorm.DB) error {
			return s.reconcilePositions(ctx, s.repo.WithTx(tx), estimate, input.Positions, defaults)
		}).
		run(ctx, s.tx)
	s.obs.finish(ctx, OpSave, started, err)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	s.logDone(ctx, "estimate.saved", saved)
	return saved, nil
}

// applyNumber handles a number change on save. Generated numbers are fixed
// once assigned; clearing one draws a fresh number.
func (s *service) applyNumber(ctx context.Context, repo Repository, estimate *models.Estimate, number *string) error {
	if number == nil {
		return nil
	}
	next := strings.TrimSpace(*number)
	if next == estimate.Number {
		return nil
	}
	if s.numbers.auto {
		if next != "" {
			return validationError("number cannot be changed once assigned", map[string]any{"number": estimate.Number})
		}
		generated, err := s.numbers.generate(ctx, repo, estimate.Date)
		if err != nil {
			return err
		}
		estimate.Number = generated
		return nil
	}
	claimed, err := s.numbers.claim(ctx, repo, next, estimate.ID)
	if err != nil {
		return err
	}
	estimate.Number = claimed
	return nil
}

func applyRoot(estimate *models.Estimate, input SaveInput) {
	input.OwnerID.ApplyTo(&estimate.OwnerID)
	if input.Status != nil {
		estimate.Status = *input.Status
	}
	if input.Date != nil {
		estimate.Date = dateOnly(*input.Date)
	}
	if input.Address != nil {
		estimate.Address = *input.Address
	}
	if input.Letter != nil {
		estimate.Letter = optionalString(*input.Letter)
	}
	if input.Terms != nil {
		estimate.Terms = optionalString(*input.Terms)
	}
	if input.Note != nil {
		estimate.Note = optionalString(*input.Note)
	}
}

// defaultsForSave resolves position defaults from the user's current client
// group. Users that no longer classify only lose the defaults; new positions
// must then state currency and amount type themselves.
func (s *service) defaultsForSave(ctx context.Context, tx *gorm.DB, estimate *models.Estimate) (positionDefaults, error) {
	fallback := positionDefaults{UserID: estimate.UserID, TaxType: estimate.TaxType}
	user, err := s.users.WithTx(tx).FindByID(ctx, estimate.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return fallback, nil
		}
		return positionDefaults{}, err
	}
	res, ok := s.groups.Resolve(*user)
	if !ok {
		return fallback, nil
	}
	d := defaultsFor(estimate.UserID, res)
	d.TaxType = estimate.TaxType
	return d, nil
}

func (s *service) reconcilePositions(ctx context.Context, repo Repository, estimate *models.Estimate, inputs []PositionInput, defaults positionDefaults) error {
	nextSort := 0
	for _, p := range estimate.Positions {
		if p.Sort >= nextSort {
			nextSort = p.Sort + 1
		}
	}
	for i, in := range inputs {
		switch {
		case in.ID != nil && in.Delete:
			if err := repo.DeletePosition(ctx, estimate.ID, *in.ID); err != nil {
				return nestedSaveError(i, err)
			}
		case in.ID != nil:
			pos, err := repo.FindPosition(ctx, estimate.ID, *in.ID)
			if err != nil {
				return nestedSaveError(i, err)
			}
			if err := in.apply(pos, defaults); err != nil {
				return nestedSaveError(i, err)
			}
			if err := repo.UpdatePosition(ctx, pos); err != nil {
				return nestedSaveError(i, err)
			}
		case in.Delete:
			// Nothing stored yet.
		default:
			pos, err := in.build(estimate.ID, nextSort, defaults)
			if err != nil {
				return nestedSaveError(i, err)
			}
			if err := repo.CreatePositions(ctx, []models.EstimatePosition{pos}); err != nil {
				return nestedSaveError(i, err)
			}
			nextSort++
		}
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	started := time.Now()
	err := newPipeline(OpDelete).
		then(StepValidate, func(context.Context, *gorm.DB) error {
			if id == uuid.Nil {
				return validationError("id is required", nil)
			}
			return nil
		}).
		then(StepPersistRoot, func(ctx context.Context, tx *gorm.DB) error {
			return s.repo.WithTx(tx).Delete(ctx, id)
		}).
		then(StepReconcileChildren, func(ctx context.Context, tx *gorm.DB) error {
			return s.repo.WithTx(tx).DeletePositions(ctx, id)
		}).
		run(ctx, s.tx)
	s.obs.finish(ctx, OpDelete, started, err)
	if err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithEstimateID(ctx, id.String()), "estimate.deleted")
	}
	return nil
}

func (s *service) Duplicate(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	started := time.Now()
	var duplicate *models.Estimate
	err := s.retryOnCollision(ctx, OpDuplicate, s.numbers.auto, func() error {
		var err error
		duplicate, err = s.duplicate(ctx, id)
		return err
	})
	s.obs.finish(ctx, OpDuplicate, started, err)
	if err != nil {
		return nil, err
	}
	s.logDone(ctx, "estimate.duplicated", duplicate, "source_id", id.String())
	return duplicate, nil
}

func (s *service) duplicate(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	var source, duplicate *models.Estimate
	err := newPipeline(OpDuplicate).
		then(StepValidate, func(context.Context, *gorm.DB) error {
			if id == uuid.Nil {
				return validationError("id is required", nil)
			}
			return nil
		}).
		then(StepResolveDefaults, func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			var err error
			source, err = repo.FindByID(ctx, id)
			if err != nil {
				return err
			}
			duplicate = &models.Estimate{
				Status:       enums.EstimateStatusCreated,
				Date:         source.Date,
				UserID:       source.UserID,
				OwnerID:      cloneUUID(source.OwnerID),
				UserVATRegNo: cloneString(source.UserVATRegNo),
				Address:      source.Address,
				TaxType:      source.TaxType,
				TaxNote:      cloneString(source.TaxNote),
				Letter:       cloneString(source.Letter),
				Terms:        cloneString(source.Terms),
				Note:         cloneString(source.Note),
			}
			duplicate.Number, err = s.numbers.assign(ctx, repo, s.today(), "")
			return err
		}).
		then(StepPersistRoot, func(ctx context.Context, tx *gorm.DB) error {
			return s.repo.WithTx(tx).Create(ctx, duplicate)
		}).
		then(StepReconcileChildren, func(ctx context.Context, tx *gorm.DB) error {
			positions := make([]models.EstimatePosition, 0, len(source.Positions))
			for _, p := range source.Positions {
				positions = append(positions, copyPosition(p, duplicate.ID))
			}
			if err := s.repo.WithTx(tx).CreatePositions(ctx, positions); err != nil {
				return fmt.Errorf("%w: %w", ErrNestedSave, err)
			}
			duplicate.Positions = positions
			return nil
		}).
		run(ctx, s.tx)
	if err != nil {
		return nil, err
	}
	return duplicate, nil
}

func (s *service) ConvertToInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	started := time.Now()
	var invoice *models.Invoice
	err := s.retryOnCollision(ctx, OpConvert, true, func() error {
		var err error
		invoice, err = s.convert(ctx, id)
		return err
	})
	s.obs.finish(ctx, OpConvert, started, err)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithEstimateID(ctx, id.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"invoice_id": invoice.ID.String(), "invoice_number": invoice.Number})
		s.logg.Info(logCtx, "estimate.converted")
	}
	return invoice, nil
}

func (s *service) convert(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var (
		source  *models.Estimate
		invoice *models.Invoice
	)
	err := newPipeline(OpConvert).
		then(StepValidate, func(context.Context, *gorm.DB) error {
			if id == uuid.Nil {
				return validationError("id is required", nil)
			}
			return nil
		}).
		then(StepResolveDefaults, func(ctx context.Context, tx *gorm.DB) error {
			var err error
			source, err = s.repo.WithTx(tx).FindByID(ctx, id)
			if err != nil {
				return err
			}
			today := s.today()
			invoice = &models.Invoice{
				Status:       enums.InvoiceStatusCreated,
				Date:         today,
				EstimateID:   &source.ID,
				UserID:       source.UserID,
				OwnerID:      cloneUUID(source.OwnerID),
				UserVATRegNo: cloneString(source.UserVATRegNo),
				Address:      source.Address,
				TaxType:      source.TaxType,
				TaxNote:      cloneString(source.TaxNote),
			}
			invoice.Number, err = s.invoiceNumbers.generate(ctx, s.invoices.WithTx(tx), today)
			return err
		}).
		then(StepPersistRoot, func(ctx context.Context, tx *gorm.DB) error {
			err := s.invoices.WithTx(tx).Create(ctx, invoice)
			for _, name := range invoiceNumberConstraints {
				if db.IsUniqueViolation(err, name) {
					return fmt.Errorf("%w: %s", refnumber.ErrDuplicateNumber, invoice.Number)
				}
			}
			return err
		}).
		then(StepReconcileChildren, func(ctx context.Context, tx *gorm.DB) error {
			positions := make([]models.InvoicePosition, 0, len(source.Positions))
			for _, p := range source.Positions {
				if p.IsOptional {
					continue
				}
				positions = append(positions, invoicePosition(p, invoice.ID, len(positions)))
			}
			if err := s.invoices.WithTx(tx).CreatePositions(ctx, positions); err != nil {
				return fmt.Errorf("%w: %w", ErrNestedSave, err)
			}
			invoice.Positions = positions
			return nil
		}).
		run(ctx, s.tx)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// ChangeStatus assigns any defined status; transitions are not restricted.
func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, status enums.EstimateStatus) (*models.Estimate, error) {
	started := time.Now()
	err := newPipeline(OpStatus).
		then(StepValidate, func(context.Context, *gorm.DB) error {
			if !status.IsValid() {
				return validationError("invalid status", map[string]any{"status": status})
			}
			return nil
		}).
		then(StepPersistRoot, func(ctx context.Context, tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpdateStatus(ctx, id, status)
		}).
		run(ctx, s.tx)
	s.obs.finish(ctx, OpStatus, started, err)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Cancel moves a created estimate to cancelled.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	started := time.Now()
	err := newPipeline(OpCancel).
		then(StepResolveDefaults, func(ctx context.Context, tx *gorm.DB) error {
			estimate, err := s.repo.WithTx(tx).FindByID(ctx, id)
			if err != nil {
				return err
			}
			if !estimate.IsCancelable() {
				return fmt.Errorf("%w: status %s", ErrNotCancelable, estimate.Status)
			}
			return nil
		}).
		then(StepPersistRoot, func(ctx context.Context, tx *gorm.DB) error {
			return s.repo.WithTx(tx).UpdateStatus(ctx, id, enums.EstimateStatusCancelled)
		}).
		run(ctx, s.tx)
	s.obs.finish(ctx, OpCancel, started, err)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) today() time.Time {
	return dateOnly(s.clock())
}

// logDone logs a finished operation; extra holds key/value pairs.
func (s *service) logDone(ctx context.Context, msg string, estimate *models.Estimate, extra ...string) {
	if s.logg == nil || estimate == nil {
		return
	}
	fields := map[string]any{
		"number":    estimate.Number,
		"positions": len(estimate.Positions),
	}
	for i := 0; i+1 < len(extra); i += 2 {
		fields[extra[i]] = extra[i+1]
	}
	ctx = s.logg.WithEstimateID(ctx, estimate.ID.String())
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}

func nestedSaveError(index int, err error) error {
	return fmt.Errorf("%w: position %d: %w", ErrNestedSave, index, err)
}

func copyPosition(p models.EstimatePosition, estimateID uuid.UUID) models.EstimatePosition {
	return models.EstimatePosition{
		EstimateID:     estimateID,
		UserID:         p.UserID,
		Description:    p.Description,
		Tags:           append(models.NormalizeTags(nil), p.Tags...),
		Quantity:       p.Quantity,
		Amount:         p.Amount,
		AmountCurrency: p.AmountCurrency,
		AmountType:     p.AmountType,
		AmountRate:     p.AmountRate,
		IsOptional:     p.IsOptional,
		TaxType:        p.TaxType,
		Sort:           p.Sort,
	}
}

func invoicePosition(p models.EstimatePosition, invoiceID uuid.UUID, sort int) models.InvoicePosition {
	return models.InvoicePosition{
		InvoiceID:      invoiceID,
		UserID:         p.UserID,
		Description:    p.Description,
		Tags:           append(models.NormalizeTags(nil), p.Tags...),
		Quantity:       p.Quantity,
		Amount:         p.Amount,
		AmountCurrency: p.AmountCurrency,
		AmountType:     p.AmountType,
		AmountRate:     p.AmountRate,
		TaxType:        p.TaxType,
		Sort:           sort,
	}
}

// settingText picks the letter or terms of a new estimate. An explicit value
// wins over the configured default; a disabled setting yields nothing.
func settingText(explicit *string, setting config.TextSetting, ctx config.TextContext) *string {
	if !setting.Enabled() {
		return nil
	}
	if explicit != nil {
		return optionalString(*explicit)
	}
	return optionalString(setting.Resolve(ctx))
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneUUID(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
