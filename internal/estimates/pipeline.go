package estimates

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/pkg/logger"
	"github.com/angelmondragon/estimates-backend/pkg/metrics"
)

// Step names, in the order a pipeline runs them.
const (
	StepValidate          = "validate"
	StepResolveDefaults   = "resolve-defaults"
	StepPersistRoot       = "persist-root"
	StepReconcileChildren = "reconcile-children"
	StepCommit            = "commit"
)

// Operation names used for logging and metrics.
const (
	OpCreate    = "create"
	OpSave      = "save"
	OpDelete    = "delete"
	OpDuplicate = "duplicate"
	OpConvert   = "convert"
	OpStatus    = "status"
	OpCancel    = "cancel"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stepFunc func(ctx context.Context, tx *gorm.DB) error

type step struct {
	name string
	run  stepFunc
}

// pipeline runs its steps in order inside one transaction. The first failing
// step aborts the unit; the returned error carries that step's name.
type pipeline struct {
	operation string
	steps     []step
}

func newPipeline(operation string) *pipeline {
	return &pipeline{operation: operation}
}

func (p *pipeline) then(name string, fn stepFunc) *pipeline {
	p.steps = append(p.steps, step{name: name, run: fn})
	return p
}

func (p *pipeline) run(ctx context.Context, tx txRunner) error {
	failed := ""
	err := tx.WithTx(ctx, func(db *gorm.DB) error {
		for _, s := range p.steps {
			if s.run == nil {
				continue
			}
			if err := s.run(ctx, db); err != nil {
				failed = s.name
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if failed == "" {
		failed = StepCommit
	}
	return classify(err).WithStep(failed)
}

// observer reports pipeline outcomes to logs and metrics.
type observer struct {
	logg    *logger.Logger
	metrics *metrics.LifecycleMetrics
}

func (o observer) finish(ctx context.Context, operation string, started time.Time, err error) {
	o.metrics.ObserveDuration(operation, time.Since(started))
	if err == nil {
		o.metrics.IncSuccess(operation)
		return
	}
	step := ""
	if typed := classify(err); typed != nil {
		step = typed.Step()
	}
	o.metrics.IncFailure(operation, step)
	if o.logg != nil {
		ctx = o.logg.WithFields(ctx, map[string]any{"operation": operation, "step": step})
		o.logg.Error(ctx, "estimate.operation_failed", err)
	}
}
