package estimates

import (
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/estimates-backend/pkg/errors"
	"github.com/angelmondragon/estimates-backend/pkg/money"
	"github.com/angelmondragon/estimates-backend/pkg/refnumber"
)

var (
	// ErrNoClientGroup is returned when no client group matches the user an
	// estimate is created for.
	ErrNoClientGroup = errors.New("no client group matches user")
	// ErrNestedSave wraps any failure while reconciling positions.
	ErrNestedSave = errors.New("saving positions failed")
	// ErrNotCancelable is returned by Cancel for estimates past the created status.
	ErrNotCancelable = errors.New("estimate is not cancelable")
)

// classify maps err onto a coded error. A coded error anywhere in the chain
// keeps its classification; the result still unwraps to every sentinel in err.
func classify(err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		if typed == err {
			return typed
		}
		return pkgerrors.Wrap(typed.Code(), err, typed.Message()).WithDetails(typed.Details())
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "record not found")
	case errors.Is(err, ErrNoClientGroup):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "user does not belong to any client group")
	case errors.Is(err, ErrNotCancelable):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "only created estimates can be cancelled")
	case errors.Is(err, refnumber.ErrDuplicateNumber):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "number already in use")
	case errors.Is(err, refnumber.ErrNumberRequired):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "number is required")
	case errors.Is(err, refnumber.ErrNumberGeneration):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "cannot generate number")
	case errors.Is(err, money.ErrCurrencyMismatch):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "currency mismatch")
	case errors.Is(err, ErrNestedSave):
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "estimate positions could not be stored")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "estimate operation failed")
	}
}

func validationError(message string, details map[string]any) *pkgerrors.Error {
	err := pkgerrors.New(pkgerrors.CodeValidation, message)
	if details != nil {
		err = err.WithDetails(details)
	}
	return err
}
