// Package users exposes the customers estimates are addressed to.
package users

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/estimates-backend/api/responses"
	"github.com/angelmondragon/estimates-backend/api/validators"
	"github.com/angelmondragon/estimates-backend/internal/clientgroups"
	internalusers "github.com/angelmondragon/estimates-backend/internal/users"
	"github.com/angelmondragon/estimates-backend/pkg/db"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/estimates-backend/pkg/errors"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
	"github.com/angelmondragon/estimates-backend/pkg/pagination"
)

// Store is the persistence surface the user handlers need.
type Store interface {
	Create(ctx context.Context, dto internalusers.CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, limit int) ([]models.User, error)
}

// Classifier resolves the client group of a user.
type Classifier interface {
	Resolve(user models.User) (clientgroups.Resolution, bool)
}

var uniqueUserConstraints = []string{"uq_users_number", "uq_users_email", "users.number", "users.email"}

type clientGroupDTO struct {
	Name           string `json:"name"`
	Title          string `json:"title"`
	TaxType        string `json:"tax_type"`
	TaxNote        string `json:"tax_note,omitempty"`
	AmountCurrency string `json:"amount_currency"`
	AmountType     string `json:"amount_type"`
}

type userDetailDTO struct {
	*internalusers.UserDTO
	ClientGroup *clientGroupDTO `json:"client_group"`
}

func List(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := store.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users"))
			return
		}
		out := make([]*internalusers.UserDTO, 0, len(rows))
		for i := range rows {
			out = append(out, internalusers.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func Create(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload internalusers.CreateUserDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Email = validators.SanitizeString(payload.Email, 254)
		payload.Number = validators.SanitizeString(payload.Number, 64)

		user, err := store.Create(r.Context(), payload)
		if err != nil {
			if isDuplicateUser(err) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user number or email already exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user"))
			return
		}

		if logg != nil {
			ctx := logg.WithUserID(r.Context(), user.ID.String())
			logg.Info(ctx, "user.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalusers.FromModel(user))
	}
}

// Detail returns a user along with the client group it currently resolves to.
func Detail(store Store, groups Classifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := store.FindByID(r.Context(), id)
		if err != nil {
			if db.IsNotFound(err) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user"))
			return
		}

		out := userDetailDTO{UserDTO: internalusers.FromModel(user)}
		if groups != nil {
			if res, ok := groups.Resolve(*user); ok {
				out.ClientGroup = &clientGroupDTO{
					Name:           res.Group.Name,
					Title:          res.Group.Title,
					TaxType:        res.TaxType.Name,
					TaxNote:        res.TaxType.Note,
					AmountCurrency: string(res.Group.AmountCurrency),
					AmountType:     string(res.Group.AmountType),
				}
			}
		}
		responses.WriteSuccess(w, out)
	}
}

func isDuplicateUser(err error) bool {
	for _, name := range uniqueUserConstraints {
		if db.IsUniqueViolation(err, name) {
			return true
		}
	}
	return false
}
