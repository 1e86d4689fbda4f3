// Package estimates exposes the estimate lifecycle over HTTP.
package estimates

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/estimates-backend/api/responses"
	"github.com/angelmondragon/estimates-backend/api/validators"
	internalestimates "github.com/angelmondragon/estimates-backend/internal/estimates"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/estimates-backend/pkg/errors"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
	"github.com/angelmondragon/estimates-backend/pkg/pagination"
)

const (
	estimateIDParam = "estimateId"
	maxSearchLen    = 100
	minYear         = 1970
	maxYear         = 9999
)

// DetailOptions tune the derived fields of the detail view.
type DetailOptions struct {
	OverdueAfter time.Duration
	Now          func() time.Time
}

func (o DetailOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// List returns a cursor page of estimates matching the query filters.
func List(svc internalestimates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}

		filter, err := buildListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := listDTO{Items: make([]estimateDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
		for _, e := range page.Items {
			out.Items = append(out.Items, estimateFrom(e))
		}
		responses.WriteSuccess(w, out)
	}
}

func buildListFilter(r *http.Request) (internalestimates.ListFilter, error) {
	var filter internalestimates.ListFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseEstimateStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}

	userID, err := validators.ParseQueryUUID(r, "user_id")
	if err != nil {
		return filter, err
	}
	filter.UserID = userID

	year, err := validators.ParseQueryInt(r, "year", 0, minYear, maxYear)
	if err != nil {
		return filter, err
	}
	filter.Year = year

	if filter.From, err = validators.ParseQueryDate(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = validators.ParseQueryDate(r, "to"); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}

	filter.Search = validators.SanitizeString(q.Get("search"), maxSearchLen)
	return filter, nil
}

// Detail returns one estimate with its positions and derived totals.
func Detail(svc internalestimates.Service, opts DetailOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}
		id, err := validators.ParseURLUUID(r, estimateIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		estimate, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detailFrom(*estimate, opts.now(), opts.OverdueAfter))
	}
}

// Create runs the create pipeline and answers 201 with the new estimate.
func Create(svc internalestimates.Service, opts DetailOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}

		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		estimate, err := svc.Create(r.Context(), payload.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detailFrom(*estimate, opts.now(), opts.OverdueAfter))
	}
}

// Update saves root changes and the nested positions payload atomically.
func Update(svc internalestimates.Service, opts DetailOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}
		id, err := validators.ParseURLUUID(r, estimateIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		estimate, err := svc.Save(r.Context(), id, payload.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detailFrom(*estimate, opts.now(), opts.OverdueAfter))
	}
}

// Delete removes an estimate and its positions.
func Delete(svc internalestimates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}
		id, err := validators.ParseURLUUID(r, estimateIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// Duplicate copies an estimate with a fresh number.
func Duplicate(svc internalestimates.Service, opts DetailOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}
		id, err := validators.ParseURLUUID(r, estimateIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		copied, err := svc.Duplicate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detailFrom(*copied, opts.now(), opts.OverdueAfter))
	}
}

// Convert turns an estimate into an invoice.
func Convert(svc internalestimates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}
		id, err := validators.ParseURLUUID(r, estimateIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.ConvertToInvoice(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoiceFrom(*invoice))
	}
}

// ChangeStatus moves an estimate to the requested status.
func ChangeStatus(svc internalestimates.Service, opts DetailOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}
		id, err := validators.ParseURLUUID(r, estimateIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		estimate, err := svc.ChangeStatus(r.Context(), id, enums.EstimateStatus(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detailFrom(*estimate, opts.now(), opts.OverdueAfter))
	}
}

// Cancel cancels an estimate that has not been sent yet.
func Cancel(svc internalestimates.Service, opts DetailOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "estimates service unavailable"))
			return
		}
		id, err := validators.ParseURLUUID(r, estimateIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		estimate, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detailFrom(*estimate, opts.now(), opts.OverdueAfter))
	}
}

// Stats returns the dashboard summary for ?year=, defaulting to this year.
func Stats(svc internalestimates.StatsService, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats service unavailable"))
			return
		}
		year, err := validators.ParseQueryInt(r, "year", now().Year(), minYear, maxYear)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Summary(r.Context(), year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statsDTO{
			Year:        stats.Year,
			TotalNet:    moniesFrom(stats.TotalNet),
			Open:        stats.Open,
			Pending:     stats.Pending,
			Accepted:    stats.Accepted,
			SuccessRate: stats.SuccessRate,
		})
	}
}

func logExport(r *http.Request, logg *logger.Logger, estimate *models.Estimate, format string, size int) {
	if logg == nil {
		return
	}
	ctx := logg.WithEstimateID(r.Context(), estimate.ID.String())
	ctx = logg.WithFields(ctx, map[string]any{"format": format, "bytes": size, "number": estimate.Number})
	logg.Info(ctx, "estimate.exported")
}
