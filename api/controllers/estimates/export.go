package estimates

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/estimates-backend/api/responses"
	"github.com/angelmondragon/estimates-backend/api/validators"
	"github.com/angelmondragon/estimates-backend/internal/documents"
	internalestimates "github.com/angelmondragon/estimates-backend/internal/estimates"
	"github.com/angelmondragon/estimates-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/estimates-backend/pkg/errors"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
)

// ExportOptions configure document rendering.
type ExportOptions struct {
	Sender     config.BillingConfig
	GroupOrder []string
	BCC        string
}

// Export renders an estimate as a PDF or XLSX download.
func Export(svc internalestimates.Service, opts ExportOptions, logg *logger.Logger) http.HandlerFunc {
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
		format, err := documents.ParseFormat(chi.URLParam(r, "format"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported format").WithDetails(map[string]any{"supported": []string{string(documents.FormatPDF), string(documents.FormatXLSX)}}))
			return
		}

		estimate, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data := documents.BuildEstimate(*estimate, opts.Sender, documents.Options{
			GroupOrder: opts.GroupOrder,
			BCC:        opts.BCC,
		})
		body, err := documents.Render(format, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render estimate"))
			return
		}

		logExport(r, logg, estimate, string(format), len(body))
		responses.WriteFile(w, format.ContentType(), format.Filename(estimate.Number), body)
	}
}
