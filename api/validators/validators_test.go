package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/estimates-backend/pkg/errors"
)

type positionBody struct {
	Description    string `json:"description" validate:"required"`
	AmountCurrency string `json:"amount_currency" validate:"omitempty,currency"`
	AmountType     string `json:"amount_type" validate:"omitempty,amount_type"`
}

type estimateBody struct {
	Status    string         `json:"status" validate:"omitempty,estimate_status"`
	Positions []positionBody `json:"positions" validate:"dive"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
	var body estimateBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDecodeJSONBodyReportsNestedFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"status":"lost","positions":[{"description":"ok"},{"description":"","amount_currency":"XXX","amount_type":"tax"}]}`))
	var body estimateBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a known estimate status", details["status"])
	assert.Equal(t, "is required", details["positions[1].description"])
	assert.Equal(t, "must be a supported currency code", details["positions[1].amount_currency"])
	assert.Equal(t, "must be net or gross", details["positions[1].amount_type"])
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"status":"sent","positions":[{"description":"Setup","amount_currency":"USD","amount_type":"net"}]}`))
	var body estimateBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "USD", body.Positions[0].AmountCurrency)
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=2024-01-31&user_id=nope&limit=500", nil)

	from, err := ParseQueryDate(req, "from")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", from.Format("2006-01-02"))

	to, err := ParseQueryDate(req, "to")
	require.NoError(t, err)
	assert.Nil(t, to)

	_, err = ParseQueryUUID(req, "user_id")
	require.Error(t, err)

	_, err = ParseQueryInt(req, "limit", 25, 1, 100)
	require.Error(t, err)
}

func TestParseURLUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("estimateId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	_, err := ParseURLUUID(req, "estimateId")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abc  ", 10))
	assert.Equal(t, "ab", SanitizeString("abcdef", 2))
	assert.Equal(t, "M", SanitizeString("Mü", 2))
}
