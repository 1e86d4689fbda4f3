package estimates

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalestimates "github.com/angelmondragon/estimates-backend/internal/estimates"
	"github.com/angelmondragon/estimates-backend/pkg/config"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/estimates-backend/pkg/errors"
	"github.com/angelmondragon/estimates-backend/pkg/money"
	"github.com/angelmondragon/estimates-backend/pkg/pagination"
)

type stubService struct {
	get          func(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
	list         func(ctx context.Context, filter internalestimates.ListFilter, params pagination.Params) (pagination.Page[models.Estimate], error)
	create       func(ctx context.Context, input internalestimates.CreateInput) (*models.Estimate, error)
	save         func(ctx context.Context, id uuid.UUID, input internalestimates.SaveInput) (*models.Estimate, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	changeStatus func(ctx context.Context, id uuid.UUID, status enums.EstimateStatus) (*models.Estimate, error)
}

func (s *stubService) Get(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	return s.get(ctx, id)
}

func (s *stubService) List(ctx context.Context, filter internalestimates.ListFilter, params pagination.Params) (pagination.Page[models.Estimate], error) {
	return s.list(ctx, filter, params)
}

func (s *stubService) Create(ctx context.Context, input internalestimates.CreateInput) (*models.Estimate, error) {
	return s.create(ctx, input)
}

func (s *stubService) Save(ctx context.Context, id uuid.UUID, input internalestimates.SaveInput) (*models.Estimate, error) {
	return s.save(ctx, id, input)
}

func (s *stubService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubService) Duplicate(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	panic("not implemented")
}

func (s *stubService) ConvertToInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	panic("not implemented")
}

func (s *stubService) ChangeStatus(ctx context.Context, id uuid.UUID, status enums.EstimateStatus) (*models.Estimate, error) {
	return s.changeStatus(ctx, id, status)
}

func (s *stubService) Cancel(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	panic("not implemented")
}

type stubStats struct {
	year int
}

func (s *stubStats) TotalNet(ctx context.Context, year int) (money.Monies, error) {
	panic("not implemented")
}

func (s *stubStats) PendingCount(ctx context.Context) (int64, error) {
	panic("not implemented")
}

func (s *stubStats) SuccessRate(ctx context.Context) (decimal.Decimal, error) {
	panic("not implemented")
}

func (s *stubStats) Summary(ctx context.Context, year int) (internalestimates.Stats, error) {
	s.year = year
	return internalestimates.Stats{
		Year:        year,
		TotalNet:    money.Monies{enums.CurrencyEUR: money.New(50000, enums.CurrencyEUR)},
		Open:        3,
		Pending:     1,
		Accepted:    2,
		SuccessRate: decimal.NewFromInt(50),
	}, nil
}

func sampleEstimate() *models.Estimate {
	id := uuid.New()
	return &models.Estimate{
		ID:      id,
		Number:  "2024-001",
		Status:  enums.EstimateStatusSent,
		Date:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		UserID:  uuid.New(),
		TaxType: "domestic",
		Positions: []models.EstimatePosition{
			{
				ID:             uuid.New(),
				EstimateID:     id,
				Description:    "Backend work",
				Tags:           []string{"$backend"},
				Quantity:       decimal.NewFromInt(2),
				Amount:         10000,
				AmountCurrency: enums.CurrencyEUR,
				AmountType:     enums.AmountTypeNet,
				AmountRate:     decimal.NewFromInt(19),
			},
			{
				ID:             uuid.New(),
				EstimateID:     id,
				Description:    "Optional support",
				Quantity:       decimal.NewFromInt(1),
				Amount:         5000,
				AmountCurrency: enums.CurrencyEUR,
				AmountType:     enums.AmountTypeNet,
				AmountRate:     decimal.NewFromInt(19),
				IsOptional:     true,
			},
		},
	}
}

func withParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var envelope struct {
		Data  map[string]any `json:"data"`
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	if envelope.Error != nil {
		t.Fatalf("unexpected error payload: %v", envelope.Error)
	}
	return envelope.Data
}

func errorCode(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestListParsesFilters(t *testing.T) {
	userID := uuid.New()
	var gotFilter internalestimates.ListFilter
	var gotParams pagination.Params
	svc := &stubService{
		list: func(ctx context.Context, filter internalestimates.ListFilter, params pagination.Params) (pagination.Page[models.Estimate], error) {
			gotFilter = filter
			gotParams = params
			return pagination.Page[models.Estimate]{Items: []models.Estimate{*sampleEstimate()}, NextCursor: "next"}, nil
		},
	}

	url := "/api/v1/estimates?status=sent&user_id=" + userID.String() + "&year=2024&search=%20acme%20&limit=10&cursor=abc"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotNil(t, gotFilter.Status)
	assert.Equal(t, enums.EstimateStatusSent, *gotFilter.Status)
	require.NotNil(t, gotFilter.UserID)
	assert.Equal(t, userID, *gotFilter.UserID)
	assert.Equal(t, 2024, gotFilter.Year)
	assert.Equal(t, "acme", gotFilter.Search)
	assert.Equal(t, pagination.Params{Limit: 10, Cursor: "abc"}, gotParams)

	data := decodeData(t, resp.Body)
	assert.Equal(t, "next", data["next_cursor"])
	items := data["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "#2024-001", items[0].(map[string]any)["title"])
}

func TestListRejectsBadFilters(t *testing.T) {
	svc := &stubService{}
	cases := []string{
		"/api/v1/estimates?status=lost",
		"/api/v1/estimates?user_id=nope",
		"/api/v1/estimates?from=2024-05-01&to=2024-04-01",
		"/api/v1/estimates?limit=1000",
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		resp := httptest.NewRecorder()
		List(svc, nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", url, resp.Code)
		}
		if code := errorCode(t, resp.Body); code != string(pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation code, got %s", url, code)
		}
	}
}

func TestDetailIncludesDerivedFields(t *testing.T) {
	estimate := sampleEstimate()
	svc := &stubService{
		get: func(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
			require.Equal(t, estimate.ID, id)
			return estimate, nil
		},
	}
	opts := DetailOptions{
		OverdueAfter: 14 * 24 * time.Hour,
		Now:          func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) },
	}

	req := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{estimateIDParam: estimate.ID.String()})
	resp := httptest.NewRecorder()
	Detail(svc, opts, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	data := decodeData(t, resp.Body)
	assert.Equal(t, true, data["is_overdue"])
	assert.Equal(t, false, data["is_cancelable"])
	assert.Equal(t, true, data["has_optional_positions"])

	totals := data["totals"].(map[string]any)
	net := totals["net"].([]any)[0].(map[string]any)
	assert.Equal(t, "200.00 EUR", net["formatted"])

	withOptional := data["totals_with_optional"].(map[string]any)
	net = withOptional["net"].([]any)[0].(map[string]any)
	assert.Equal(t, "250.00 EUR", net["formatted"])

	positions := data["positions"].([]any)
	require.Len(t, positions, 2)
	assert.Equal(t, "$backend", positions[0].(map[string]any)["group"])
}

func TestDetailMapsNotFound(t *testing.T) {
	svc := &stubService{
		get: func(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
		},
	}
	req := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{estimateIDParam: uuid.NewString()})
	resp := httptest.NewRecorder()
	Detail(svc, DetailOptions{}, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeNotFound), errorCode(t, resp.Body))
}

func TestCreateDecodesPayload(t *testing.T) {
	userID := uuid.New()
	var got internalestimates.CreateInput
	svc := &stubService{
		create: func(ctx context.Context, input internalestimates.CreateInput) (*models.Estimate, error) {
			got = input
			e := sampleEstimate()
			e.UserID = input.UserID
			return e, nil
		},
	}
	body := `{"user_id":"` + userID.String() + `","date":"2024-03-01","positions":[{"description":"Design","amount":1500,"amount_currency":"EUR","amount_type":"net","tags":["$Design"]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Create(svc, DetailOptions{}, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, userID, got.UserID)
	require.NotNil(t, got.Date)
	assert.Equal(t, "2024-03-01", got.Date.Format(time.DateOnly))
	require.Len(t, got.Positions, 1)
	assert.Equal(t, int64(1500), got.Positions[0].Amount)
	assert.Equal(t, enums.CurrencyEUR, got.Positions[0].AmountCurrency)
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	svc := &stubService{}
	cases := []string{
		`{}`,
		`{"user_id":"` + uuid.NewString() + `","date":"03/01/2024"}`,
		`{"user_id":"` + uuid.NewString() + `","positions":[{"amount_currency":"XXX"}]}`,
		`{"user_id":"` + uuid.NewString() + `","unknown":true}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", strings.NewReader(body))
		resp := httptest.NewRecorder()
		Create(svc, DetailOptions{}, nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.Code)
		}
	}
}

func TestUpdatePassesNestedPositions(t *testing.T) {
	estimate := sampleEstimate()
	removed := estimate.Positions[1].ID
	var got internalestimates.SaveInput
	svc := &stubService{
		save: func(ctx context.Context, id uuid.UUID, input internalestimates.SaveInput) (*models.Estimate, error) {
			got = input
			return estimate, nil
		},
	}
	body := `{"status":"accepted","owner_id":null,"positions":[{"id":"` + removed.String() + `","_delete":true}]}`
	req := withParams(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body)), map[string]string{estimateIDParam: estimate.ID.String()})
	resp := httptest.NewRecorder()
	Update(svc, DetailOptions{}, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotNil(t, got.Status)
	assert.Equal(t, enums.EstimateStatusAccepted, *got.Status)
	assert.True(t, got.OwnerID.Valid)
	assert.Nil(t, got.OwnerID.Value)
	require.Len(t, got.Positions, 1)
	assert.True(t, got.Positions[0].Delete)
	assert.Equal(t, removed, *got.Positions[0].ID)
}

func TestDeleteWritesNoContent(t *testing.T) {
	called := false
	svc := &stubService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			called = true
			return nil
		},
	}
	req := withParams(httptest.NewRequest(http.MethodDelete, "/", nil), map[string]string{estimateIDParam: uuid.NewString()})
	resp := httptest.NewRecorder()
	Delete(svc, nil).ServeHTTP(resp, req)

	if !called || resp.Code != http.StatusNoContent {
		t.Fatalf("expected delete with 204, got called=%v code=%d", called, resp.Code)
	}
}

func TestChangeStatusMapsStateConflict(t *testing.T) {
	svc := &stubService{
		changeStatus: func(ctx context.Context, id uuid.UUID, status enums.EstimateStatus) (*models.Estimate, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "estimate cannot be canceled")
		},
	}
	req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"cancelled"}`)), map[string]string{estimateIDParam: uuid.NewString()})
	resp := httptest.NewRecorder()
	ChangeStatus(svc, DetailOptions{}, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), errorCode(t, resp.Body))
}

func TestStatsDefaultsToCurrentYear(t *testing.T) {
	stats := &stubStats{}
	now := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	req := httptest.NewRequest(http.MethodGet, "/api/v1/estimates/stats", nil)
	resp := httptest.NewRecorder()
	Stats(stats, now, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 2025, stats.year)
	data := decodeData(t, resp.Body)
	assert.Equal(t, float64(3), data["open"])
	assert.Equal(t, "50", data["success_rate"])
	net := data["total_net"].([]any)[0].(map[string]any)
	assert.Equal(t, "500.00 EUR", net["formatted"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/estimates/stats?year=2023", nil)
	resp = httptest.NewRecorder()
	Stats(stats, now, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2023, stats.year)
}

func TestExportRendersDocument(t *testing.T) {
	estimate := sampleEstimate()
	svc := &stubService{
		get: func(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
			return estimate, nil
		},
	}
	opts := ExportOptions{Sender: config.BillingConfig{Name: "Jane Doe", Address: "Main St 1\n10115 Berlin"}}

	req := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{
		estimateIDParam: estimate.ID.String(),
		"format":        "PDF",
	})
	resp := httptest.NewRecorder()
	Export(svc, opts, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "estimate-2024-001.pdf")
	assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF-")))

	req = withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{
		estimateIDParam: estimate.ID.String(),
		"format":        "docx",
	})
	resp = httptest.NewRecorder()
	Export(svc, opts, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
