package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopolrisk/internal/dataset"
	apperrors "geopolrisk/internal/errors"
	"geopolrisk/pkg/contracts/domain"
)

type fakeService struct {
	resp    domain.AssessmentResponse
	err     error
	lastReq domain.AssessmentRequest
}

func (f *fakeService) Run(_ context.Context, req domain.AssessmentRequest) (domain.AssessmentResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeService) RunByExporter(_ context.Context, req domain.AssessmentRequest) (domain.AssessmentResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakeSink struct {
	records []domain.RiskRecord
}

func (f *fakeSink) Upsert(_ context.Context, records []domain.RiskRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validBody = `{
	"periods": [2020],
	"countries": ["Germany"],
	"resources": ["Cobalt"]
}`

func TestRunAssessment(t *testing.T) {
	svc := &fakeService{resp: domain.AssessmentResponse{
		RunID: "test-run",
		Records: []domain.RiskRecord{
			{ID: "8105202762020", Country: "Germany", Resource: "Cobalt", Year: 2020, Score: 0.232},
		},
	}}
	sink := &fakeSink{}
	h := NewAssessmentHandler(svc, sink, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test-run", resp.RunID)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "Germany", resp.Records[0].Country)

	assert.Equal(t, []int{2020}, svc.lastReq.Periods)
	assert.Len(t, sink.records, 1)
}

func TestRunAssessmentRejectsMalformedJSON(t *testing.T) {
	h := NewAssessmentHandler(&fakeService{}, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRunAssessmentRejectsMissingFields(t *testing.T) {
	h := NewAssessmentHandler(&fakeService{}, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"periods":[2020]}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRunAssessmentMapsDomainErrors(t *testing.T) {
	svc := &fakeService{err: apperrors.NewValidationError("regions", "unknown member")}
	h := NewAssessmentHandler(svc, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var p apperrors.ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, apperrors.TypeValidation, p.Type)
}

func TestRouterEndpoints(t *testing.T) {
	ref := dataset.NewStaticRef(dataset.StaticData{
		Resources: []domain.Resource{{Name: "Cobalt", HSCode: 810520, Sheet: "Cobalt"}},
		Countries: []domain.Country{{Name: "Germany", ISO: 276}},
	})
	router := NewRouter(RouterDeps{
		Ref:     ref,
		Service: &fakeService{},
		Logger:  discardLogger(),
	})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reference resources", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reference/resources", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resources []domain.Resource
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resources))
		require.Len(t, resources, 1)
		assert.Equal(t, "Cobalt", resources[0].Name)
	})

	t.Run("reference countries", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reference/countries", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var countries []domain.Country
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &countries))
		require.Len(t, countries, 1)
		assert.Equal(t, 276, countries[0].ISO)
	})
}
