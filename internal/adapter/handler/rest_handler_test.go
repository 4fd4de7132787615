package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/core/domain"
)

const testToken = "s3cret"

func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}

func serve(t *testing.T, token, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	NewRouter(NewRestHandler("creditrisk-test"), token).ServeHTTP(rec, req)
	return rec
}

func authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testToken}
}

func decodeScore(t *testing.T, rec *httptest.ResponseRecorder) ScoreResponse {
	t.Helper()
	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth_NoAuthRequired(t *testing.T) {
	rec := serve(t, testToken, http.MethodGet, "/api/v1/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "creditrisk-test", body["service"])
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header map[string]string
		want   int
	}{
		{"missing token", testToken, nil, http.StatusUnauthorized},
		{"wrong token", testToken, map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"not bearer", testToken, map[string]string{"Authorization": testToken}, http.StatusUnauthorized},
		{"valid token", testToken, authHeader(), http.StatusOK},
		{"auth disabled", "", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.token, http.MethodGet, "/api/v1/score/defaults", "", tt.header)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestScoreDefaults(t *testing.T) {
	rec := serve(t, testToken, http.MethodGet, "/api/v1/score/defaults", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeScore(t, rec)
	assert.Equal(t, domain.Reject, resp.Recommendation)
	assert.Equal(t, "91.60", resp.FinalPercentage)
	assert.Equal(t, "Probability of Default: 91.60%", resp.Message)
	assert.InDelta(t, 0.9160208240, resp.FinalProbability, 1e-9)
	require.Len(t, resp.SubScores, 5)
	assert.Equal(t, "93.12", resp.SubScores[0].Percentage)
	assert.Equal(t, "Credit History", resp.SubScores[0].Label)
	assert.Nil(t, resp.SubScores[0].Linear)
	assert.Equal(t, domain.DefaultRecord(), resp.Attributes)
}

func TestScore(t *testing.T) {
	body := `{"attributes": {
		"ExternalRiskEstimate": 90, "PercentTradesNeverDelq": 100,
		"NumInqLast6M": 0, "NumInqLast6Mexcl7days": 0,
		"NetFractionRevolvingBurden": 0, "NumTrades60Ever2DerogPubRec": 0,
		"NumTrades90Ever2DerogPubRec": 0, "MSinceMostRecentDelq": 100,
		"PercentTradesWBalance": 0, "NumBank2NatlTradesWHighUtilization": 5
	}}`

	rec := serve(t, testToken, http.MethodPost, "/api/v1/score", body, authHeader())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeScore(t, rec)
	assert.Equal(t, domain.Accept, resp.Recommendation)
	assert.Equal(t, "11.81", resp.FinalPercentage)
	assert.Equal(t, "Probability of Non-Default", resp.DisplayedLabel)
	assert.Equal(t, "88.19", resp.DisplayedPercentage)
	assert.Empty(t, resp.Clamped)
}

func TestScore_EmptyBodyUsesDefaults(t *testing.T) {
	rec := serve(t, "", http.MethodPost, "/api/v1/score", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "91.60", decodeScore(t, rec).FinalPercentage)
}

func TestScore_ClampsOutOfRange(t *testing.T) {
	rec := serve(t, "", http.MethodPost, "/api/v1/score", `{"attributes":{"MaxDelqEver":-9,"NumTotalTrades":1000}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeScore(t, rec)
	assert.Equal(t, []domain.Field{domain.MaxDelqEver, domain.NumTotalTrades}, resp.Clamped)
	assert.Equal(t, 1, resp.Attributes[domain.MaxDelqEver])
	assert.Equal(t, 110, resp.Attributes[domain.NumTotalTrades])
}

func TestScore_Explain(t *testing.T) {
	for _, target := range []string{"/api/v1/score?explain=true", "/api/v1/score"} {
		body := `{"attributes":{},"explain":true}`
		if strings.Contains(target, "?") {
			body = `{}`
		}

		rec := serve(t, "", http.MethodPost, target, body, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeScore(t, rec)
		ch := resp.SubScores[0]
		require.NotNil(t, ch.Linear)
		require.NotNil(t, ch.Bias)
		assert.InDelta(t, 2.606, *ch.Linear, 1e-9)
		assert.Equal(t, 8.2710, *ch.Bias)
		require.Len(t, ch.Contributions, 3)
		assert.Equal(t, domain.ExternalRiskEstimate, ch.Contributions[0].Field)
	}
}

func TestScore_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown attribute", `{"attributes":{"AnnualIncome":90000}}`, "unknown attribute"},
		{"unknown request field", `{"applicant":{}}`, "invalid request body"},
		{"fractional value", `{"attributes":{"NumTotalTrades":2.5}}`, "invalid request body"},
		{"malformed json", `{"attributes":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, "", http.MethodPost, "/api/v1/score", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.want)
		})
	}
}

func TestScore_BodyTooLarge(t *testing.T) {
	body := strings.Repeat(" ", MaxBodyBytes+1) + "{}"
	rec := serve(t, "", http.MethodPost, "/api/v1/score", body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestScore_MethodNotAllowed(t *testing.T) {
	rec := serve(t, "", http.MethodGet, "/api/v1/score", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	id := uuid.NewString()
	rec := serve(t, "", http.MethodGet, "/api/v1/score/defaults", "", map[string]string{RequestIDHeader: id})
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, id, decodeScore(t, rec).RequestID)

	rec = serve(t, "", http.MethodGet, "/api/v1/score/defaults", "", map[string]string{RequestIDHeader: "not-a-uuid"})
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEqual(t, "not-a-uuid", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestAttributes(t *testing.T) {
	rec := serve(t, "", http.MethodGet, "/api/v1/attributes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SchemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, len(domain.Schema))
	assert.Equal(t, domain.ExternalRiskEstimate, resp.Fields[0].Name)
	assert.Equal(t, domain.GroupCreditHistory, resp.Fields[0].Group)
	assert.Equal(t, []domain.Field{domain.MaxDelq2PublicRecLast12M, domain.MaxDelqEver}, resp.UnusedFields)
	assert.Equal(t, 50.0, resp.RejectThreshold)
}

func TestMetricsEndpoint(t *testing.T) {
	serve(t, "", http.MethodGet, "/api/v1/score/defaults", "", nil)

	rec := serve(t, testToken, http.MethodGet, "/metrics", "", authHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "creditrisk_score_requests_total")

	rec = serve(t, testToken, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
