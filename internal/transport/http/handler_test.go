package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcli/internal/analysis"
	"formcli/internal/selection"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()

	rows := []analysis.ResponseRow{
		{ID: "r1", Team: "Eng", Location: "Berlin", Answers: map[string]string{"Q1": "5", "Q2": "4"}},
		{ID: "r2", Team: "Eng", Location: "Berlin", Answers: map[string]string{"Q1": "3", "Q2": "3"}},
		{ID: "r3", Team: "Ops", Location: "Lisbon", Answers: map[string]string{"Q1": "1", "Q2": "2"}},
	}
	categories := []analysis.Category{{Name: "C1", Questions: []string{"Q1", "Q2"}}}

	runner := analysis.NewRunner(rows, categories, analysis.DefaultScale(), analysis.DefaultThresholds(), nil, nil)
	return NewHandler(runner, selection.Available(rows), nil)
}

func TestGetGroups(t *testing.T) {
	h := testHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/groups")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var groups selection.Groups
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&groups))

	require.Len(t, groups.Teams, 2)
	assert.Equal(t, "Eng", groups.Teams[0].Name)
	assert.Equal(t, 2, groups.Teams[0].Responses)
	require.Len(t, groups.Locations, 2)
}

func TestAnalyze(t *testing.T) {
	h := testHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	body, _ := json.Marshal(AnalyzeRequest{Team: "Eng", Location: "Berlin"})
	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result analysis.RunResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, "Eng", result.Selection.Team)
	assert.Equal(t, 2, result.Subset.Rows)
	assert.Equal(t, 3, result.Population.Rows)
	require.Len(t, result.Comparison.Categories, 1)
	assert.True(t, result.Comparison.Categories[0].Delta.Comparable)
	assert.NotEmpty(t, result.Assessment.Guidance)
}

func TestAnalyzeWildcardDefaults(t *testing.T) {
	h := testHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	// Empty dimensions resolve to the wildcard.
	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result analysis.RunResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, analysis.AllGroups, result.Selection.Team)
	assert.Equal(t, 3, result.Subset.Rows)
}

func TestAnalyzeUnknownGroup(t *testing.T) {
	h := testHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	body := []byte(`{"team":"Marketing"}`)
	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "/errors/unknown-group", problem["type"])
}

func TestAnalyzeInvalidBody(t *testing.T) {
	h := testHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	h := testHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(3), health["responses"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := testHandler(t)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
