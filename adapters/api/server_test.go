package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavetrack/domain/core"
	"wavetrack/domain/crosstab"
	"wavetrack/internal/testkit"
)

func storedRun(t *testing.T) (*testkit.InMemoryCrosstabRepository, *crosstab.Crosstab) {
	t.Helper()
	repo := testkit.NewInMemoryCrosstabRepository()
	ct := &crosstab.Crosstab{
		RunID:       core.NewRunID(),
		GeneratedAt: core.Now(),
		Alpha:       0.05,
		Waves:       []core.WaveID{"2025q4", "2026q1"},
		Baseline:    "2025q4",
		Sections:    []string{"Brand", "Satisfaction"},
		Rows: []crosstab.MetricRow{
			{Question: "AWARE", Section: "Brand"},
			{Question: "SAT", Section: "Satisfaction"},
			{Question: "REC", Section: "Satisfaction"},
		},
	}
	require.NoError(t, repo.Save(context.Background(), ct))
	return repo, ct
}

func TestGetRun(t *testing.T) {
	repo, ct := storedRun(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+string(ct.RunID), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got crosstab.Crosstab
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, ct.RunID, got.RunID)
	assert.Len(t, got.Rows, 3)
}

func TestGetRunNotFound(t *testing.T) {
	repo, _ := storedRun(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns(t *testing.T) {
	repo, ct := storedRun(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Runs []struct {
			RunID    core.RunID `json:"run_id"`
			RowCount int        `json:"row_count"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, ct.RunID, body.Runs[0].RunID)
	assert.Equal(t, 3, body.Runs[0].RowCount)
}

func TestGetSections(t *testing.T) {
	repo, ct := storedRun(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+string(ct.RunID)+"/sections", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sections []struct {
			Name     string `json:"name"`
			RowCount int    `json:"row_count"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Sections, 2)
	assert.Equal(t, "Brand", body.Sections[0].Name)
	assert.Equal(t, 1, body.Sections[0].RowCount)
	assert.Equal(t, 2, body.Sections[1].RowCount)
}

func TestHealth(t *testing.T) {
	srv := NewServer(testkit.NewInMemoryCrosstabRepository(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
