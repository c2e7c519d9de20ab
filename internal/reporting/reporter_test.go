// File: internal/reporting/reporter_test.go
package reporting_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/reporting"
)

func sampleReport(succeeded bool) schemas.JourneyReport {
	status := schemas.StepPassed
	reason := ""
	if !succeeded {
		status = schemas.StepFailed
		reason = "login form never appeared"
	}
	return schemas.JourneyReport{
		RunID:     "run-1234",
		Journey:   "smoke",
		Target:    "http://localhost:8000",
		StartedAt: time.Now(),
		Elapsed:   1500 * time.Millisecond,
		Succeeded: succeeded,
		Steps: []schemas.StepOutcome{
			{Name: "wait-for-ready", Status: schemas.StepPassed, Elapsed: time.Second},
			{Name: "login", Status: status, Reason: reason},
		},
	}
}

func TestNewStdoutReporters(t *testing.T) {
	for _, path := range []string{"", "stdout"} {
		r, err := reporting.New("text", path)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.NoError(t, r.Close(), "closing a stdout reporter is a no-op")
	}
}

func TestNewUnsupportedFormat(t *testing.T) {
	r, err := reporting.New("xml", "stdout")
	require.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "unsupported output format: xml")

	// A file target must not leak a half-created handle.
	path := filepath.Join(t.TempDir(), "report.xml")
	_, err = reporting.New("xml", path)
	require.Error(t, err)
}

func TestJSONReporterWritesArrayOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r, err := reporting.New("json", path)
	require.NoError(t, err)

	require.NoError(t, r.Write(sampleReport(true)))
	require.NoError(t, r.Write(sampleReport(false)))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var reports []schemas.JourneyReport
	require.NoError(t, json.Unmarshal(data, &reports))
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Succeeded)
	assert.False(t, reports[1].Succeeded)
	assert.Equal(t, "login form never appeared", reports[1].Steps[1].Reason)
}

func TestJSONReporterEmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r, err := reporting.New("json", path)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(data), "an empty run still produces parseable output")
}

func TestTextReporterSummarizesSteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	r, err := reporting.New("text", path)
	require.NoError(t, err)

	require.NoError(t, r.Write(sampleReport(false)))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "FAIL  smoke")
	assert.Contains(t, out, "[passed] wait-for-ready")
	assert.Contains(t, out, "[failed] login: login form never appeared")
}
