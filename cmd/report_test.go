//go:build !integration

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linecrew/makeready-cli/internal/config"
	"github.com/linecrew/makeready-cli/internal/engine"
	"github.com/linecrew/makeready-cli/internal/model"
)

func withTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Report: config.ReportConfig{
			ConflictStrategy: "PREFER_ENGINEERING",
			HeightStrategy:   "PREFER_SURVEY",
			Workers:          1,
		},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestReportOptions_Defaults(t *testing.T) {
	withTestConfig(t)
	reportConflict = ""
	reportWorkers = 0
	reportStrict = false
	reportTargetPoles = nil

	opts, err := reportOptions()
	require.NoError(t, err)
	assert.Equal(t, model.PreferEngineering, opts.ConflictStrategy)
	assert.Equal(t, model.HeightPreferSurvey, opts.HeightStrategy)
	assert.Equal(t, 1, opts.Workers)
	assert.False(t, opts.Strict)
}

func TestReportOptions_FlagOverrides(t *testing.T) {
	withTestConfig(t)
	reportConflict = "highlight_differences"
	reportWorkers = 4
	reportStrict = true
	reportTargetPoles = []string{"PL410620"}
	t.Cleanup(func() {
		reportConflict = ""
		reportWorkers = 0
		reportStrict = false
		reportTargetPoles = nil
	})

	opts, err := reportOptions()
	require.NoError(t, err)
	assert.Equal(t, model.HighlightDifferences, opts.ConflictStrategy)
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.Strict)
	assert.Equal(t, []string{"PL410620"}, opts.TargetPoles)
}

func TestReportOptions_UnknownStrategy(t *testing.T) {
	withTestConfig(t)
	reportConflict = "COIN_FLIP"
	t.Cleanup(func() { reportConflict = "" })

	_, err := reportOptions()
	assert.Error(t, err)
}

func TestWriteReport_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	reportOutputPath = path
	t.Cleanup(func() { reportOutputPath = "" })

	report := &engine.Report{Poles: []model.Pole{{PoleNumber: "PL410620"}}}
	require.NoError(t, writeReport(report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got engine.Report
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Poles, 1)
	assert.Equal(t, "PL410620", got.Poles[0].PoleNumber)
}

func TestWriteReport_XLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	reportOutputPath = path
	t.Cleanup(func() { reportOutputPath = "" })

	report := &engine.Report{Poles: []model.Pole{{PoleNumber: "PL410620", Action: model.ActionExisting}}}
	require.NoError(t, writeReport(report))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
