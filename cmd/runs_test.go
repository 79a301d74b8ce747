//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linecrew/makeready-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:              "abc12345-6789-0000-0000-000000000000",
			SurveyFile:      "survey.json",
			EngineeringFile: "job.json",
			Status:          model.RunStatusComplete,
			PoleCount:       12,
			ErrorCount:      1,
			CreatedAt:       now,
			UpdatedAt:       now.Add(2 * time.Minute),
		},
		{
			ID:         "def12345-6789-0000-0000-000000000000",
			SurveyFile: "other-survey.json",
			Status:     model.RunStatusRunning,
			CreatedAt:  now.Add(-1 * time.Hour),
			UpdatedAt:  now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "SURVEY")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "survey.json")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "2026-08-15 10:30")
	assert.Contains(t, output, "abc12345")
}

func TestFormatRunsList_LongSurveyPathTruncated(t *testing.T) {
	runs := []model.Run{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			SurveyFile: "/very/long/path/that/keeps/going/and/going/survey.json",
			Status:     model.RunStatusFailed,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "...")
	assert.Contains(t, output, "survey.json")
	assert.NotContains(t, output, "/very/long/path")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
