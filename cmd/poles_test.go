//go:build !integration

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/spida"
)

func surveyFixture() *katapult.Dataset {
	return katapult.New(map[string]any{
		"nodes": map[string]any{
			"n1": map[string]any{
				"button": "aerial",
				"attributes": map[string]any{
					"PoleNumber": map[string]any{"-Imported": "PL410620"},
					"pole_owner": map[string]any{"-Imported": "CPS Energy"},
				},
			},
			"n2": map[string]any{
				"button": "aerial",
				"attributes": map[string]any{
					"PoleNumber": map[string]any{"-Imported": "PL410621"},
				},
			},
			"n3": map[string]any{
				"button":     "reference",
				"attributes": map[string]any{},
			},
		},
	}, zap.NewNop())
}

func engineeringFixture() *spida.Dataset {
	return spida.New(map[string]any{
		"leads": []any{
			map[string]any{
				"locations": []any{
					map[string]any{"label": "1-PL410621"},
					map[string]any{"label": "2-PL410620"},
				},
			},
		},
	}, zap.NewNop())
}

func TestCollectPoleRows_SurveyOnly(t *testing.T) {
	rows := collectPoleRows(surveyFixture(), nil)

	require.Len(t, rows, 2)
	assert.Equal(t, "PL410620", rows[0].PoleNumber)
	assert.Equal(t, "CPS Energy", rows[0].Owner)
	assert.False(t, rows[0].InAnalysis)
	assert.Equal(t, "PL410621", rows[1].PoleNumber)
}

func TestCollectPoleRows_EngineeringOrder(t *testing.T) {
	rows := collectPoleRows(surveyFixture(), engineeringFixture())

	require.Len(t, rows, 2)
	// Engineering visits 410621 first.
	assert.Equal(t, "PL410621", rows[0].PoleNumber)
	assert.Equal(t, 1, rows[0].Order)
	assert.True(t, rows[0].InAnalysis)
	assert.Equal(t, "PL410620", rows[1].PoleNumber)
	assert.Equal(t, 2, rows[1].Order)
}

func TestFormatPoleRows(t *testing.T) {
	var buf bytes.Buffer
	formatPoleRows(&buf, []poleRow{
		{NodeID: "node-1-very-long-id", PoleNumber: "PL410620", Owner: "CPS Energy", Order: 1, InAnalysis: true},
		{NodeID: "node-2", PoleNumber: "PL410621"},
	})

	output := buf.String()
	assert.Contains(t, output, "POLE")
	assert.Contains(t, output, "PL410620")
	assert.Contains(t, output, "CPS Energy")
	assert.Contains(t, output, "yes")
	assert.Contains(t, output, "PL410621")
	assert.Contains(t, output, "no")
}
