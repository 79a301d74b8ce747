package model

import "time"

// RunStatus tracks a report run through the store.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one report invocation recorded for the runs command. Only metadata
// is persisted; the report itself lives for the invocation.
type Run struct {
	ID              string    `json:"id"`
	SurveyFile      string    `json:"survey_file"`
	EngineeringFile string    `json:"engineering_file,omitempty"`
	Status          RunStatus `json:"status"`
	PoleCount       int       `json:"pole_count"`
	ErrorCount      int       `json:"error_count"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
