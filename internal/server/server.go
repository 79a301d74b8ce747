// Package server exposes the reconciliation engine over HTTP: the two JSON
// documents are uploaded as multipart form files and the report comes back as
// JSON or as the rendered spreadsheet.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/engine"
	"github.com/linecrew/makeready-cli/internal/exporter"
	"github.com/linecrew/makeready-cli/internal/loader"
	"github.com/linecrew/makeready-cli/internal/spida"
	"github.com/linecrew/makeready-cli/internal/store"
)

// Server handles report generation requests.
type Server struct {
	log       *zap.Logger
	opts      engine.Options
	store     store.Store // optional run bookkeeping; may be nil
	maxUpload int64
}

// New builds a Server. st may be nil to skip run-history recording.
func New(log *zap.Logger, opts engine.Options, st store.Store, maxUploadMB int) *Server {
	if maxUploadMB <= 0 {
		maxUploadMB = 16
	}
	return &Server{
		log:       log,
		opts:      opts,
		store:     st,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/reports", s.handleCreateReport)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateReport accepts a multipart upload with a required "survey" file
// and an optional "engineering" file. ?format=xlsx returns the spreadsheet;
// the default response is the report as JSON.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	surveyFile, surveyHeader, err := r.FormFile("survey")
	if err != nil {
		writeError(w, http.StatusBadRequest, "survey file is required")
		return
	}
	defer surveyFile.Close()

	survey, err := loader.Survey(surveyFile, s.log)
	if err != nil {
		s.log.Warn("survey upload rejected", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "survey file is not a valid survey document")
		return
	}

	var (
		engineeringName string
		eng             *spida.Dataset
	)
	if engFile, engHeader, err := r.FormFile("engineering"); err == nil {
		defer engFile.Close()
		eng, err = loader.Engineering(engFile, s.log)
		if err != nil {
			s.log.Warn("engineering upload rejected", zap.Error(err))
			writeError(w, http.StatusUnprocessableEntity, "engineering file is not a valid analysis document")
			return
		}
		engineeringName = engHeader.Filename
	}

	runID := s.recordRunStart(r, surveyHeader.Filename, engineeringName)

	report, err := engine.New(s.log, s.opts).Process(r.Context(), survey, eng)
	if err != nil {
		s.recordRunFailure(r, runID, err)
		s.log.Error("report generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	s.recordRunResult(r, runID, report)

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="make-ready-report.xlsx"`)
		if err := exporter.Write(report.Poles, w); err != nil {
			s.log.Error("spreadsheet rendering failed", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) recordRunStart(r *http.Request, surveyName, engineeringName string) string {
	if s.store == nil {
		return ""
	}
	run, err := s.store.CreateRun(r.Context(), surveyName, engineeringName)
	if err != nil {
		s.log.Warn("run record not created", zap.Error(err))
		return ""
	}
	return run.ID
}

func (s *Server) recordRunResult(r *http.Request, runID string, report *engine.Report) {
	if s.store == nil || runID == "" {
		return
	}
	err := s.store.UpdateRunResult(r.Context(), runID, store.RunResult{
		PoleCount:  len(report.Poles),
		ErrorCount: len(report.Errors),
	})
	if err != nil {
		s.log.Warn("run record not updated", zap.String("run_id", runID), zap.Error(err))
	}
}

func (s *Server) recordRunFailure(r *http.Request, runID string, cause error) {
	if s.store == nil || runID == "" {
		return
	}
	if err := s.store.FailRun(r.Context(), runID, cause.Error()); err != nil {
		s.log.Warn("run record not failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Addr formats the listen address for a port.
func Addr(port int) string {
	return fmt.Sprintf(":%d", port)
}
