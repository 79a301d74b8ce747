package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/engine"
	"github.com/linecrew/makeready-cli/internal/exporter"
	"github.com/linecrew/makeready-cli/internal/loader"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/spida"
	"github.com/linecrew/makeready-cli/internal/store"
)

var (
	reportSurveyPath      string
	reportEngineeringPath string
	reportOutputPath      string
	reportTargetPoles     []string
	reportConflict        string
	reportStrict          bool
	reportWorkers         int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the make-ready report from survey and engineering exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts, err := reportOptions()
		if err != nil {
			return err
		}

		survey, err := loader.SurveyFile(reportSurveyPath, zap.L())
		if err != nil {
			return err
		}

		var eng *spida.Dataset
		if reportEngineeringPath != "" {
			eng, err = loader.EngineeringFile(reportEngineeringPath, zap.L())
			if err != nil {
				return err
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.CreateRun(ctx, reportSurveyPath, reportEngineeringPath)
		if err != nil {
			return eris.Wrap(err, "record run")
		}

		report, err := engine.New(zap.L(), opts).Process(ctx, survey, eng)
		if err != nil {
			if ferr := st.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Warn("run record not failed", zap.Error(ferr))
			}
			return err
		}

		err = st.UpdateRunResult(ctx, run.ID, store.RunResult{
			PoleCount:  len(report.Poles),
			ErrorCount: len(report.Errors),
		})
		if err != nil {
			zap.L().Warn("run record not updated", zap.Error(err))
		}

		zap.L().Info("report generated",
			zap.String("run_id", run.ID),
			zap.Int("poles", len(report.Poles)),
			zap.Int("errors", len(report.Errors)))

		return writeReport(report)
	},
}

func reportOptions() (engine.Options, error) {
	strategy := model.ConflictStrategy(strings.ToUpper(reportConflict))
	if strategy == "" {
		strategy = model.ConflictStrategy(cfg.Report.ConflictStrategy)
	}
	switch strategy {
	case model.PreferSurvey, model.PreferEngineering, model.HighlightDifferences:
	default:
		return engine.Options{}, eris.Errorf("unknown conflict strategy %q", strategy)
	}

	workers := reportWorkers
	if workers == 0 {
		workers = cfg.Report.Workers
	}

	return engine.Options{
		ConflictStrategy: strategy,
		HeightStrategy:   model.HeightStrategy(cfg.Report.HeightStrategy),
		TargetPoles:      reportTargetPoles,
		Strict:           reportStrict || cfg.Report.Strict,
		Workers:          workers,
	}, nil
}

// writeReport renders the report to the output path, picking the format from
// the extension; no path means JSON on stdout.
func writeReport(report *engine.Report) error {
	if reportOutputPath == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if strings.HasSuffix(strings.ToLower(reportOutputPath), ".xlsx") {
		return exporter.WriteFile(report.Poles, reportOutputPath)
	}

	f, err := os.Create(reportOutputPath)
	if err != nil {
		return eris.Wrapf(err, "create %s", reportOutputPath)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(report), "write report json")
}

func init() {
	reportCmd.Flags().StringVar(&reportSurveyPath, "survey", "", "field-survey JSON export (required)")
	reportCmd.Flags().StringVar(&reportEngineeringPath, "engineering", "", "engineering-analysis JSON export")
	reportCmd.Flags().StringVarP(&reportOutputPath, "output", "o", "", "output path (.xlsx for the spreadsheet, anything else for JSON; default stdout)")
	reportCmd.Flags().StringSliceVar(&reportTargetPoles, "target-poles", nil, "only process these pole numbers")
	reportCmd.Flags().StringVar(&reportConflict, "conflict-strategy", "", "attribute conflict strategy: PREFER_SURVEY, PREFER_ENGINEERING, HIGHLIGHT_DIFFERENCES (default from config)")
	reportCmd.Flags().BoolVar(&reportStrict, "strict", false, "abort the whole batch on the first pole failure")
	reportCmd.Flags().IntVar(&reportWorkers, "workers", 0, "parallel pole workers (default from config)")
	_ = reportCmd.MarkFlagRequired("survey")
	rootCmd.AddCommand(reportCmd)
}
