package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/loader"
	"github.com/linecrew/makeready-cli/internal/spida"
	"github.com/linecrew/makeready-cli/internal/units"
)

var (
	polesSurveyPath      string
	polesEngineeringPath string
)

var polesCmd = &cobra.Command{
	Use:   "poles",
	Short: "List the poles found in a survey export",
	Long:  "Scans the survey document for pole nodes and prints each pole with its engineering-sequence position when an analysis export is supplied.",
	RunE: func(cmd *cobra.Command, args []string) error {
		survey, err := loader.SurveyFile(polesSurveyPath, zap.L())
		if err != nil {
			return err
		}

		var eng *spida.Dataset
		if polesEngineeringPath != "" {
			eng, err = loader.EngineeringFile(polesEngineeringPath, zap.L())
			if err != nil {
				return err
			}
		}

		rows := collectPoleRows(survey, eng)
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "No poles found.")
			return nil
		}

		formatPoleRows(os.Stdout, rows)
		return nil
	},
}

type poleRow struct {
	NodeID     string
	PoleNumber string
	Owner      string
	Order      int
	InAnalysis bool
}

func collectPoleRows(survey *katapult.Dataset, eng *spida.Dataset) []poleRow {
	var rows []poleRow
	for _, nodeID := range attrval.SortedKeys(survey.Nodes()) {
		node, ok := survey.Nodes()[nodeID].(map[string]any)
		if !ok || !katapult.IsPoleNode(node) {
			continue
		}
		poleNumber := katapult.PoleNumber(node)
		if poleNumber == "" {
			continue
		}

		row := poleRow{
			NodeID:     nodeID,
			PoleNumber: poleNumber,
			Owner:      attrval.First(katapult.NodeAttrs(node), "pole_owner", "PoleOwner"),
		}
		if eng != nil {
			norm := units.NormalizePoleID(poleNumber)
			if order, ok := eng.OrderOf(norm); ok {
				row.Order = order + 1
				row.InAnalysis = true
			}
		}
		rows = append(rows, row)
	}

	// Engineering order first, then survey scan order for the rest.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].InAnalysis != rows[j].InAnalysis {
			return rows[i].InAnalysis
		}
		return rows[i].InAnalysis && rows[i].Order < rows[j].Order
	})
	return rows
}

func formatPoleRows(out io.Writer, rows []poleRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "OP\tPOLE\tOWNER\tNODE\tANALYZED")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t----\t--------")
	for _, r := range rows {
		op := "-"
		analyzed := "no"
		if r.InAnalysis {
			op = fmt.Sprintf("%d", r.Order)
			analyzed = "yes"
		}
		owner := r.Owner
		if owner == "" {
			owner = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", op, r.PoleNumber, owner, truncateID(r.NodeID), analyzed)
	}
	_ = w.Flush()
}

func init() {
	polesCmd.Flags().StringVar(&polesSurveyPath, "survey", "", "field-survey JSON export (required)")
	polesCmd.Flags().StringVar(&polesEngineeringPath, "engineering", "", "engineering-analysis JSON export")
	_ = polesCmd.MarkFlagRequired("survey")
	rootCmd.AddCommand(polesCmd)
}
