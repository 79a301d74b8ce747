package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/units"
)

// buildFinalAttachers flattens the below-neutral primary list, the backspan
// block, and the reference blocks into the report's ordered attacher list.
// Backspan and reference attachments get the same below-neutral filtering as
// the primary list, keyed off the governing neutral already marked in it.
func buildFinalAttachers(belowNeutral []model.Attachment, refs []model.SpanBlock, backspan *model.SpanBlock) []model.Attachment {
	var neutralHeight *float64
	for i := range belowNeutral {
		if belowNeutral[i].IsNeutral && belowNeutral[i].Existing != nil {
			neutralHeight = belowNeutral[i].Existing
			break
		}
	}
	if neutralHeight == nil {
		// No explicit neutral survived filtering: treat the tallest
		// attachment as the reference height.
		for i := range belowNeutral {
			a := &belowNeutral[i]
			if a.IsHeader() || a.Existing == nil {
				continue
			}
			if neutralHeight == nil || *a.Existing > *neutralHeight {
				neutralHeight = a.Existing
			}
		}
	}

	final := make([]model.Attachment, 0, len(belowNeutral))
	for _, a := range belowNeutral {
		if !a.IsHeader() {
			final = append(final, a)
		}
	}
	sort.SliceStable(final, func(i, j int) bool {
		return final[i].SortHeight() > final[j].SortHeight()
	})

	if backspan != nil {
		header := backspan.Header
		header.Kind = model.KindBackspanHeader
		header.StyleHint = "light-blue"
		final = append(final, header)
		for _, a := range backspan.Attachments {
			if neutralHeight != nil {
				below := a.Existing != nil && *a.Existing < *neutralHeight
				if !below && !a.IsNeutral {
					continue
				}
			}
			final = append(final, a)
		}
	}

	for _, ref := range refs {
		header := ref.Header
		header.Kind = model.KindReferenceHeader
		desc := strings.ToLower(header.Description)
		if strings.Contains(desc, "south east") || strings.Contains(desc, "southeast") || header.StyleHint == "purple" {
			header.StyleHint = "purple"
		} else {
			header.StyleHint = "orange"
		}
		final = append(final, header)

		for _, a := range ref.Attachments {
			if neutralHeight != nil {
				below := a.Existing != nil && *a.Existing < *neutralHeight
				if !below && !isNeutralDescription(a.Description) {
					continue
				}
			}
			// Fiber runs without a recorded midspan fall back to
			// their pole-end height so the report column is never
			// blank for them.
			lower := strings.ToLower(a.Description)
			if (strings.Contains(lower, "fiber") || strings.Contains(lower, "optic")) && a.Midspan == "" && a.Existing != nil {
				a.Midspan = units.ToFeetInches(*a.Existing)
			}
			final = append(final, a)
		}
	}
	return final
}

// determineAction classifies the pole-level make-ready action: installing
// when any new attachment appears, removing when nothing is installed but
// something goes away, existing otherwise.
func determineAction(attachers []model.Attachment) model.PoleAction {
	hasInstall := false
	hasRemoval := false
	for i := range attachers {
		a := &attachers[i]
		if a.IsHeader() {
			continue
		}
		switch {
		case a.NewInstall():
			hasInstall = true
		case a.Removal():
			hasRemoval = true
		}
	}
	switch {
	case hasInstall:
		return model.ActionInstalling
	case hasRemoval:
		return model.ActionRemoving
	default:
		return model.ActionExisting
	}
}

// determineStatus derives the report status column from make-ready notes and
// the percent-load result. A failing load analysis outranks note-driven work.
func determineStatus(notes, plaPercentage string) string {
	status := "No Change"
	if strings.TrimSpace(notes) != "" {
		status = "Make-Ready Required"
	}
	if pla, ok := parsePercent(plaPercentage); ok && pla < 85.0 {
		status = "Issue Detected"
	}
	return status
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
