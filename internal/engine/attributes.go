package engine

import (
	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/spida"
	"github.com/linecrew/makeready-cli/internal/units"
)

// poleAttributes is the resolved per-pole attribute set feeding the report
// record.
type poleAttributes struct {
	PoleNumber        string
	NormPoleNumber    string
	Owner             string
	Structure         string
	ConstructionGrade string
	PLAPercentage     string
	Notes             string
	Latitude          *float64
	Longitude         *float64
}

// surveyPoleAttributes extracts the survey-side pole attributes. Structure is
// assembled as "height-class species" when the pieces are present, falling
// back to a direct pole_structure attribute; species defaults to Southern
// Pine, matching field-collection convention.
func surveyPoleAttributes(node map[string]any) poleAttributes {
	attrs := katapult.NodeAttrs(node)

	pa := poleAttributes{
		PoleNumber: katapult.PoleNumber(node),
		Owner:      attrval.First(attrs, "pole_owner", "PoleOwner"),
		Notes:      attrval.First(attrs, "kat_mr_notes", "kat_MR_notes", "stress_MR_notes"),
	}
	pa.NormPoleNumber = units.NormalizePoleID(pa.PoleNumber)
	pa.Latitude, pa.Longitude = katapult.NodeCoords(node)

	height := attrval.First(attrs, "pole_height", "PoleHeight")
	class := attrval.First(attrs, "pole_class", "PoleClass")
	species := attrval.First(attrs, "pole_species", "PoleSpecies")
	if species == "" {
		species = "Southern Pine"
	}
	switch {
	case height != "" && class != "":
		pa.Structure = height + "-" + class + " " + species
	default:
		pa.Structure = attrval.First(attrs, "pole_structure")
	}
	return pa
}

// resolveAttributes merges the engineering-side pole attributes into the
// survey set according to the conflict strategy. Construction grade and
// percent-load come only from engineering, so they carry over unconditionally
// when present.
func resolveAttributes(pa poleAttributes, loc map[string]any, eng *spida.Dataset, strategy model.ConflictStrategy) poleAttributes {
	if loc == nil {
		return pa
	}
	pa.Structure = resolveValue(pa.Structure, spida.Structure(loc), strategy)

	if grade := eng.ConstructionGrade(); grade != "" {
		pa.ConstructionGrade = grade
	}
	if pla := spida.PLAPercentage(loc); pla != "" && pla != "N/A" {
		pa.PLAPercentage = pla
	}
	return pa
}

// resolveValue applies the conflict strategy to one attribute. A value from a
// single source is used unconditionally; only a genuine disagreement engages
// the strategy.
func resolveValue(survey, engineering string, strategy model.ConflictStrategy) string {
	switch {
	case engineering == "":
		return survey
	case survey == "" || survey == engineering:
		return engineering
	}
	switch strategy {
	case model.PreferSurvey:
		return survey
	case model.HighlightDifferences:
		return survey + " (OTHER: " + engineering + ")"
	default:
		return engineering
	}
}
