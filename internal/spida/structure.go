package spida

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/linecrew/makeready-cli/internal/attrval"
)

// Structure formats a location's pole structure as "height-class species"
// (e.g. "40-2 Southern Pine"). Height and class come from poleTags, the
// location itself, or the first alias id; species is optional. Returns ""
// when height or class cannot be determined.
func Structure(loc map[string]any) string {
	tags := attrval.MapAt(loc, "poleTags")

	pick := func(key string) string {
		if v := attrval.Of(tags[key]).String(""); v != "" {
			return v
		}
		return attrval.Of(loc[key]).String("")
	}
	height := pick("height")
	class := pick("class")
	species := pick("species")

	if height == "" || class == "" {
		// Aliases often carry the height-class pair as "40-2".
		if aliases := attrval.SliceOfMaps(loc["aliases"]); len(aliases) > 0 {
			id := attrval.Of(aliases[0]["id"]).String("")
			if before, after, found := strings.Cut(id, "-"); found {
				if height == "" {
					height = before
				}
				if class == "" {
					class = after
				}
			}
		}
	}

	if height == "" || class == "" {
		return ""
	}
	if species == "" {
		return height + "-" + class
	}
	return height + "-" + class + " " + species
}

// PLAPercentage extracts the pole's percent-load value from the recommended
// design's stress analysis, formatted like "78.70%". Returns "N/A" when the
// analysis is absent.
func PLAPercentage(loc map[string]any) string {
	design := Design(loc, RecommendedLabel)
	if design == nil {
		return "N/A"
	}
	analyses := attrval.SliceOfMaps(design["analysis"])
	if len(analyses) == 0 {
		return "N/A"
	}
	for _, result := range attrval.SliceOfMaps(analyses[0]["results"]) {
		if attrval.Of(result["component"]).String("") != "Pole" {
			continue
		}
		if attrval.Of(result["analysisType"]).String("") != "STRESS" {
			continue
		}
		if v, ok := attrval.Of(result["actual"]).Float(); ok {
			return fmt.Sprintf("%.2f%%", v)
		}
		if s := attrval.Of(result["actual"]).String(""); s != "" {
			return s
		}
	}
	return "N/A"
}

// equipmentKey identifies a riser or guy for measured/recommended diffing.
type equipmentKey struct {
	owner string
	size  string
	kind  string
}

func riserKeys(design map[string]any) []equipmentKey {
	structure := attrval.MapAt(design, "structure")
	var keys []equipmentKey
	for _, eq := range attrval.SliceOfMaps(structure["equipments"]) {
		item := attrval.MapAt(eq, "clientItem")
		if !strings.EqualFold(attrval.Of(item["type"]).String(""), "RISER") {
			continue
		}
		keys = append(keys, equipmentKey{
			owner: ownerID(eq),
			size:  attrval.Of(item["size"]).String(""),
		})
	}
	return keys
}

func guyKeys(design map[string]any) []equipmentKey {
	structure := attrval.MapAt(design, "structure")
	var keys []equipmentKey
	for _, guy := range attrval.SliceOfMaps(structure["guys"]) {
		item := attrval.MapAt(guy, "clientItem")
		keys = append(keys, equipmentKey{
			owner: ownerID(guy),
			size:  attrval.Of(item["size"]).String(""),
			kind:  attrval.Of(item["type"]).String(""),
		})
	}
	return keys
}

// countNew counts recommended keys absent from measured.
func countNew(recommended, measured []equipmentKey) int {
	n := 0
	for _, r := range recommended {
		found := false
		for _, m := range measured {
			if r == m {
				found = true
				break
			}
		}
		if !found {
			n++
		}
	}
	return n
}

// ProposedRiserCount counts risers the recommended design adds over the
// measured design. With no measured design, every recommended riser counts.
func ProposedRiserCount(loc map[string]any) int {
	rec := riserKeys(Design(loc, RecommendedLabel))
	if len(rec) == 0 {
		return 0
	}
	if measured := Design(loc, MeasuredLabel); measured != nil {
		return countNew(rec, riserKeys(measured))
	}
	return len(rec)
}

// ProposedGuyCount counts guys the recommended design adds over the measured
// design.
func ProposedGuyCount(loc map[string]any) int {
	rec := guyKeys(Design(loc, RecommendedLabel))
	if len(rec) == 0 {
		return 0
	}
	if measured := Design(loc, MeasuredLabel); measured != nil {
		return countNew(rec, guyKeys(measured))
	}
	return len(rec)
}

// ProposedRiser reports whether the recommended design adds a riser the
// measured design does not have.
func ProposedRiser(loc map[string]any) bool {
	return ProposedRiserCount(loc) > 0
}

// ProposedGuy reports whether the recommended design adds a guy the measured
// design does not have.
func ProposedGuy(loc map[string]any) bool {
	return ProposedGuyCount(loc) > 0
}

var (
	riserNotePattern = regexp.MustCompile(`(?i)(add|install|new|proposed)\s+riser`)
	guyNotePattern   = regexp.MustCompile(`(?i)(add|install|new|proposed)\s+(down\s*|overhead\s*)?guy`)
)

// NotesProposeRiser reports whether free-text construction notes call for a
// riser install.
func NotesProposeRiser(notes string) bool {
	return riserNotePattern.MatchString(notes)
}

// NotesProposeGuy reports whether free-text construction notes call for a
// guy install.
func NotesProposeGuy(notes string) bool {
	return guyNotePattern.MatchString(notes)
}
