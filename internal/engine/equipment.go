package engine

import (
	"strconv"
	"strings"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/spida"
)

// countProposedRiserGuy counts the risers and guys the make-ready work adds
// at this pole, combining three evidence sources: the survey node's
// attachment inventory (proposed flags and descriptions), the engineering
// recommended-vs-measured equipment diff, and free-text construction notes.
func countProposedRiserGuy(node, loc map[string]any, notes string) (risers, guys int) {
	attachments := attrval.MapAt(node, "attachments")

	for _, riser := range attrval.SliceOfMaps(attachments["riser"]) {
		if attrval.Of(riser["proposed"]).Bool() {
			risers++
		}
	}
	for _, guy := range attrval.SliceOfMaps(attachments["guying"]) {
		switch {
		case attrval.Of(guy["proposed"]).Bool():
			guys++
		case strings.Contains(strings.ToLower(attrval.Of(guy["desc"]).String("")), "proposed"):
			guys++
		default:
			attrs := attrval.MapAt(guy, "attributes")
			if attrval.Of(attrs["proposed"]).Bool() || attrval.Of(attrs["is_proposed"]).Bool() {
				guys++
			}
		}
	}
	// Guy wires sometimes land in the generic wires array.
	for _, wire := range attrval.SliceOfMaps(attachments["wires"]) {
		desc := strings.ToLower(attrval.Of(wire["desc"]).String(""))
		if strings.Contains(desc, "guy") &&
			(attrval.Of(wire["proposed"]).Bool() || strings.Contains(desc, "proposed")) {
			guys++
		}
	}

	risers += spida.ProposedRiserCount(loc)
	guys += spida.ProposedGuyCount(loc)

	if risers == 0 && spida.NotesProposeRiser(notes) {
		risers++
	}
	if guys == 0 && spida.NotesProposeGuy(notes) {
		guys++
	}
	return risers, guys
}

// formatYesNo renders the riser/guy report columns.
func formatYesNo(count int) string {
	if count > 0 {
		return "YES (" + strconv.Itoa(count) + ")"
	}
	return "NO"
}
