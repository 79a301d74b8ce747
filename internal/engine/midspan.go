package engine

import (
	"strings"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/units"
)

// calculateMidspanProposed computes the pole-level proposed midspan
// clearance: the lowest span-wire height among owners with attachment
// changes and proposed wires. When the pole has any new installation every
// span wire participates. Returns "" when nothing at the pole is changing or
// no usable height exists.
func (p *Processor) calculateMidspanProposed(d *katapult.Dataset, nodeID string, owners map[string]struct{}, attachers []model.Attachment) string {
	hasNewInstalls := false
	for i := range attachers {
		if attachers[i].NewInstall() {
			hasNewInstalls = true
			break
		}
	}
	if !hasNewInstalls && len(owners) == 0 {
		return ""
	}

	var lowest *float64
	conns := d.Connections()
	for _, connID := range attrval.SortedKeys(conns) {
		conn, ok := conns[connID].(map[string]any)
		if !ok {
			continue
		}
		if _, touches := otherEndpoint(conn, nodeID); !touches {
			continue
		}
		for _, section := range attrval.SliceOfMaps(conn["sections"]) {
			photos := attrval.MapAt(section, "photos")
			for _, photoID := range attrval.SortedKeys(photos) {
				for _, wire := range katapult.Wires(attrval.MapAt(d.Photo(photoID), "photofirst_data")) {
					traceID := strings.TrimSpace(attrval.Of(wire["_trace"]).String(""))
					if traceID == "" {
						continue
					}
					meta := d.WireMetadata(wire, d.Trace(traceID))
					_, changed := owners[units.NormalizeOwner(meta.Owner)]
					if !hasNewInstalls && !changed && !meta.IsProposed {
						continue
					}
					h, ok := katapult.HeightInches(wire)
					if !ok {
						continue
					}
					if lowest == nil || h < *lowest {
						v := h
						lowest = &v
					}
				}
			}
		}
	}
	if lowest == nil {
		return ""
	}
	return units.ToFeetInches(*lowest)
}

// applyMidspanValues writes the pole-level proposed midspan onto individual
// attachments. Moved attachments keep a midspan they already carry and
// otherwise inherit the pole value; new installs get theirs cleared unless
// the run is underground; untouched attachments are left alone.
func applyMidspanValues(attachers []model.Attachment, midspanProposed string) {
	for i := range attachers {
		a := &attachers[i]
		if a.IsHeader() {
			continue
		}
		if a.Moved() {
			if a.Midspan == "" && midspanProposed != "" {
				a.Midspan = midspanProposed
			}
			continue
		}
		if a.NewInstall() && a.Midspan != "UG" {
			a.Midspan = ""
			a.MidspanRaw = nil
		}
	}
}

// lowestMidspanHeights builds the per-destination midspan clearance summary
// for every span leaving the pole: the lowest midspan-only communications and
// utility-electrical heights toward each labeled neighboring pole.
// Underground paths report "UG" for both.
func (p *Processor) lowestMidspanHeights(d *katapult.Dataset, nodeID string) map[string]model.MidspanHeights {
	out := map[string]model.MidspanHeights{}
	conns := d.Connections()
	for _, connID := range attrval.SortedKeys(conns) {
		conn, ok := conns[connID].(map[string]any)
		if !ok {
			continue
		}
		otherID, touches := otherEndpoint(conn, nodeID)
		if !touches {
			continue
		}
		otherPole := katapult.PoleNumber(d.Node(otherID))
		if otherPole == "" {
			continue
		}

		if strings.EqualFold(attrval.Of(conn["button"]).String(""), "underground_path") {
			out[otherPole] = model.MidspanHeights{Comm: "UG", Electrical: "UG", Underground: true}
			continue
		}

		var comm, electrical *float64
		for _, section := range attrval.SliceOfMaps(conn["sections"]) {
			photos := attrval.MapAt(section, "photos")
			for _, photoID := range attrval.SortedKeys(photos) {
				for _, wire := range katapult.Wires(attrval.MapAt(d.Photo(photoID), "photofirst_data")) {
					h, ok := katapult.MidspanHeightInches(wire, section)
					if !ok {
						continue
					}
					var trace map[string]any
					if traceID := strings.TrimSpace(attrval.Of(wire["_trace"]).String("")); traceID != "" {
						trace = d.Trace(traceID)
					}
					meta := d.WireMetadata(wire, trace)
					if isUtilityOwner(meta.Owner) {
						if isElectricalRun(meta) && (electrical == nil || h < *electrical) {
							v := h
							electrical = &v
						}
					} else if comm == nil || h < *comm {
						v := h
						comm = &v
					}
				}
			}
		}

		entry := model.MidspanHeights{Comm: "NA", Electrical: "NA"}
		if comm != nil {
			entry.Comm = units.ToFeetInches(*comm)
		}
		if electrical != nil {
			entry.Electrical = units.ToFeetInches(*electrical)
		}
		out[otherPole] = entry
	}
	return out
}

func isUtilityOwner(owner string) bool {
	return strings.Contains(strings.ToLower(owner), "cps")
}

// isElectricalRun classifies a utility-owned span wire as electrical by cable
// type keyword or POWER usage group.
func isElectricalRun(meta model.TraceMetadata) bool {
	cable := strings.ToLower(meta.CableType)
	for _, kw := range []string{"neutral", "secondary", "service", "primary"} {
		if strings.Contains(cable, kw) {
			return true
		}
	}
	return strings.EqualFold(meta.UsageGroup, "POWER")
}
