package engine

import (
	"sort"
	"strings"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/units"
)

// spanResult is everything the connection traversal yields for one pole.
type spanResult struct {
	Connections []model.SpanHeights
	References  []model.SpanBlock
	Backspan    *model.SpanBlock

	// Primary-span summary for the report columns.
	LowestComm       string
	LowestElectrical string
	FromPole         string
	ToPole           string
}

// processSpans walks every connection touching the pole node: per-edge lowest
// communications/electrical heights, reference-span blocks, and the backspan
// inferred from the engineering pole sequence. A connection consumed as a
// reference span is never reprocessed as the backspan and vice versa.
func (p *Processor) processSpans(d *katapult.Dataset, nodeID, poleNumber string, eng *spidaSequence) spanResult {
	res := spanResult{
		LowestComm:       "N/A",
		LowestElectrical: "N/A",
		FromPole:         poleNumber,
		ToPole:           "N/A",
	}

	conns := d.Connections()
	processed := map[string]struct{}{}

	for _, connID := range attrval.SortedKeys(conns) {
		conn, ok := conns[connID].(map[string]any)
		if !ok {
			continue
		}
		otherID, touches := otherEndpoint(conn, nodeID)
		if !touches {
			continue
		}

		span := model.SpanHeights{
			ConnectionID: connID,
			FromPole:     poleNumber,
			ToPole:       katapult.PoleNumber(d.Node(otherID)),
		}
		span.LowestComm, span.LowestElectrical = p.spanLowestHeights(d, conn)
		res.Connections = append(res.Connections, span)

		if isReferenceSpan(conn) {
			block := p.buildSpanBlock(d, nodeID, otherID, conn, false, "")
			res.References = append(res.References, block)
			processed[connID] = struct{}{}
		}
	}

	// The backspan is the edge back to the pole's predecessor in the
	// engineering visitation sequence.
	if prev := eng.predecessorOf(units.NormalizePoleID(poleNumber)); prev != "" {
		prevNodeID := d.NodeIDForPole(prev)
		if prevNodeID != "" {
			for _, connID := range attrval.SortedKeys(conns) {
				if _, done := processed[connID]; done {
					continue
				}
				conn, ok := conns[connID].(map[string]any)
				if !ok || !connectsNodes(conn, nodeID, prevNodeID) {
					continue
				}
				block := p.buildSpanBlock(d, nodeID, prevNodeID, conn, true, prev)
				res.Backspan = &block
				processed[connID] = struct{}{}
				break
			}
		}
	}

	// Primary-span summary: the first connection reaching a labeled pole,
	// else the first connection at all.
	primary := -1
	for i, c := range res.Connections {
		if c.ToPole != "" {
			primary = i
			break
		}
	}
	if primary < 0 && len(res.Connections) > 0 {
		primary = 0
	}
	if primary >= 0 {
		c := res.Connections[primary]
		if c.LowestComm != nil {
			res.LowestComm = units.ToFeetInches(*c.LowestComm)
		}
		if c.LowestElectrical != nil {
			res.LowestElectrical = units.ToFeetInches(*c.LowestElectrical)
		}
		if c.ToPole != "" {
			res.ToPole = c.ToPole
		}
	}
	return res
}

func otherEndpoint(conn map[string]any, nodeID string) (string, bool) {
	n1 := attrval.Of(conn["node_id_1"]).String("")
	n2 := attrval.Of(conn["node_id_2"]).String("")
	switch nodeID {
	case n1:
		return n2, true
	case n2:
		return n1, true
	}
	return "", false
}

func connectsNodes(conn map[string]any, a, b string) bool {
	n1 := attrval.Of(conn["node_id_1"]).String("")
	n2 := attrval.Of(conn["node_id_2"]).String("")
	return (n1 == a && n2 == b) || (n1 == b && n2 == a)
}

// spanLowestHeights scans every photographed wire on every section of an edge
// and returns the lowest communications height and the lowest
// utility-electrical height, in inches.
func (p *Processor) spanLowestHeights(d *katapult.Dataset, conn map[string]any) (comm, electrical *float64) {
	for _, section := range attrval.SliceOfMaps(conn["sections"]) {
		photos := attrval.MapAt(section, "photos")
		for _, photoID := range attrval.SortedKeys(photos) {
			for _, wire := range katapult.Wires(attrval.MapAt(d.Photo(photoID), "photofirst_data")) {
				traceID := strings.TrimSpace(attrval.Of(wire["_trace"]).String(""))
				if traceID == "" {
					continue
				}
				meta := d.WireMetadata(wire, d.Trace(traceID))
				h, ok := katapult.HeightInches(wire)
				if !ok {
					continue
				}
				if katapult.IsCommunications(meta) && (comm == nil || h < *comm) {
					v := h
					comm = &v
				}
				if katapult.IsUtilityElectrical(meta) && (electrical == nil || h < *electrical) {
					v := h
					electrical = &v
				}
			}
		}
	}
	return comm, electrical
}

// isReferenceSpan checks the independent attribute paths that can flag an
// edge as a reference span, in fixed priority order. First match wins.
func isReferenceSpan(conn map[string]any) bool {
	attrs := attrval.MapAt(conn, "attributes")

	if attrval.Of(attrval.MapAt(attrs, "connection_type")["button_added"]).String("") == "reference" {
		return true
	}
	if attrval.Of(attrs["button_added"]).String("") == "reference" {
		return true
	}
	switch ref := attrs["reference"].(type) {
	case bool:
		if ref {
			return true
		}
	case string:
		if strings.EqualFold(ref, "true") {
			return true
		}
	}
	for _, key := range []string{"span_type", "spanType", "connection_classification", "span_classification"} {
		if v := attrval.Of(attrs[key]).String(""); strings.Contains(strings.ToLower(v), "reference") {
			return true
		}
	}
	return false
}

// directionAttrs and colorAttrs are the attribute names a surveyor's span
// tags can land under.
var directionAttrs = []string{"direction_tag", "direction", "span_direction", "ref_direction"}
var colorAttrs = []string{"color_tag", "color", "span_color", "ref_color"}

// spanTag reads a surveyor span tag, including the note-added wrapper shape
// the generic accessor does not know about.
func spanTag(attrs map[string]any, names ...string) string {
	for _, name := range names {
		raw := attrs[name]
		if m, ok := raw.(map[string]any); ok {
			if v := attrval.Of(m["-Notes Added"]).String(""); v != "" {
				return v
			}
		}
		if v := attrval.Of(raw).String(""); v != "" {
			return v
		}
	}
	return ""
}

// buildSpanBlock produces the header row and attachment list for one
// reference span or backspan edge.
func (p *Processor) buildSpanBlock(d *katapult.Dataset, nodeID, otherID string, conn map[string]any, backspan bool, prevPole string) model.SpanBlock {
	attrs := attrval.MapAt(conn, "attributes")

	label := d.NodeLabel(otherID, "")
	if backspan && prevPole != "" {
		label = "PL" + prevPole
	}

	direction := spanTag(attrs, directionAttrs...)
	styleHint := "orange"
	if backspan {
		direction = "Backspan"
		styleHint = "light-blue"
	} else {
		if direction == "" {
			direction = bearing(d.Node(nodeID), d.Node(otherID))
		}
		if direction == "" {
			direction = "Reference"
		}
		if color := strings.ToLower(spanTag(attrs, colorAttrs...)); strings.Contains(color, "purple") {
			styleHint = "purple"
		}
	}

	kind := model.KindReferenceHeader
	if backspan {
		kind = model.KindBackspanHeader
	}
	header := model.Attachment{
		Kind:        kind,
		Description: "Ref (" + direction + ") to " + label,
		StyleHint:   styleHint,
	}

	return model.SpanBlock{
		Header:      header,
		Attachments: p.spanAttachments(d, conn),
	}
}

// spanAttachments extracts the photographed wires along an edge as attachment
// records, sorted by height descending. Reference spans list all wires; no
// per-span deduplication is applied.
func (p *Processor) spanAttachments(d *katapult.Dataset, conn map[string]any) []model.Attachment {
	var out []model.Attachment
	for _, section := range attrval.SliceOfMaps(conn["sections"]) {
		photos := attrval.MapAt(section, "photos")
		for _, photoID := range attrval.SortedKeys(photos) {
			for _, wire := range katapult.Wires(attrval.MapAt(d.Photo(photoID), "photofirst_data")) {
				traceID := strings.TrimSpace(attrval.Of(wire["_trace"]).String(""))
				if traceID == "" {
					continue
				}
				trace := d.Trace(traceID)
				meta := d.WireMetadata(wire, trace)
				desc := units.FormatDescription(meta.Owner, meta.CableType)
				if desc == "" {
					desc = "Unknown Attachment"
				}

				att := model.Attachment{
					Kind:        model.KindAttachment,
					Description: desc,
					IsProposed:  meta.IsProposed,
					TraceID:     traceID,
					Source:      model.SourceSurvey,
				}
				if h, ok := katapult.HeightInches(wire); ok {
					height := h
					if meta.IsProposed {
						att.Proposed = &height
					} else {
						att.Existing = &height
					}
				}

				att.Underground = units.IsUnderground(desc, meta.CableType) ||
					attrval.Of(wire["_underground"]).Bool() ||
					attrval.Of(wire["underground"]).Bool()
				if att.Underground {
					att.Midspan = "UG"
				} else if m, ok := katapult.MidspanHeightInches(wire, section); ok {
					mid := m
					att.MidspanRaw = &mid
					att.Midspan = units.ToFeetInches(mid)
				}
				out = append(out, att)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortHeight() > out[j].SortHeight()
	})
	return out
}

// bearing computes an 8-way compass direction between two nodes from their
// coordinates. Returns "" when either node lacks coordinates.
func bearing(from, to map[string]any) string {
	fromLat, fromLon := katapult.NodeCoords(from)
	toLat, toLon := katapult.NodeCoords(to)
	if fromLat == nil || fromLon == nil || toLat == nil || toLon == nil {
		return ""
	}
	latDiff := *toLat - *fromLat
	lonDiff := *toLon - *fromLon

	switch {
	case abs(latDiff) > abs(lonDiff)*2:
		if latDiff > 0 {
			return "North"
		}
		return "South"
	case abs(lonDiff) > abs(latDiff)*2:
		if lonDiff > 0 {
			return "East"
		}
		return "West"
	case latDiff > 0 && lonDiff > 0:
		return "North East"
	case latDiff > 0:
		return "North West"
	case lonDiff > 0:
		return "South East"
	default:
		return "South West"
	}
}
