package katapult

import (
	"strings"

	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/units"
)

// traceSubCollections are the alternate names export tooling has nested the
// trace map under, tried in order after a direct lookup.
var traceSubCollections = []string{"trace_data", "trace_items"}

// Trace resolves a wire's trace entry by id. The trace collection arrives in
// several shapes depending on export vintage: a flat id-keyed map, the map
// nested under one of the known sub-collection names, or groups with the id
// one level down. First match wins; a miss returns an empty map and is
// logged, never escalated.
func (d *Dataset) Trace(id string) map[string]any {
	id = strings.TrimSpace(id)
	if id == "" {
		return map[string]any{}
	}
	traces := attrval.MapAt(d.root, "traces")
	if traces == nil {
		return map[string]any{}
	}

	if t, ok := traces[id].(map[string]any); ok {
		return t
	}
	for _, sub := range traceSubCollections {
		if t, ok := attrval.MapAt(traces, sub)[id].(map[string]any); ok {
			return t
		}
	}
	// Last resort: the id nested one level under an arbitrary group key.
	for _, key := range attrval.SortedKeys(traces) {
		group, ok := traces[key].(map[string]any)
		if !ok {
			continue
		}
		if t, ok := group[id].(map[string]any); ok {
			return t
		}
	}

	d.log.Debug("katapult: trace not found", zap.String("trace_id", id))
	return map[string]any{}
}

// WireTrace resolves the trace for a wire entry via its "_trace" reference.
func (d *Dataset) WireTrace(wire map[string]any) map[string]any {
	return d.Trace(attrval.Of(wire["_trace"]).String(""))
}

// WireMetadata extracts owner, cable type, usage group, and the proposed
// flag for a wire, preferring the trace and falling back to fields on the
// wire itself. It always returns a best-effort record.
func (d *Dataset) WireMetadata(wire, trace map[string]any) model.TraceMetadata {
	var meta model.TraceMetadata

	if len(trace) > 0 {
		meta.Owner = attrval.First(trace, "company", "owner", "client")
		meta.CableType = attrval.First(trace, "cable_type", "type", "description")
		meta.UsageGroup = attrval.Of(trace["usageGroup"]).String("")
		if v, name := attrval.FirstValue(trace, "proposed", "is_proposed", "status"); name != "" {
			meta.IsProposed = v.Bool()
		}
	}

	if meta.Owner == "" {
		meta.Owner = attrval.First(wire, "_company", "owner", "client")
	}
	if meta.CableType == "" {
		meta.CableType = attrval.First(wire, "_cable_type", "type", "description")
	}
	if meta.UsageGroup == "" {
		meta.UsageGroup = attrval.Of(wire["usageGroup"]).String("")
	}
	if !meta.IsProposed {
		if v, name := attrval.FirstValue(wire, "_proposed", "is_proposed", "status"); name != "" {
			meta.IsProposed = v.Bool()
		}
	}

	meta.Owner = units.NormalizeOwner(meta.Owner)
	return meta
}

// commOwnerPatterns match communications providers by owner name.
var commOwnerPatterns = []string{"at&t", "att", "spectrum", "charter", "comcast", "frontier", "verizon", "telco"}

// commCablePatterns match communications wires by cable type.
var commCablePatterns = []string{"com", "fiber", "telco", "cable", "telephone", "catv"}

// electricalCablePatterns match the owning utility's circuit wires by cable
// type.
var electricalCablePatterns = []string{"neutral", "secondary", "primary", "electric", "power", "phase", "service"}

// IsCommunications classifies a wire as a communications attachment.
// Ownership is checked first: utility-owned wires are never communications.
func IsCommunications(meta model.TraceMetadata) bool {
	if meta.Owner == "" || strings.Contains(strings.ToLower(meta.Owner), "cps") {
		return false
	}
	cable := strings.ToLower(meta.CableType)
	for _, p := range commCablePatterns {
		if strings.Contains(cable, p) {
			return true
		}
	}
	owner := strings.ToLower(meta.Owner)
	for _, p := range commOwnerPatterns {
		if strings.Contains(owner, p) {
			return true
		}
	}
	return strings.EqualFold(meta.UsageGroup, "COMMUNICATION")
}

// IsUtilityElectrical classifies a wire as one of the owning utility's
// electrical circuits. A utility-owned wire with no cable type at all
// defaults to electrical.
func IsUtilityElectrical(meta model.TraceMetadata) bool {
	if !strings.Contains(strings.ToLower(meta.Owner), "cps") {
		return false
	}
	cable := strings.ToLower(meta.CableType)
	if cable == "" || cable == "unknown" {
		return true
	}
	for _, p := range electricalCablePatterns {
		if strings.Contains(cable, p) {
			return true
		}
	}
	return strings.EqualFold(meta.UsageGroup, "POWER")
}
