package katapult

import (
	"strings"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/units"
)

// heightKeys is the field preference order for a wire's attachment
// height at the pole. Field exports are inconsistent across jobs, so
// the chain is long on purpose.
var heightKeys = []string{
	"_measured_height",
	"measured_height",
	"height",
	"attachmentHeight",
	"z",
	"z_coord",
	"elevation",
	"measuredHeight_in",
}

// HeightInches extracts a wire's attachment height in inches. The
// second return is false when no usable height field is present.
func HeightInches(wire map[string]any) (float64, bool) {
	if len(wire) == 0 {
		return 0, false
	}

	for _, key := range heightKeys {
		var raw any
		switch key {
		case "z", "z_coord":
			// Coordinate heights live under a position stanza.
			if pos, ok := wire["position"].(map[string]any); ok {
				raw = pos[key]
			}
		case "attachmentHeight":
			// Dimensioned form: {"value": x, "unit": "METRE"}.
			if dim, ok := wire["attachmentHeight"].(map[string]any); ok {
				if in, ok := dimensionInches(dim); ok {
					return in, true
				}
			}
			continue
		default:
			raw = wire[key]
		}
		if raw == nil {
			continue
		}

		if s, ok := raw.(string); ok {
			if in, ok := units.ParseFeetInches(s); ok {
				return in, true
			}
			continue
		}

		v, ok := attrval.Of(raw).Float()
		if !ok {
			continue
		}
		// Coordinate-system values under 15 are meters, not inches.
		if (key == "z" || key == "z_coord" || key == "elevation") && v < 15 {
			return units.MetersToInches(v), true
		}
		return v, true
	}
	return 0, false
}

// dimensionInches converts a {value, unit} pair to inches. A missing
// unit means the value is already in inches.
func dimensionInches(dim map[string]any) (float64, bool) {
	v, ok := attrval.Of(dim["value"]).Float()
	if !ok {
		return 0, false
	}
	switch strings.ToLower(attrval.Of(dim["unit"]).String("")) {
	case "m", "meters", "metre", "metres":
		return units.MetersToInches(v), true
	case "ft", "feet", "foot":
		return v * 12, true
	default:
		return v, true
	}
}

// WireMidspanInches reads a wire's own explicit mid-span height fields.
func WireMidspanInches(wire map[string]any) (float64, bool) {
	return firstHeight(wire["_midspan_height"], wire["midspanHeight_in"])
}

// MidspanHeightInches extracts a true mid-span height for a wire in a
// span section. Pole-end measured height is used only as a last resort
// so the span clearance is not overstated.
func MidspanHeightInches(wire, section map[string]any) (float64, bool) {
	if v, ok := WireMidspanInches(wire); ok {
		return v, true
	}
	return firstHeight(section["midspanHeight_in"], wire["_measured_height"])
}

func firstHeight(candidates ...any) (float64, bool) {
	for _, raw := range candidates {
		if raw == nil {
			continue
		}
		if s, ok := raw.(string); ok {
			if in, ok := units.ParseFeetInches(s); ok {
				return in, true
			}
			continue
		}
		if v, ok := attrval.Of(raw).Float(); ok {
			return v, true
		}
	}
	return 0, false
}
