// Package units holds the height conversions and name normalization shared by
// both dataset readers. Inches are the canonical unit everywhere in the
// engine; conversion from meters or feet happens once, at extraction time.
package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// InchesPerMeter is the conversion factor used for engineering-dataset
// heights, which are stored in meters.
const InchesPerMeter = 39.3701

var (
	trailingDigits = regexp.MustCompile(`(\d+)$`)
	feetInchesRe   = regexp.MustCompile(`^(\d+)'(?:-|\s*)?(\d+)"?$`)
)

// MetersToInches converts a height in meters to inches.
func MetersToInches(m float64) float64 {
	return m * InchesPerMeter
}

// ToFeetInches renders a height in inches as a feet-inches string, e.g.
// 42 -> `3'-6"`. Remainder inches round to the nearest inch and carry into
// the next foot when they round to 12.
func ToFeetInches(inches float64) string {
	feet := int(math.Floor(inches / 12))
	rem := int(math.Round(math.Mod(inches, 12)))
	if rem == 12 {
		feet++
		rem = 0
	}
	return fmt.Sprintf("%d'-%d\"", feet, rem)
}

// ToFeetInchesPtr renders an optional height, returning "" when absent.
func ToFeetInchesPtr(inches *float64) string {
	if inches == nil {
		return ""
	}
	return ToFeetInches(*inches)
}

// ParseFeetInches parses a feet-inches string (`X'-Y"` or `X' Y"`) or a bare
// numeric string into inches. The second return is false when the string is
// in neither form.
func ParseFeetInches(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if m := feetInchesRe.FindStringSubmatch(s); m != nil {
		feet, err1 := strconv.Atoi(m[1])
		in, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return float64(feet*12 + in), true
		}
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	return 0, false
}

// NormalizePoleID extracts the trailing numeric run of a pole identifier,
// which is how the two datasets are matched ("PL410620" and "410620" refer
// to the same pole).
func NormalizePoleID(id string) string {
	m := trailingDigits.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return ""
	}
	return m[1]
}

// NormalizeOwner canonicalizes an owner/company name for comparison. The
// AT&T and CPS Energy families appear under several spellings across survey
// exports; both collapse to one canonical form. Idempotent.
func NormalizeOwner(owner string) string {
	owner = strings.ToUpper(strings.TrimSpace(owner))
	if owner == "" {
		return ""
	}
	owner = strings.ReplaceAll(owner, "&", "AND")
	switch owner {
	case "ATANDT", "ATT", "AT AND T":
		return "AT&T"
	case "CPS", "CPS ENERGY":
		return "CPS ENERGY"
	}
	return owner
}

// FormatDescription combines an owner and a cable/equipment type into the
// report's attacher description, applying the owner-specific naming the
// downstream spreadsheet expects.
func FormatDescription(owner, desc string) string {
	owner = strings.TrimSpace(owner)
	desc = strings.TrimSpace(desc)
	descLower := strings.ToLower(desc)

	// Neutrals always display simply as "Neutral".
	if strings.Contains(descLower, "neutral") {
		return "Neutral"
	}

	norm := NormalizeOwner(owner)
	switch norm {
	case "AT&T":
		switch {
		case strings.Contains(descLower, "telco"):
			return "AT&T Telco Com"
		case strings.Contains(descLower, "drop"):
			return "AT&T Com Drop"
		case strings.Contains(descLower, "fiber"), strings.Contains(descLower, "optic"):
			return "AT&T Fiber Optic Com"
		default:
			return strings.TrimSpace("AT&T " + normalizeCableName(desc))
		}
	case "CPS ENERGY":
		if strings.Contains(descLower, "fiber") {
			return "CPS Supply Fiber"
		}
	}

	ownerLower := strings.ToLower(owner)
	if strings.Contains(ownerLower, "charter") || strings.Contains(ownerLower, "spectrum") ||
		strings.Contains(descLower, "charter") || strings.Contains(descLower, "spectrum") {
		if strings.Contains(descLower, "fiber") || strings.Contains(descLower, "optic") {
			return "Charter/Spectrum Fiber Optic"
		}
		return strings.TrimSpace("Charter/Spectrum " + normalizeCableName(desc))
	}

	return strings.TrimSpace(norm + " " + normalizeCableName(desc))
}

// normalizeCableName cleans up cable-type spellings inside a description.
func normalizeCableName(desc string) string {
	lower := strings.ToLower(desc)
	if strings.Contains(lower, "charter") || strings.Contains(lower, "spectrum") {
		return "Charter/Spectrum"
	}
	if strings.Contains(lower, "fiber") && !strings.Contains(lower, "optic") {
		desc = strings.ReplaceAll(desc, "Fiber", "Fiber Optic")
		desc = strings.ReplaceAll(desc, "fiber", "Fiber Optic")
	}
	return desc
}

// IsUnderground reports whether a description or cable type indicates the
// wire leaves the pole line underground (risers and vertical runs count).
func IsUnderground(desc, cableType string) bool {
	for _, s := range []string{strings.ToLower(desc), strings.ToLower(cableType)} {
		if s == "ug" ||
			strings.Contains(s, "underground") ||
			strings.Contains(s, "riser") ||
			strings.Contains(s, "vertical") {
			return true
		}
	}
	return false
}

// Float64 returns a pointer to v. Optional heights throughout the engine are
// *float64 so that zero is distinguishable from absent.
func Float64(v float64) *float64 {
	return &v
}
