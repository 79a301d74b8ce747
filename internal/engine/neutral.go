package engine

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/spida"
	"github.com/linecrew/makeready-cli/internal/units"
)

// neutralPatterns classify a wire as the utility's neutral conductor by its
// description or cable type.
var neutralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)neutral`),
	regexp.MustCompile(`(?i)cps\s+energy\s+neutral`),
	regexp.MustCompile(`(?i)cps\s+neutral`),
	regexp.MustCompile(`(?i)primary\s+neutral`),
	regexp.MustCompile(`(?i)secondary\s+neutral`),
	regexp.MustCompile(`(?i)power\s+neutral`),
	regexp.MustCompile(`(?i)electric.*neutral`),
}

// isNeutralDescription reports whether a wire description names a neutral.
func isNeutralDescription(desc string) bool {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return false
	}
	for _, p := range neutralPatterns {
		if p.MatchString(desc) {
			return true
		}
	}
	return false
}

// neutralWire is a candidate governing neutral found in either source.
type neutralWire struct {
	Height      float64
	Description string
	Source      model.Source
}

// surveyNeutrals scans a pole node's photographed wires for neutrals.
// Heights are the measured attachment heights in inches.
func (p *Processor) surveyNeutrals(d *katapult.Dataset, node map[string]any) []neutralWire {
	var found []neutralWire
	photos := attrval.MapAt(node, "photos")
	for _, photoID := range attrval.SortedKeys(photos) {
		entry, _ := photos[photoID].(map[string]any)
		for _, wire := range katapult.Wires(d.NodePhotoData(photoID, entry)) {
			trace := d.WireTrace(wire)
			meta := d.WireMetadata(wire, trace)
			desc := strings.TrimSpace(meta.Owner + " " + meta.CableType)
			if !strings.Contains(strings.ToLower(meta.CableType), "neutral") && !isNeutralDescription(desc) {
				continue
			}
			h, ok := katapult.HeightInches(wire)
			if !ok {
				continue
			}
			found = append(found, neutralWire{Height: h, Description: desc, Source: model.SourceSurvey})
		}
	}
	return found
}

// engineeringNeutrals scans the measured design's wires for neutrals; usage
// group NEUTRAL is authoritative, the description patterns are the fallback.
// Design heights are meters.
func (p *Processor) engineeringNeutrals(loc map[string]any) []neutralWire {
	design := spida.Design(loc, spida.MeasuredLabel)
	if design == nil {
		return nil
	}
	var found []neutralWire
	for _, wire := range spida.DesignWires(design) {
		usage := strings.ToUpper(attrval.Of(wire["usageGroup"]).String(""))
		owner := attrval.Of(attrval.MapAt(wire, "owner")["id"]).String("")
		cableType := attrval.Of(attrval.MapAt(wire, "clientItem")["type"]).String("")
		desc := strings.TrimSpace(owner + " " + cableType)
		if !strings.Contains(usage, "NEUTRAL") && !isNeutralDescription(desc) {
			continue
		}
		m, ok := attrval.Of(attrval.MapAt(wire, "attachmentHeight")["value"]).Float()
		if !ok {
			continue
		}
		found = append(found, neutralWire{
			Height:      units.MetersToInches(m),
			Description: desc,
			Source:      model.SourceEngineering,
		})
	}
	return found
}

// highestNeutral selects the governing neutral: the tallest across sources.
func highestNeutral(wires []neutralWire) *neutralWire {
	var best *neutralWire
	for i := range wires {
		if best == nil || wires[i].Height > best.Height {
			best = &wires[i]
		}
	}
	return best
}

// neutralInsertTolerance absorbs minor cross-source drift when checking
// whether the governing neutral is already present in the filtered list.
const neutralInsertTolerance = 5.0

// filterBelowNeutral returns the attachments at or below the governing
// neutral height. The boundary is inclusive: an attachment at exactly the
// neutral height stays in scope. With no neutral the list passes through
// unfiltered and a warning is logged. The governing neutral itself is
// inserted at the top unless an equivalent row is already present.
func (p *Processor) filterBelowNeutral(poleNumber string, attachers []model.Attachment, neutral *neutralWire) []model.Attachment {
	if neutral == nil {
		p.log.Warn("engine: no neutral wire found, keeping all attachments",
			zap.String("pole", poleNumber))
		return attachers
	}

	var below []model.Attachment
	seen := map[string]struct{}{}
	for _, att := range attachers {
		h := att.SortHeight()
		if att.Existing != nil {
			h = *att.Existing
		}
		if h > neutral.Height {
			continue
		}
		if att.TraceID != "" {
			if _, dup := seen[att.TraceID]; dup {
				continue
			}
			seen[att.TraceID] = struct{}{}
		}
		below = append(below, att)
	}

	present := false
	neutralDesc := units.FormatDescription("", neutral.Description)
	for _, att := range below {
		if att.Description != neutralDesc && att.Description != neutral.Description {
			continue
		}
		if att.Existing != nil && abs(*att.Existing-neutral.Height) < neutralInsertTolerance {
			present = true
			break
		}
	}
	if !present {
		h := neutral.Height
		row := model.Attachment{
			Kind:        model.KindAttachment,
			Description: neutralDesc,
			Existing:    &h,
			IsNeutral:   true,
			Source:      neutral.Source,
		}
		below = append([]model.Attachment{row}, below...)
	} else {
		for i := range below {
			if below[i].Description == neutralDesc || below[i].Description == neutral.Description {
				below[i].IsNeutral = true
				break
			}
		}
	}
	return below
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
