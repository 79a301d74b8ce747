package engine

import (
	"strings"

	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/katapult"
	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/spida"
	"github.com/linecrew/makeready-cli/internal/units"
)

// heightChangeTolerance is the threshold below which a measured-vs-recommended
// height difference counts as no change.
const heightChangeTolerance = 0.1

// surveyAttachments walks every photo on a pole node and emits one attachment
// per distinct description. Duplicate photos of the same physical wire should
// agree; the tallest observed instance is treated as most reliable. Wires
// whose trace marks them proposed record the measured height as the proposed
// height: a new-install survey reading has no prior existing height.
func (p *Processor) surveyAttachments(d *katapult.Dataset, node map[string]any) map[string]model.Attachment {
	out := map[string]model.Attachment{}
	photos := attrval.MapAt(node, "photos")
	for _, photoID := range attrval.SortedKeys(photos) {
		entry, _ := photos[photoID].(map[string]any)
		for _, wire := range katapult.Wires(d.NodePhotoData(photoID, entry)) {
			traceID := strings.TrimSpace(attrval.Of(wire["_trace"]).String(""))
			if traceID == "" {
				continue
			}
			trace := d.Trace(traceID)
			meta := d.WireMetadata(wire, trace)
			desc := units.FormatDescription(meta.Owner, meta.CableType)
			if desc == "" {
				continue
			}
			h, ok := katapult.HeightInches(wire)
			if !ok {
				p.log.Debug("engine: wire has no usable height",
					zap.String("trace_id", traceID), zap.String("description", desc))
				continue
			}
			if prev, dup := out[desc]; dup && prev.SortHeight() >= h {
				continue
			}

			att := model.Attachment{
				Kind:        model.KindAttachment,
				Description: desc,
				IsProposed:  meta.IsProposed,
				Underground: units.IsUnderground(desc, meta.CableType),
				TraceID:     traceID,
				Source:      model.SourceSurvey,
			}
			height := h
			if meta.IsProposed {
				att.Proposed = &height
			} else {
				att.Existing = &height
			}
			if m, ok := katapult.WireMidspanInches(wire); ok && !meta.IsProposed {
				mid := m
				att.MidspanRaw = &mid
			}
			out[desc] = att
		}
	}
	return out
}

// attachmentKeys builds the two lookup keys for an engineering design item:
// a simple owner||description key and a detailed key adding the item type, so
// recommended items can match measured items at either granularity.
func attachmentKeys(owner, desc, itemType string) (simple, detailed string) {
	ownerNorm := units.NormalizeOwner(owner)
	descNorm := units.FormatDescription(owner, desc)
	simple = ownerNorm + "||" + descNorm
	if itemType != "" {
		detailed = simple + "||" + strings.ToLower(strings.TrimSpace(itemType))
	}
	return simple, detailed
}

// designItem is one wire or equipment entry lifted out of a design structure.
type designItem struct {
	owner    string
	desc     string
	itemType string
	usage    string
	id       string
	height   *float64 // inches
	midspan  *float64 // inches, wires only
}

// designItems flattens a design's wires and equipments. Heights arrive in
// meters and are converted once here.
func designItems(design map[string]any) []designItem {
	structure := attrval.MapAt(design, "structure")
	var items []designItem
	for _, wire := range attrval.SliceOfMaps(structure["wires"]) {
		client := attrval.MapAt(wire, "clientItem")
		item := designItem{
			owner:    attrval.Of(attrval.MapAt(wire, "owner")["id"]).String(""),
			desc:     attrval.Of(client["description"]).String(""),
			itemType: attrval.Of(client["type"]).String(""),
			usage:    attrval.Of(wire["usageGroup"]).String(""),
			id:       attrval.Of(wire["id"]).String(""),
		}
		if m, ok := attrval.Of(attrval.MapAt(wire, "attachmentHeight")["value"]).Float(); ok {
			item.height = units.Float64(units.MetersToInches(m))
		}
		if m, ok := attrval.Of(attrval.MapAt(wire, "midspanHeight")["value"]).Float(); ok {
			item.midspan = units.Float64(units.MetersToInches(m))
		}
		items = append(items, item)
	}
	for _, eq := range attrval.SliceOfMaps(structure["equipments"]) {
		client := attrval.MapAt(eq, "clientItem")
		desc := attrval.Of(client["description"]).String("")
		if desc == "" {
			desc = attrval.Of(client["type"]).String("")
		}
		item := designItem{
			owner:    attrval.Of(attrval.MapAt(eq, "owner")["id"]).String(""),
			desc:     desc,
			itemType: attrval.Of(client["type"]).String(""),
			id:       attrval.Of(eq["id"]).String(""),
		}
		if m, ok := attrval.Of(attrval.MapAt(eq, "attachmentHeight")["value"]).Float(); ok {
			item.height = units.Float64(units.MetersToInches(m))
		}
		items = append(items, item)
	}
	return items
}

// engineeringAttachments reconciles the measured (as-built) and recommended
// (target) designs at a location into attachment records keyed by both the
// simple and detailed form, so either key can find the record later.
//
// Recommended items are matched against measured ones by exact key, then by
// equal item id, then — for the Charter/Spectrum family — by a shared "fiber"
// keyword. A matched pair whose height difference is under the tolerance is
// no change; above it, the recommended height becomes the proposed height.
// Unmatched recommended items are new installs.
func (p *Processor) engineeringAttachments(loc map[string]any) map[string]*model.Attachment {
	measured := spida.Design(loc, spida.MeasuredLabel)
	recommended := spida.Design(loc, spida.RecommendedLabel)
	if measured == nil && recommended == nil {
		return map[string]*model.Attachment{}
	}

	out := map[string]*model.Attachment{}
	byID := map[string]*model.Attachment{}

	store := func(item designItem, att *model.Attachment) {
		simple, detailed := attachmentKeys(item.owner, item.desc, item.itemType)
		out[simple] = att
		if detailed != "" {
			out[detailed] = att
		}
		if item.id != "" {
			byID[item.id] = att
		}
	}

	for _, item := range designItems(measured) {
		att := &model.Attachment{
			Kind:        model.KindAttachment,
			Description: units.FormatDescription(item.owner, item.desc),
			Existing:    item.height,
			Underground: units.IsUnderground(item.desc, item.itemType),
			WireID:      item.id,
			UsageGroup:  item.usage,
			MidspanRaw:  item.midspan,
			Source:      model.SourceEngineering,
		}
		if att.Underground {
			att.Midspan = "UG"
		}
		store(item, att)
	}

	for _, item := range designItems(recommended) {
		att := p.matchMeasured(out, byID, item)
		if att == nil {
			// New install: present only in the target state.
			install := &model.Attachment{
				Kind:        model.KindAttachment,
				Description: units.FormatDescription(item.owner, item.desc),
				Proposed:    item.height,
				Underground: units.IsUnderground(item.desc, item.itemType),
				WireID:      item.id,
				UsageGroup:  item.usage,
				Source:      model.SourceEngineering,
			}
			if install.Underground {
				install.Midspan = "UG"
			}
			store(item, install)
			continue
		}
		if item.height != nil && att.Existing != nil && abs(*item.height-*att.Existing) >= heightChangeTolerance {
			att.Proposed = item.height
		}
		if units.IsUnderground(item.desc, item.itemType) || att.Underground {
			att.Underground = true
			att.Midspan = "UG"
		}
	}
	return out
}

// matchMeasured finds the measured record a recommended item refers to.
func (p *Processor) matchMeasured(byKey map[string]*model.Attachment, byID map[string]*model.Attachment, item designItem) *model.Attachment {
	simple, detailed := attachmentKeys(item.owner, item.desc, item.itemType)
	if detailed != "" {
		if att, ok := byKey[detailed]; ok {
			return att
		}
	}
	if att, ok := byKey[simple]; ok {
		return att
	}
	if item.id != "" {
		if att, ok := byID[item.id]; ok {
			return att
		}
	}
	// Charter/Spectrum rename their cable descriptions between design
	// snapshots; a shared "fiber" keyword is enough to pair them.
	ownerNorm := strings.ToLower(units.NormalizeOwner(item.owner))
	if strings.Contains(ownerNorm, "charter") || strings.Contains(ownerNorm, "spectrum") {
		if strings.Contains(strings.ToLower(item.desc), "fiber") {
			prefix := units.NormalizeOwner(item.owner) + "||"
			for _, key := range attrval.SortedKeys(anyMap(byKey)) {
				if strings.HasPrefix(key, prefix) && strings.Contains(strings.ToLower(key), "fiber") {
					return byKey[key]
				}
			}
		}
	}
	return nil
}

func anyMap(m map[string]*model.Attachment) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
