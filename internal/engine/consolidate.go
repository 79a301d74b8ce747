package engine

import (
	"sort"

	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/units"
)

// consolidate merges the two extractors' outputs into one list for the pole.
// When engineering data exists it is authoritative for descriptions and
// heights; the survey map is then consulted only to fill the midspan field of
// moved attachments. Records sharing a description are deduplicated, keeping
// the one that carries both heights. The result is sorted by height
// descending, stable, with proposed height standing in when existing is
// absent.
func consolidate(engineering map[string]*model.Attachment, survey map[string]model.Attachment) []model.Attachment {
	var list []model.Attachment

	if len(engineering) > 0 {
		list = dedupeByDescription(engineering)
		for i := range list {
			att := &list[i]
			if !att.Moved() || att.Midspan != "" {
				continue
			}
			// A moved attachment with no engineering midspan inherits the
			// survey-side value for the same description.
			if sv, ok := survey[att.Description]; ok {
				switch {
				case sv.Underground:
					att.Midspan = "UG"
				case sv.MidspanRaw != nil:
					att.Midspan = units.ToFeetInches(*sv.MidspanRaw)
					att.MidspanRaw = sv.MidspanRaw
				}
			}
		}
	} else {
		list = make([]model.Attachment, 0, len(survey))
		for _, desc := range sortedDescriptions(survey) {
			list = append(list, survey[desc])
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SortHeight() > list[j].SortHeight()
	})
	return list
}

// dedupeByDescription collapses the dual-keyed engineering map to one record
// per description. When several distinct records share a description, the one
// with both an existing and a proposed height is the most informative.
func dedupeByDescription(attachments map[string]*model.Attachment) []model.Attachment {
	best := map[string]*model.Attachment{}
	order := []string{}

	keys := make([]string, 0, len(attachments))
	for k := range attachments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		att := attachments[key]
		cur, ok := best[att.Description]
		if !ok {
			best[att.Description] = att
			order = append(order, att.Description)
			continue
		}
		if cur == att {
			continue
		}
		if !(cur.HasExisting() && cur.HasProposed()) && att.HasExisting() && att.HasProposed() {
			best[att.Description] = att
		}
	}

	out := make([]model.Attachment, 0, len(order))
	for _, desc := range order {
		out = append(out, *best[desc])
	}
	return out
}

func sortedDescriptions(m map[string]model.Attachment) []string {
	descs := make([]string, 0, len(m))
	for d := range m {
		descs = append(descs, d)
	}
	sort.Strings(descs)
	return descs
}

// ownersWithChanges collects the normalized owner names that have an
// attachment moving or newly proposed; these owners' span wires feed the
// pole-level midspan calculation.
func ownersWithChanges(attachers []model.Attachment) map[string]struct{} {
	owners := map[string]struct{}{}
	for i := range attachers {
		att := &attachers[i]
		if !att.Moved() && !att.IsProposed {
			continue
		}
		owner, _, _ := splitOwner(att.Description)
		if owner != "" {
			owners[owner] = struct{}{}
		}
	}
	return owners
}

func splitOwner(description string) (owner, rest string, ok bool) {
	for i, r := range description {
		if r == ' ' {
			return units.NormalizeOwner(description[:i]), description[i+1:], true
		}
	}
	return units.NormalizeOwner(description), "", false
}
