// Package spida reads the engineering-analysis dataset: pole locations
// grouped under leads, each carrying measured and recommended structural
// designs plus load-analysis results.
package spida

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/units"
)

// Design labels used throughout the engineering export.
const (
	MeasuredLabel    = "Measured Design"
	RecommendedLabel = "Recommended Design"
)

// wireKey identifies a span wire by owner and the sorted set of pole
// labels it runs between.
type wireKey struct {
	owner     string
	endpoints string
}

// Dataset wraps the decoded engineering document with lookups built once
// up front: locations by normalized pole id, the job's pole ordering, and
// span wires by (owner, endpoints).
type Dataset struct {
	root  map[string]any
	log   *zap.Logger
	locs  map[string]map[string]any
	order map[string]int
	seq   []string
	wires map[wireKey]map[string]any
}

// New wraps a decoded engineering document and builds its lookups.
// log may not be nil.
func New(root map[string]any, log *zap.Logger) *Dataset {
	d := &Dataset{
		root:  root,
		log:   log,
		locs:  map[string]map[string]any{},
		order: map[string]int{},
		wires: map[wireKey]map[string]any{},
	}
	d.build()
	return d
}

func (d *Dataset) build() {
	for _, lead := range attrval.SliceOfMaps(d.root["leads"]) {
		for _, loc := range attrval.SliceOfMaps(lead["locations"]) {
			label := attrval.Of(loc["label"]).String("")
			norm := units.NormalizePoleID(label)
			if norm == "" {
				continue
			}
			if _, seen := d.order[norm]; !seen {
				d.order[norm] = len(d.seq)
				d.seq = append(d.seq, norm)
			}
			d.locs[norm] = loc
			d.indexWires(norm, loc)
		}
	}
	d.log.Debug("spida: lookups built",
		zap.Int("locations", len(d.locs)),
		zap.Int("span_wires", len(d.wires)))
}

// indexWires registers every design wire at a location under its owner and
// sorted endpoint set, so survey spans can be matched to engineering spans.
func (d *Dataset) indexWires(locPole string, loc map[string]any) {
	for _, design := range attrval.SliceOfMaps(loc["designs"]) {
		structure := attrval.MapAt(design, "structure")
		for _, wire := range attrval.SliceOfMaps(structure["wires"]) {
			owner := units.NormalizeOwner(ownerID(wire))
			endpoints := map[string]struct{}{locPole: {}}
			for _, wep := range attrval.SliceOfMaps(wire["wireEndPoints"]) {
				if l := units.NormalizePoleID(attrval.Of(wep["label"]).String("")); l != "" {
					endpoints[l] = struct{}{}
				}
			}
			d.wires[wireKey{owner: owner, endpoints: joinSorted(endpoints)}] = wire
		}
	}
}

func joinSorted(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// ownerID reads the owner id nested under an equipment or wire entry.
func ownerID(entry map[string]any) string {
	return attrval.Of(attrval.MapAt(entry, "owner")["id"]).String("")
}

// Location returns the location record for a normalized pole id.
func (d *Dataset) Location(normPole string) map[string]any {
	return d.locs[normPole]
}

// Sequence returns the job's pole ordering as normalized ids. Backspans
// derive from adjacency in this sequence.
func (d *Dataset) Sequence() []string {
	return d.seq
}

// OrderOf returns a pole's position in the job sequence.
func (d *Dataset) OrderOf(normPole string) (int, bool) {
	i, ok := d.order[normPole]
	return i, ok
}

// SpanWire returns the design wire owned by owner running between the given
// poles, if the job indexed one.
func (d *Dataset) SpanWire(owner string, poles ...string) map[string]any {
	set := map[string]struct{}{}
	for _, p := range poles {
		if norm := units.NormalizePoleID(p); norm != "" {
			set[norm] = struct{}{}
		}
	}
	return d.wires[wireKey{owner: units.NormalizeOwner(owner), endpoints: joinSorted(set)}]
}

// Design returns the design with the given label at a location.
func Design(loc map[string]any, label string) map[string]any {
	for _, design := range attrval.SliceOfMaps(loc["designs"]) {
		if strings.EqualFold(attrval.Of(design["label"]).String(""), label) {
			return design
		}
	}
	return nil
}

// DesignWires returns a design's structure wires.
func DesignWires(design map[string]any) []map[string]any {
	return attrval.SliceOfMaps(attrval.MapAt(design, "structure")["wires"])
}

// ConstructionGrade reads the job-level construction grade from the client
// analysis cases.
func (d *Dataset) ConstructionGrade() string {
	clientData := attrval.MapAt(d.root, "clientData")
	for _, c := range attrval.SliceOfMaps(clientData["analysisCases"]) {
		if g := attrval.Of(c["constructionGrade"]).String(""); g != "" {
			return g
		}
	}
	return ""
}
