// Package katapult reads the field-survey dataset: photo-derived wire and
// equipment measurements organized by node (pole) and connection (span),
// with a trace collection classifying each wire.
package katapult

import (
	"strings"

	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/attrval"
	"github.com/linecrew/makeready-cli/internal/units"
)

// Dataset wraps the decoded survey document. All accessors are read-only and
// tolerate missing or oddly shaped collections.
type Dataset struct {
	root map[string]any
	log  *zap.Logger
}

// New wraps a decoded survey document. log may not be nil.
func New(root map[string]any, log *zap.Logger) *Dataset {
	return &Dataset{root: root, log: log}
}

// Nodes returns the node collection.
func (d *Dataset) Nodes() map[string]any {
	return attrval.MapAt(d.root, "nodes")
}

// Node returns one node's map by id.
func (d *Dataset) Node(id string) map[string]any {
	n, _ := d.Nodes()[id].(map[string]any)
	return n
}

// NodeIDForPole resolves a normalized pole id back to the node carrying it.
// Returns "" when no pole node matches.
func (d *Dataset) NodeIDForPole(normPole string) string {
	if normPole == "" {
		return ""
	}
	nodes := d.Nodes()
	for _, id := range attrval.SortedKeys(nodes) {
		node, ok := nodes[id].(map[string]any)
		if !ok || !IsPoleNode(node) {
			continue
		}
		if units.NormalizePoleID(PoleNumber(node)) == normPole {
			return id
		}
	}
	return ""
}

// Connections returns the connection (span) collection.
func (d *Dataset) Connections() map[string]any {
	return attrval.MapAt(d.root, "connections")
}

// Photo returns an entry from the top-level photo collection.
func (d *Dataset) Photo(id string) map[string]any {
	photos := attrval.MapAt(d.root, "photos")
	p, _ := photos[id].(map[string]any)
	return p
}

// NodeAttrs returns a node's attributes map.
func NodeAttrs(node map[string]any) map[string]any {
	return attrval.MapAt(node, "attributes")
}

// IsPoleNode reports whether a node represents a physical pole rather than a
// service point, anchor, or other reference node.
func IsPoleNode(node map[string]any) bool {
	switch attrval.Of(node["button"]).String("") {
	case "aerial", "pole", "aerial_path":
		return true
	}
	nodeType, _ := attrval.FirstValue(NodeAttrs(node), "node_type")
	return nodeType.String("") == "pole"
}

// poleNumberAttrs is the priority order of attribute names a pole tag can be
// stored under.
var poleNumberAttrs = []string{
	"PoleNumber", "pl_number", "dloc_number",
	"PL_number", "DLOC_number", "pole_tag", "electric_pole_tag",
}

// PoleNumber extracts a node's pole tag through the attribute fallback chain.
func PoleNumber(node map[string]any) string {
	return attrval.First(NodeAttrs(node), poleNumberAttrs...)
}

// NodeLabel resolves a display label for the node at id. Pole nodes yield
// their pole tag; reference/service/anchor nodes yield a synthesized
// descriptive label; anything else falls back to fallback or a shortened
// node id. It never fails.
func (d *Dataset) NodeLabel(id, fallback string) string {
	if id == "" {
		if fallback != "" {
			return fallback
		}
		return "Unknown"
	}
	node := d.Node(id)
	if tag := PoleNumber(node); tag != "" {
		return tag
	}

	attrs := NodeAttrs(node)
	nodeType := strings.ToLower(attrval.First(attrs, "node_type"))
	switch nodeType {
	case "reference", "service", "anchor":
		if name := attrval.First(attrs, "name", "label", "scid", "reference_name", "description"); name != "" {
			return "Reference-" + name
		}
		return strings.ToUpper(nodeType[:1]) + nodeType[1:] + "-" + shortID(id)
	}

	if fallback != "" {
		return fallback
	}
	return "Node-" + shortID(id)
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

// NodeCoords returns a node's latitude/longitude when present.
func NodeCoords(node map[string]any) (lat, lon *float64) {
	if v, ok := attrval.Of(node["latitude"]).Float(); ok {
		lat = units.Float64(v)
	}
	if v, ok := attrval.Of(node["longitude"]).Float(); ok {
		lon = units.Float64(v)
	}
	return lat, lon
}

// NodePhotoData resolves the measurement payload ("photofirst_data") for one
// photo entry attached to a node or section. Entries are either inline photo
// maps or association stubs pointing into the top-level photo collection.
func (d *Dataset) NodePhotoData(photoID string, entry map[string]any) map[string]any {
	if entry != nil {
		if _, isAssoc := entry["association"]; !isAssoc {
			if pd := attrval.MapAt(entry, "photofirst_data"); pd != nil {
				return pd
			}
		}
	}
	return attrval.MapAt(d.Photo(photoID), "photofirst_data")
}

// Wires extracts the wire entries from a photofirst payload, tolerating both
// list and keyed-map shapes.
func Wires(photoData map[string]any) []map[string]any {
	if photoData == nil {
		return nil
	}
	return attrval.SliceOfMaps(photoData["wire"])
}
