package katapult

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/units"
)

func testDataset(t *testing.T, root map[string]any) *Dataset {
	t.Helper()
	return New(root, zap.NewNop())
}

func TestIsPoleNode(t *testing.T) {
	tests := []struct {
		name string
		node map[string]any
		want bool
	}{
		{"aerial button", map[string]any{"button": "aerial"}, true},
		{"pole button", map[string]any{"button": "pole"}, true},
		{"aerial_path button", map[string]any{"button": "aerial_path"}, true},
		{"node_type pole", map[string]any{
			"attributes": map[string]any{"node_type": map[string]any{"button_added": "pole"}},
		}, true},
		{"reference node", map[string]any{
			"button":     "reference",
			"attributes": map[string]any{"node_type": map[string]any{"button_added": "reference"}},
		}, false},
		{"empty", map[string]any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPoleNode(tt.node))
		})
	}
}

func TestPoleNumber_FallbackChain(t *testing.T) {
	node := map[string]any{
		"attributes": map[string]any{
			"dloc_number": map[string]any{"-Imported": "PL410620"},
		},
	}
	assert.Equal(t, "PL410620", PoleNumber(node))

	// PoleNumber outranks dloc_number when both exist.
	node["attributes"].(map[string]any)["PoleNumber"] = map[string]any{"assessment": "PL999999"}
	assert.Equal(t, "PL999999", PoleNumber(node))

	assert.Equal(t, "", PoleNumber(map[string]any{}))
}

func TestNodeLabel(t *testing.T) {
	d := testDataset(t, map[string]any{
		"nodes": map[string]any{
			"node-pole": map[string]any{
				"attributes": map[string]any{
					"PoleNumber": map[string]any{"assessment": "PL123"},
				},
			},
			"node-ref-named": map[string]any{
				"attributes": map[string]any{
					"node_type": map[string]any{"button_added": "reference"},
					"name":      map[string]any{"value": "HOUSE"},
				},
			},
			"node-svc-anon": map[string]any{
				"attributes": map[string]any{
					"node_type": map[string]any{"button_added": "service"},
				},
			},
		},
	})

	assert.Equal(t, "PL123", d.NodeLabel("node-pole", ""))
	assert.Equal(t, "Reference-HOUSE", d.NodeLabel("node-ref-named", ""))
	assert.Equal(t, "Service-node-s", d.NodeLabel("node-svc-anon", ""))
	assert.Equal(t, "fallback", d.NodeLabel("missing", "fallback"))
	assert.Equal(t, "Node-missin", d.NodeLabel("missing", ""))
	assert.Equal(t, "Unknown", d.NodeLabel("", ""))
}

func TestNodePhotoData(t *testing.T) {
	d := testDataset(t, map[string]any{
		"photos": map[string]any{
			"p1": map[string]any{
				"photofirst_data": map[string]any{"wire": map[string]any{}},
			},
		},
	})

	// Association stub resolves through the top-level collection.
	pd := d.NodePhotoData("p1", map[string]any{"association": "main"})
	require.NotNil(t, pd)

	// Inline payload wins without a lookup.
	inline := map[string]any{
		"photofirst_data": map[string]any{"wire": []any{map[string]any{"id": "w1"}}},
	}
	pd = d.NodePhotoData("p-unknown", inline)
	require.NotNil(t, pd)
	wires := Wires(pd)
	require.Len(t, wires, 1)
	assert.Equal(t, "w1", wires[0]["id"])
}

func TestTrace_Shapes(t *testing.T) {
	entry := map[string]any{"company": "AT&T", "cable_type": "Telco Com"}

	tests := []struct {
		name   string
		traces map[string]any
	}{
		{"flat", map[string]any{"t1": entry}},
		{"trace_data", map[string]any{"trace_data": map[string]any{"t1": entry}}},
		{"trace_items", map[string]any{"trace_items": map[string]any{"t1": entry}}},
		{"nested group", map[string]any{"job_abc": map[string]any{"t1": entry}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDataset(t, map[string]any{"traces": tt.traces})
			got := d.Trace("t1")
			assert.Equal(t, "AT&T", got["company"])
		})
	}

	t.Run("miss returns empty map", func(t *testing.T) {
		d := testDataset(t, map[string]any{"traces": map[string]any{}})
		assert.NotNil(t, d.Trace("nope"))
		assert.Empty(t, d.Trace("nope"))
		assert.Empty(t, d.Trace("  "))
	})
}

func TestWireMetadata(t *testing.T) {
	d := testDataset(t, map[string]any{})

	t.Run("trace preferred", func(t *testing.T) {
		wire := map[string]any{"_company": "Charter", "_cable_type": "Fiber"}
		trace := map[string]any{"company": "AT&T", "cable_type": "Telco Com", "proposed": true}
		meta := d.WireMetadata(wire, trace)
		assert.Equal(t, "AT&T", meta.Owner)
		assert.Equal(t, "Telco Com", meta.CableType)
		assert.True(t, meta.IsProposed)
	})

	t.Run("wire fallback", func(t *testing.T) {
		wire := map[string]any{"_company": "cps energy", "type": "Neutral", "usageGroup": "POWER"}
		meta := d.WireMetadata(wire, nil)
		assert.Equal(t, "CPS ENERGY", meta.Owner)
		assert.Equal(t, "Neutral", meta.CableType)
		assert.Equal(t, "POWER", meta.UsageGroup)
		assert.False(t, meta.IsProposed)
	})

	t.Run("owner normalized", func(t *testing.T) {
		meta := d.WireMetadata(map[string]any{"_company": "at&t"}, nil)
		assert.Equal(t, "AT&T", meta.Owner)
	})
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name     string
		meta     model.TraceMetadata
		comm     bool
		electric bool
	}{
		{"att telco", model.TraceMetadata{Owner: "AT&T", CableType: "Telco Com"}, true, false},
		{"charter fiber", model.TraceMetadata{Owner: "CHARTER", CableType: "Fiber Optic Com"}, true, false},
		{"comm by owner only", model.TraceMetadata{Owner: "SPECTRUM", CableType: "drop"}, true, false},
		{"comm by usage group", model.TraceMetadata{Owner: "ACME", UsageGroup: "COMMUNICATION"}, true, false},
		{"cps neutral", model.TraceMetadata{Owner: "CPS ENERGY", CableType: "Neutral"}, false, true},
		{"cps unknown cable defaults electrical", model.TraceMetadata{Owner: "CPS ENERGY"}, false, true},
		{"cps never comm", model.TraceMetadata{Owner: "CPS ENERGY", CableType: "Fiber"}, false, false},
		{"cps supply fiber not electrical", model.TraceMetadata{Owner: "CPS ENERGY", CableType: "Supply Fiber"}, false, false},
		{"unowned", model.TraceMetadata{CableType: "Fiber"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.comm, IsCommunications(tt.meta), "comm")
			assert.Equal(t, tt.electric, IsUtilityElectrical(tt.meta), "electric")
		})
	}
}

func TestHeightInches(t *testing.T) {
	tests := []struct {
		name string
		wire map[string]any
		want float64
		ok   bool
	}{
		{"measured height inches", map[string]any{"_measured_height": 264.5}, 264.5, true},
		{"measured height string number", map[string]any{"_measured_height": "264.5"}, 264.5, true},
		{"feet inches string", map[string]any{"height": `22'-6"`}, 270, true},
		{"dimensioned meters", map[string]any{
			"attachmentHeight": map[string]any{"value": 6.7056, "unit": "METRE"},
		}, 6.7056 * units.InchesPerMeter, true},
		{"dimensioned feet", map[string]any{
			"attachmentHeight": map[string]any{"value": 22.0, "unit": "ft"},
		}, 264, true},
		{"dimensioned no unit is inches", map[string]any{
			"attachmentHeight": map[string]any{"value": 264.0},
		}, 264, true},
		{"position z small is meters", map[string]any{
			"position": map[string]any{"z": 6.7056},
		}, 6.7056 * units.InchesPerMeter, true},
		{"position z large is inches", map[string]any{
			"position": map[string]any{"z": 264.0},
		}, 264, true},
		{"elevation small is meters", map[string]any{"elevation": 7.0}, 7 * units.InchesPerMeter, true},
		{"priority order", map[string]any{
			"_measured_height": 100.0,
			"height":           200.0,
		}, 100, true},
		{"unparseable string skipped", map[string]any{
			"_measured_height": "n/a",
			"measured_height":  150.0,
		}, 150, true},
		{"empty wire", map[string]any{}, 0, false},
		{"nil wire", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HeightInches(tt.wire)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestMidspanHeightInches(t *testing.T) {
	t.Run("per-wire preferred", func(t *testing.T) {
		got, ok := MidspanHeightInches(
			map[string]any{"_midspan_height": 210.0, "_measured_height": 260.0},
			map[string]any{"midspanHeight_in": 215.0},
		)
		require.True(t, ok)
		assert.InDelta(t, 210.0, got, 0.001)
	})

	t.Run("section fallback", func(t *testing.T) {
		got, ok := MidspanHeightInches(
			map[string]any{},
			map[string]any{"midspanHeight_in": 215.0},
		)
		require.True(t, ok)
		assert.InDelta(t, 215.0, got, 0.001)
	})

	t.Run("measured height last resort", func(t *testing.T) {
		got, ok := MidspanHeightInches(map[string]any{"_measured_height": 260.0}, nil)
		require.True(t, ok)
		assert.InDelta(t, 260.0, got, 0.001)
	})

	t.Run("nothing usable", func(t *testing.T) {
		_, ok := MidspanHeightInches(map[string]any{}, map[string]any{})
		assert.False(t, ok)
	})
}
