package spida

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func location(label string, designs ...map[string]any) map[string]any {
	ds := make([]any, len(designs))
	for i, d := range designs {
		ds[i] = d
	}
	return map[string]any{"label": label, "designs": ds}
}

func jobWith(locs ...map[string]any) map[string]any {
	ls := make([]any, len(locs))
	for i, l := range locs {
		ls[i] = l
	}
	return map[string]any{
		"leads": []any{map[string]any{"locations": ls}},
	}
}

func TestDatasetLookups(t *testing.T) {
	root := jobWith(
		location("1-PL410620"),
		location("2-PL410621"),
		location("3-PL410622"),
	)
	d := New(root, zap.NewNop())

	// Location labels normalize to their trailing digits.
	assert.Equal(t, []string{"410620", "410621", "410622"}, d.Sequence())

	i, ok := d.OrderOf("410621")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = d.OrderOf("999")
	assert.False(t, ok)

	require.NotNil(t, d.Location("410620"))
	assert.Nil(t, d.Location("999"))
}

func TestSpanWireLookup(t *testing.T) {
	wire := map[string]any{
		"owner": map[string]any{"id": "at&t"},
		"wireEndPoints": []any{
			map[string]any{"label": "PL200"},
		},
	}
	loc := location("PL100", map[string]any{
		"label":     RecommendedLabel,
		"structure": map[string]any{"wires": []any{wire}},
	})
	d := New(jobWith(loc), zap.NewNop())

	// Endpoint order and owner casing must not matter.
	got := d.SpanWire("AT&T", "PL200", "PL100")
	require.NotNil(t, got)

	assert.Nil(t, d.SpanWire("CHARTER", "PL100", "PL200"))
	assert.Nil(t, d.SpanWire("AT&T", "PL100", "PL300"))
}

func TestStructure(t *testing.T) {
	tests := []struct {
		name string
		loc  map[string]any
		want string
	}{
		{"pole tags", map[string]any{
			"poleTags": map[string]any{"height": "40", "class": "2", "species": "Southern Pine"},
		}, "40-2 Southern Pine"},
		{"no species", map[string]any{
			"poleTags": map[string]any{"height": "45", "class": "3"},
		}, "45-3"},
		{"direct fields", map[string]any{
			"height": "40", "class": "2", "species": "Southern Pine",
		}, "40-2 Southern Pine"},
		{"alias fallback", map[string]any{
			"aliases": []any{map[string]any{"id": "40-2"}},
		}, "40-2"},
		{"missing", map[string]any{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Structure(tt.loc))
		})
	}
}

func TestPLAPercentage(t *testing.T) {
	loc := location("PL100", map[string]any{
		"label": RecommendedLabel,
		"analysis": []any{map[string]any{
			"results": []any{
				map[string]any{"component": "Pole", "analysisType": "BUCKLING", "actual": 12.0},
				map[string]any{"component": "Pole", "analysisType": "STRESS", "actual": 78.7},
			},
		}},
	})
	assert.Equal(t, "78.70%", PLAPercentage(loc))

	assert.Equal(t, "N/A", PLAPercentage(location("PL100")))
	assert.Equal(t, "N/A", PLAPercentage(location("PL100", map[string]any{"label": RecommendedLabel})))
}

func equipmentDesign(label string, risers []map[string]any, guys []map[string]any) map[string]any {
	rs := make([]any, len(risers))
	for i, r := range risers {
		rs[i] = r
	}
	gs := make([]any, len(guys))
	for i, g := range guys {
		gs[i] = g
	}
	return map[string]any{
		"label": label,
		"structure": map[string]any{
			"equipments": rs,
			"guys":       gs,
		},
	}
}

func riser(owner, size string) map[string]any {
	return map[string]any{
		"owner":      map[string]any{"id": owner},
		"clientItem": map[string]any{"type": "RISER", "size": size},
	}
}

func guy(owner, size, kind string) map[string]any {
	return map[string]any{
		"owner":      map[string]any{"id": owner},
		"clientItem": map[string]any{"type": kind, "size": size},
	}
}

func TestProposedRiser(t *testing.T) {
	t.Run("added in recommended", func(t *testing.T) {
		loc := location("PL100",
			equipmentDesign(MeasuredLabel, nil, nil),
			equipmentDesign(RecommendedLabel, []map[string]any{riser("CPS", `2"`)}, nil),
		)
		assert.True(t, ProposedRiser(loc))
	})

	t.Run("present in both", func(t *testing.T) {
		loc := location("PL100",
			equipmentDesign(MeasuredLabel, []map[string]any{riser("CPS", `2"`)}, nil),
			equipmentDesign(RecommendedLabel, []map[string]any{riser("CPS", `2"`)}, nil),
		)
		assert.False(t, ProposedRiser(loc))
	})

	t.Run("no measured design", func(t *testing.T) {
		loc := location("PL100",
			equipmentDesign(RecommendedLabel, []map[string]any{riser("CPS", `2"`)}, nil),
		)
		assert.True(t, ProposedRiser(loc))
	})

	t.Run("none anywhere", func(t *testing.T) {
		assert.False(t, ProposedRiser(location("PL100")))
	})
}

func TestProposedGuy(t *testing.T) {
	loc := location("PL100",
		equipmentDesign(MeasuredLabel, nil, []map[string]any{guy("CPS", `3/8"`, "DOWN_GUY")}),
		equipmentDesign(RecommendedLabel, nil, []map[string]any{
			guy("CPS", `3/8"`, "DOWN_GUY"),
			guy("AT&T", `5/16"`, "DOWN_GUY"),
		}),
	)
	assert.True(t, ProposedGuy(loc))

	same := location("PL100",
		equipmentDesign(MeasuredLabel, nil, []map[string]any{guy("CPS", `3/8"`, "DOWN_GUY")}),
		equipmentDesign(RecommendedLabel, nil, []map[string]any{guy("CPS", `3/8"`, "DOWN_GUY")}),
	)
	assert.False(t, ProposedGuy(same))
}

func TestNotesProposeEquipment(t *testing.T) {
	assert.True(t, NotesProposeRiser("Install riser on north face"))
	assert.True(t, NotesProposeRiser("PROPOSED RISER for fiber"))
	assert.False(t, NotesProposeRiser("existing riser in good condition"))

	assert.True(t, NotesProposeGuy("add down guy to offset tension"))
	assert.True(t, NotesProposeGuy("new overhead guy"))
	assert.True(t, NotesProposeGuy("install guy"))
	assert.False(t, NotesProposeGuy("existing guy wire"))
}

func TestConstructionGrade(t *testing.T) {
	d := New(map[string]any{
		"clientData": map[string]any{
			"analysisCases": []any{
				map[string]any{"name": "Light"},
				map[string]any{"constructionGrade": "C"},
			},
		},
	}, zap.NewNop())
	assert.Equal(t, "C", d.ConstructionGrade())

	empty := New(map[string]any{}, zap.NewNop())
	assert.Equal(t, "", empty.ConstructionGrade())
}
