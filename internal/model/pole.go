package model

// ConflictStrategy controls which source wins when the survey and
// engineering datasets disagree on a pole attribute.
type ConflictStrategy string

const (
	PreferSurvey         ConflictStrategy = "PREFER_SURVEY"
	PreferEngineering    ConflictStrategy = "PREFER_ENGINEERING"
	HighlightDifferences ConflictStrategy = "HIGHLIGHT_DIFFERENCES"
)

// HeightStrategy selects attachment-height conflict behavior. It is
// currently advisory: height reconciliation follows the extractor rules, but
// the selector is carried through so callers can record intent.
type HeightStrategy string

const (
	HeightPreferSurvey      HeightStrategy = "PREFER_SURVEY"
	HeightPreferEngineering HeightStrategy = "PREFER_ENGINEERING"
)

// PoleAction is the pole-level classification of what the make-ready work
// does at this pole.
type PoleAction string

const (
	ActionInstalling PoleAction = "(I)nstalling"
	ActionRemoving   PoleAction = "(R)emoving"
	ActionExisting   PoleAction = "(E)xisting"
)

// SpanHeights summarizes one span touching a pole: lowest photographed
// communications and utility-electrical heights, in inches (nil = none seen).
type SpanHeights struct {
	ConnectionID     string   `json:"connection_id"`
	FromPole         string   `json:"from_pole"`
	ToPole           string   `json:"to_pole"`
	LowestComm       *float64 `json:"lowest_comm_in,omitempty"`
	LowestElectrical *float64 `json:"lowest_electrical_in,omitempty"`
}

// MidspanHeights is the per-destination lowest midspan clearance summary.
// Values are formatted feet-inches strings, "UG", or "NA".
type MidspanHeights struct {
	Comm        string `json:"comm"`
	Electrical  string `json:"electrical"`
	Underground bool   `json:"underground"`
}

// SpanBlock is a reference-span or backspan section of the final attacher
// list: one header row followed by that span's own attachments.
type SpanBlock struct {
	Header      Attachment   `json:"header"`
	Attachments []Attachment `json:"attachments"`
}

// Pole is the per-pole report record.
type Pole struct {
	PoleNumber     string `json:"pole_number"`
	NormPoleNumber string `json:"norm_pole_number"`
	Owner          string `json:"pole_owner"`
	Structure      string `json:"pole_structure"`

	ConstructionGrade string `json:"construction_grade"`
	PLAPercentage     string `json:"pla_percentage"`

	ProposedRiser string `json:"proposed_riser"`
	ProposedGuy   string `json:"proposed_guy"`

	// Primary-span summary for the report's existing-midspan columns.
	LowestMidspanComm       string `json:"existing_midspan_lowest_com"`
	LowestMidspanElectrical string `json:"existing_midspan_lowest_electrical"`
	FromPole                string `json:"from_pole"`
	ToPole                  string `json:"to_pole"`

	// MidspanProposed is the pole-level proposed midspan clearance,
	// formatted, or "" when no change was detected.
	MidspanProposed string `json:"midspan_proposed,omitempty"`

	// Attachers is the final ordered list: below-neutral attachments, then
	// the backspan block, then reference blocks, flattened with header rows.
	Attachers []Attachment `json:"attachers"`

	// BelowNeutral is the filtered primary list before span blocks are
	// appended, kept for callers that need it separately.
	BelowNeutral []Attachment `json:"attachments_below_neutral"`

	Connections    []SpanHeights             `json:"connections,omitempty"`
	MidspanByPole  map[string]MidspanHeights `json:"midspan_heights,omitempty"`
	Action         PoleAction                `json:"pole_action"`
	Status         string                    `json:"status"`
	Latitude       *float64                  `json:"latitude,omitempty"`
	Longitude      *float64                  `json:"longitude,omitempty"`
	OperationNum   int                       `json:"operation_number,omitempty"`
	IsPrimary      bool                      `json:"is_primary"`
	MakeReadyNotes string                    `json:"make_ready_notes,omitempty"`
}
