package model

// RowKind distinguishes real attachments from the span header rows that get
// interleaved into a pole's final attacher list.
type RowKind string

const (
	KindAttachment      RowKind = "attachment"
	KindReferenceHeader RowKind = "reference_header"
	KindBackspanHeader  RowKind = "backspan_header"
)

// Source identifies which dataset a record came from.
type Source string

const (
	SourceSurvey      Source = "survey"
	SourceEngineering Source = "engineering"
)

// Attachment is one wire or equipment item on a pole (or a header row in the
// assembled list). Heights are inches; nil means not present in the data,
// which is distinct from zero.
type Attachment struct {
	Kind        RowKind `json:"kind"`
	Description string  `json:"description"`

	Existing *float64 `json:"existing_height_in,omitempty"`
	Proposed *float64 `json:"proposed_height_in,omitempty"`

	// Midspan is the formatted midspan clearance for the report column:
	// a feet-inches string, "UG" for underground runs, or "" when unset.
	Midspan    string   `json:"midspan_proposed,omitempty"`
	MidspanRaw *float64 `json:"-"`

	Underground bool `json:"underground,omitempty"`
	IsProposed  bool `json:"is_proposed,omitempty"`
	IsNeutral   bool `json:"is_neutral,omitempty"`

	// StyleHint is a rendering hint for header rows (light-blue / orange /
	// purple).
	StyleHint string `json:"style_hint,omitempty"`

	// WireID and UsageGroup carry engineering-dataset identity used during
	// measured/recommended matching.
	WireID     string `json:"-"`
	UsageGroup string `json:"-"`

	// TraceID carries the survey trace identity used for span dedup.
	TraceID string `json:"-"`

	Source Source `json:"source,omitempty"`
}

// HasExisting reports whether the attachment has a measured height.
func (a *Attachment) HasExisting() bool { return a.Existing != nil }

// HasProposed reports whether the attachment has a target height.
func (a *Attachment) HasProposed() bool { return a.Proposed != nil }

// Moved reports whether both heights are present and differ: the attachment
// is being relocated on the pole.
func (a *Attachment) Moved() bool {
	return a.Existing != nil && a.Proposed != nil && *a.Existing != *a.Proposed
}

// NewInstall reports whether the attachment only exists in the target state.
func (a *Attachment) NewInstall() bool {
	return a.Existing == nil && (a.Proposed != nil || a.IsProposed)
}

// Removal reports whether the attachment exists today with no target height
// and is not flagged proposed.
func (a *Attachment) Removal() bool {
	return a.Existing != nil && a.Proposed == nil && !a.IsProposed
}

// SortHeight is the height used for descending ordering: existing when
// present, otherwise proposed, so new installs keep a sensible position.
func (a *Attachment) SortHeight() float64 {
	if a.Existing != nil {
		return *a.Existing
	}
	if a.Proposed != nil {
		return *a.Proposed
	}
	return 0
}

// IsHeader reports whether the row is a reference or backspan header.
func (a *Attachment) IsHeader() bool {
	return a.Kind == KindReferenceHeader || a.Kind == KindBackspanHeader
}

// TraceMetadata is the classification of a wire resolved from the survey
// dataset's trace collection. A zero value means "nothing known".
type TraceMetadata struct {
	Owner      string
	CableType  string
	UsageGroup string
	IsProposed bool
}
