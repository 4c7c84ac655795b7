package model

// ActivitySource tells whether an activity was extracted from an output
// script or from an input witness stack. The index field alone cannot
// distinguish the two.
type ActivitySource string

const (
	// SourceOutput marks activities decoded from an output locking script.
	SourceOutput ActivitySource = "output"
	// SourceInput marks activities decoded from an input witness stack.
	SourceInput ActivitySource = "input"
)

// ChangeKind describes how a state change affects a field.
type ChangeKind string

const (
	// ChangeCreated marks a field that did not exist before the activity.
	ChangeCreated ChangeKind = "created"
	// ChangeUpdated marks a field whose value is replaced by the activity.
	ChangeUpdated ChangeKind = "updated"
)

// StateChange records one claimed effect of an activity on protocol
// state. Before/after are symbolic placeholders, not ledger values.
type StateChange struct {
	Field  string     `json:"field"`
	Before string     `json:"before,omitempty"`
	After  string     `json:"after"`
	Kind   ChangeKind `json:"type"`
}

// Activity is one detected metaprotocol event extracted from a
// transaction. Index is the position within the scanned list; Source
// tells which list that was.
type Activity struct {
	Protocol    string            `json:"protocol"`
	Operation   string            `json:"operation"`
	Index       int               `json:"index"`
	Source      ActivitySource    `json:"source"`
	Data        map[string]string `json:"data,omitempty"`
	Changes     []StateChange     `json:"changes,omitempty"`
	Description string            `json:"description"`
	Importance  uint8             `json:"importance"`
	RawScript   string            `json:"raw_script,omitempty"`
}
