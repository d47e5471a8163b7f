package audit

import "time"

// Event is one row of the database-access audit log, canonicalized by the
// ingest layer. Events are never mutated after ingestion; scores, anomaly
// flags and explanations are recomputed from the event plus external state.
type Event struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"` // zero value if missing/unparseable

	OSUser   string `json:"os_user"`
	ExecUser string `json:"exec_user"`

	DBType string `json:"db_type"`
	DBName string `json:"db_name"`

	Program string `json:"program"`
	Module  string `json:"module"`

	SrcHost string `json:"src_host"`
	SrcIP   string `json:"src_ip"`

	AccessedObj      string `json:"accessed_obj,omitempty"`
	AccessedObjOwner string `json:"accessed_obj_owner,omitempty"`

	Statement string `json:"statement,omitempty"`
	Context   string `json:"context,omitempty"`
}

// HasTimestamp reports whether the event carries a usable timestamp.
func (e Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}
