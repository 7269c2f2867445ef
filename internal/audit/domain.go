package audit

import "time"

// Action types recorded for privileged operations.
const (
	ActionCreate = "CREATE"
	ActionRead   = "READ"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionExport = "EXPORT"
)

// Outcomes of the recorded action.
const (
	OutcomeSuccess = "Success"
	OutcomeFailed  = "Failed"
)

// Entry is what callers supply when recording an action. Actor identity,
// timestamp and client metadata are captured by the recorder, not the
// caller.
type Entry struct {
	ActionType   string
	Description  string
	ResourceType string
	ResourceID   string
	ResourceName string
	Outcome      string
	OldValue     string
	NewValue     string
	Context      map[string]any
}

// Record is one immutable row of the audit trail.
type Record struct {
	ID           int64
	ActorID      int64
	ActorEmail   string
	Action       string
	Description  string
	ResourceType string
	ResourceID   string
	ResourceName string
	Outcome      string
	OldValue     string
	NewValue     string
	Context      map[string]any
	IP           string
	UserAgent    string
	Device       string
	OccurredAt   time.Time
}

// Filters narrows the audit listing. From/To are calendar dates; the
// window covers From 00:00 through the end of To.
type Filters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Action   string
	Outcome  string
	Search   string
	Page     int
	PageSize int
}

// PagingInfo holds simple pagination metadata.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result wraps one page of audit records.
type Result struct {
	Rows   []Record
	Paging PagingInfo
}
