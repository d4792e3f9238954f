package steps

// Status is the execution status of a single step within one run.
// Statuses are tracked per step name in the execution record's status map;
// they are never persisted apart from the owning record.
type Status string

// Step statuses. A step starts Pending, becomes In Progress when it is the
// current step, and finishes with one of the terminal values.
const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusSkipped    Status = "Skipped"
	StatusReturned   Status = "Returned"
	StatusRejected   Status = "Rejected"
)
