package status

type State string

const (
	StatePending  State = "PENDING"
	StateProgress State = "PROGRESS"
	StateSuccess  State = "SUCCESS"
	StateFailure  State = "FAILURE"
	StateUnknown  State = "UNKNOWN"
)

// Terminal reports whether no further state writes may follow.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// Record is the durable status entry for one task. A task with no record
// is still pending.
type Record struct {
	TaskID             string  `json:"task_id"`
	Status             State   `json:"status"`
	Message            string  `json:"message"`
	ResultsDownloadURL *string `json:"results_download_url"`
}

// Pending is the record reported for task ids the store has never seen.
func Pending(taskID string) *Record {
	return &Record{
		TaskID:  taskID,
		Status:  StatePending,
		Message: "Processing...",
	}
}
