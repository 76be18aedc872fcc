package core

// JobState tracks an asynchronous export job through its lifecycle.
// Ready, failed and expired are terminal - no further polling occurs.
type JobState int

const (
	JobStatePending JobState = iota
	JobStateRunning
	JobStateReady
	JobStateFailed
	JobStateExpired
)

func JobStateFromString(s string) JobState {
	switch s {
	case JobStatePending.String():
		return JobStatePending
	case JobStateRunning.String():
		return JobStateRunning
	case JobStateReady.String():
		return JobStateReady
	case JobStateFailed.String():
		return JobStateFailed
	case JobStateExpired.String():
		return JobStateExpired
	default:
		return JobStatePending
	}
}

func (s JobState) String() string {
	switch s {
	case JobStatePending:
		return "pending"
	case JobStateRunning:
		return "running"
	case JobStateReady:
		return "ready"
	case JobStateFailed:
		return "failed"
	case JobStateExpired:
		return "expired"
	default:
		return "pending"
	}
}

// Terminal reports whether no further state transitions can occur.
func (s JobState) Terminal() bool {
	return s == JobStateReady || s == JobStateFailed || s == JobStateExpired
}
