package models

// StageStatus represents the status of one run stage.
type StageStatus string

const (
	StageIdle    StageStatus = "idle"
	StageRunning StageStatus = "running"
	StageDone    StageStatus = "done"
)

// StageState is one entry in the fixed ordered stage sequence.
type StageState struct {
	Label  string      `json:"label"`
	Status StageStatus `json:"status"`
}

// RunStatus represents the status of a matching run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
)

// MatchRun represents one orchestrated matching run. Stages before the
// currently running one are done, the current one is running, and all after
// are idle; there is no skipping and no parallelism. Results is nil until
// the Match Scorer stage completes.
type MatchRun struct {
	ID      string           `json:"id"`
	Status  RunStatus        `json:"status"`
	Stages  []StageState     `json:"stages"`
	Results *MatchingResults `json:"results,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NewMatchRun creates a pending run with every stage idle.
func NewMatchRun(id string, labels []string) *MatchRun {
	stages := make([]StageState, len(labels))
	for i, label := range labels {
		stages[i] = StageState{Label: label, Status: StageIdle}
	}
	return &MatchRun{
		ID:     id,
		Status: RunStatusPending,
		Stages: stages,
	}
}
