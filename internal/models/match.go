package models

// MatchShort is the compact summary of a candidate shown on a match card.
type MatchShort struct {
	City          string  `json:"city" yaml:"city"`
	Area          string  `json:"area" yaml:"area"`
	BudgetPKR     float64 `json:"budget_PKR" yaml:"budget_PKR"`
	Cleanliness   string  `json:"cleanliness" yaml:"cleanliness"`
	SleepSchedule string  `json:"sleep_schedule" yaml:"sleep_schedule"`
}

// MatchResultItem is one candidate roommate compared to the user's profile.
// Score is 0-100; an empty RedFlags slice means no warnings.
type MatchResultItem struct {
	RoommateID string     `json:"roommate_id" yaml:"roommate_id"`
	Score      float64    `json:"score" yaml:"score"`
	Short      MatchShort `json:"short" yaml:"short"`
	RedFlags   []string   `json:"red_flags" yaml:"red_flags"`
}

// MatchingResults is the aggregate output of one orchestrated run.
// Matches are ordered by descending compatibility. UsedFallback is true
// whenever the remote scoring call did not succeed and the local substitute
// set was used instead. Wingman maps roommate IDs to advice text.
type MatchingResults struct {
	Matches        []MatchResultItem `json:"matches" yaml:"matches"`
	CandidateCount int               `json:"candidate_count" yaml:"candidate_count"`
	UsedFallback   bool              `json:"used_fallback" yaml:"used_fallback"`
	Wingman        map[string]string `json:"wingman" yaml:"wingman"`
}

// NewMatchingResults creates an empty result set.
func NewMatchingResults() *MatchingResults {
	return &MatchingResults{
		Matches: make([]MatchResultItem, 0),
		Wingman: make(map[string]string),
	}
}
