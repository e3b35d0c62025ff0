// Package models contains domain types for the Room Matcher backend.
package models

// ParsedProfile is the normalized roommate-preference record produced by the
// remote parsing pipeline from an uploaded document. Empty fields mean
// "not specified"; absence is not an error state.
type ParsedProfile struct {
	ID             string  `json:"id" yaml:"id"`
	City           string  `json:"city" yaml:"city"`
	Area           string  `json:"area" yaml:"area"`
	BudgetPKR      float64 `json:"budget_PKR" yaml:"budget_PKR"`
	SleepSchedule  string  `json:"sleep_schedule" yaml:"sleep_schedule"`
	Cleanliness    string  `json:"cleanliness" yaml:"cleanliness"`
	NoiseTolerance string  `json:"noise_tolerance" yaml:"noise_tolerance"`
	StudyHabits    string  `json:"study_habits" yaml:"study_habits"`
	FoodPref       string  `json:"food_pref" yaml:"food_pref"`
	Notes          string  `json:"notes" yaml:"notes"`
}
