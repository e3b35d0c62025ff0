package matcher

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/room-matcher/backend/internal/models"
)

// DefaultSampleKey selects the fallback set used when no sample is chosen.
const DefaultSampleKey = "U-001"

// Fallbacks holds the sample profiles and the predetermined local result
// sets substituted when the remote scoring call fails.
type Fallbacks struct {
	samples map[string]models.ParsedProfile
	results map[string]models.MatchingResults
}

// fixturesFile is the YAML layout of a fixtures file.
type fixturesFile struct {
	Samples []models.ParsedProfile            `yaml:"samples"`
	Results map[string]models.MatchingResults `yaml:"results"`
}

// LoadFallbacks reads sample profiles and fallback result sets from a YAML
// fixtures file. An empty path returns the built-in defaults.
func LoadFallbacks(path string) (*Fallbacks, error) {
	if path == "" {
		return DefaultFallbacks(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures file: %w", err)
	}

	var file fixturesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing fixtures file: %w", err)
	}

	f := &Fallbacks{
		samples: make(map[string]models.ParsedProfile),
		results: make(map[string]models.MatchingResults),
	}
	for _, p := range file.Samples {
		f.samples[p.ID] = p
	}
	for key, r := range file.Results {
		f.results[key] = r
	}
	if len(f.results) == 0 {
		return nil, fmt.Errorf("fixtures file %s holds no result sets", path)
	}

	return f, nil
}

// DefaultFallbacks returns the built-in sample profiles and result sets.
func DefaultFallbacks() *Fallbacks {
	return &Fallbacks{
		samples: map[string]models.ParsedProfile{
			"U-001": {
				ID: "U-001", City: "Lahore", Area: "Johar Town", BudgetPKR: 25000,
				SleepSchedule: "early", Cleanliness: "high", NoiseTolerance: "low",
				StudyHabits: "library", FoodPref: "veg", Notes: "prefers quiet evenings",
			},
			"U-002": {
				ID: "U-002", City: "Karachi", Area: "Gulshan", BudgetPKR: 30000,
				SleepSchedule: "late", Cleanliness: "medium", NoiseTolerance: "medium",
				StudyHabits: "home", FoodPref: "non-veg", Notes: "",
			},
			"U-003": {
				ID: "U-003", City: "Islamabad", Area: "G-11", BudgetPKR: 35000,
				SleepSchedule: "early", Cleanliness: "high", NoiseTolerance: "high",
				StudyHabits: "group", FoodPref: "any", Notes: "has a part-time job",
			},
		},
		results: map[string]models.MatchingResults{
			"U-001": {
				Matches: []models.MatchResultItem{
					{
						RoommateID: "R-101", Score: 87,
						Short:    models.MatchShort{City: "Lahore", Area: "Johar Town", BudgetPKR: 24000, Cleanliness: "high", SleepSchedule: "early"},
						RedFlags: []string{},
					},
					{
						RoommateID: "R-205", Score: 74,
						Short:    models.MatchShort{City: "Lahore", Area: "Model Town", BudgetPKR: 27000, Cleanliness: "medium", SleepSchedule: "early"},
						RedFlags: []string{"budget gap above 10%"},
					},
					{
						RoommateID: "R-318", Score: 62,
						Short:    models.MatchShort{City: "Lahore", Area: "DHA", BudgetPKR: 32000, Cleanliness: "high", SleepSchedule: "late"},
						RedFlags: []string{"sleep schedule conflict", "budget gap above 25%"},
					},
				},
				CandidateCount: 125,
				UsedFallback:   false,
				Wingman: map[string]string{
					"R-101": "Lead with your shared study routine; you both keep early hours.",
					"R-205": "Agree on a cleaning schedule up front; expectations differ slightly.",
					"R-318": "Discuss quiet hours before committing; your sleep schedules clash.",
				},
			},
		},
	}
}

// SampleProfile returns the sample profile for key, falling back to the
// default sample when the key is unknown.
func (f *Fallbacks) SampleProfile(key string) models.ParsedProfile {
	if p, ok := f.samples[key]; ok {
		return p
	}
	if p, ok := f.samples[DefaultSampleKey]; ok {
		return p
	}
	// Any sample beats none; keys are iterated in sorted order so the pick
	// is deterministic.
	keys := make([]string, 0, len(f.samples))
	for k := range f.samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return f.samples[keys[0]]
	}
	return models.ParsedProfile{}
}

// ResultsFor returns a deep copy of the fallback result set for the given
// sample key, falling back to the default set for unknown keys. Every
// sample key maps to a predetermined set; copies keep callers from mutating
// the shared fixtures.
func (f *Fallbacks) ResultsFor(key string) *models.MatchingResults {
	base, ok := f.results[key]
	if !ok {
		base, ok = f.results[DefaultSampleKey]
	}
	if !ok {
		keys := make([]string, 0, len(f.results))
		for k := range f.results {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) == 0 {
			return models.NewMatchingResults()
		}
		base = f.results[keys[0]]
	}

	out := &models.MatchingResults{
		Matches:        make([]models.MatchResultItem, len(base.Matches)),
		CandidateCount: base.CandidateCount,
		UsedFallback:   base.UsedFallback,
		Wingman:        make(map[string]string, len(base.Wingman)),
	}
	for i, m := range base.Matches {
		copied := m
		copied.RedFlags = append([]string(nil), m.RedFlags...)
		out.Matches[i] = copied
	}
	for k, v := range base.Wingman {
		out.Wingman[k] = v
	}

	return out
}

// SampleKeys lists the available sample profile keys, sorted.
func (f *Fallbacks) SampleKeys() []string {
	keys := make([]string, 0, len(f.samples))
	for k := range f.samples {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
