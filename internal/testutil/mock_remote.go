// mock_remote.go - Mock remote pipeline collaborators for testing
package testutil

import (
	"context"
	"sync"

	"github.com/room-matcher/backend/internal/models"
	"github.com/room-matcher/backend/internal/pipeline"
)

// MockParser stands in for the pipeline client's parse side. The function
// field defaults to returning a minimal parsed profile.
type MockParser struct {
	mu    sync.Mutex
	calls int

	RunPipelineFn func(ctx context.Context, sub pipeline.Submission) (*models.ParsedProfile, error)
}

// NewMockParser creates a parser mock returning a fixed profile.
func NewMockParser() *MockParser {
	return &MockParser{}
}

func (m *MockParser) RunPipeline(ctx context.Context, sub pipeline.Submission) (*models.ParsedProfile, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.RunPipelineFn != nil {
		return m.RunPipelineFn(ctx, sub)
	}
	return &models.ParsedProfile{ID: "U-TEST", City: "Lahore"}, nil
}

// Calls returns how many parse submissions were made.
func (m *MockParser) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockScorer stands in for the pipeline client's scoring and advice side.
type MockScorer struct {
	MatchProfileFn  func(ctx context.Context, profile *models.ParsedProfile) (*models.MatchingResults, error)
	WingmanAdviceFn func(ctx context.Context, matches []models.MatchResultItem, profiles []models.ParsedProfile) (map[string]string, error)
}

func (m *MockScorer) MatchProfile(ctx context.Context, profile *models.ParsedProfile) (*models.MatchingResults, error) {
	if m.MatchProfileFn != nil {
		return m.MatchProfileFn(ctx, profile)
	}
	results := models.NewMatchingResults()
	results.Matches = []models.MatchResultItem{
		{RoommateID: "R-001", Score: 90, Short: models.MatchShort{City: "Lahore", Cleanliness: "high"}, RedFlags: []string{}},
	}
	results.CandidateCount = 10
	return results, nil
}

func (m *MockScorer) WingmanAdvice(ctx context.Context, matches []models.MatchResultItem, profiles []models.ParsedProfile) (map[string]string, error) {
	if m.WingmanAdviceFn != nil {
		return m.WingmanAdviceFn(ctx, matches, profiles)
	}
	advice := make(map[string]string, len(matches))
	for _, match := range matches {
		advice[match.RoommateID] = "Lead with shared study hours."
	}
	return advice, nil
}
