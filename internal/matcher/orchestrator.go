// Package matcher drives the fixed four-stage matching run against a parsed
// profile: Profile Reader, Match Scorer, Red Flag, Wingman.
package matcher

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/room-matcher/backend/internal/models"
)

// StageLabels is the fixed ordered stage sequence.
var StageLabels = []string{"Profile Reader", "Match Scorer", "Red Flag", "Wingman"}

const (
	stageMatchScorer = 1
	stageWingman     = 3
)

// Scorer is the slice of the pipeline client the orchestrator needs.
type Scorer interface {
	MatchProfile(ctx context.Context, profile *models.ParsedProfile) (*models.MatchingResults, error)
	WingmanAdvice(ctx context.Context, matches []models.MatchResultItem, profiles []models.ParsedProfile) (map[string]string, error)
}

// Options are constructor-injected orchestrator settings.
type Options struct {
	// ForceFallback substitutes the local fallback result set even when the
	// scoring endpoint succeeds. QA toggle.
	ForceFallback bool
	// WingmanLive wires the Wingman stage to the real advice endpoint
	// instead of simulating it.
	WingmanLive bool
	// StageDelay overrides the simulated per-stage delay. Nil means the
	// default 800-1200ms; tests inject a zero delay.
	StageDelay func() time.Duration
}

// Orchestrator owns the running state and the current run. Only one run may
// be active at a time; stages execute strictly in sequence and the run
// always reaches a terminal done state, scoring failures and panics
// included.
type Orchestrator struct {
	scorer    Scorer
	fallbacks *Fallbacks
	opts      Options
	delay     func() time.Duration

	mu      sync.Mutex
	running bool
	run     *models.MatchRun
}

// New creates an orchestrator.
func New(scorer Scorer, fallbacks *Fallbacks, opts Options) *Orchestrator {
	delay := opts.StageDelay
	if delay == nil {
		delay = func() time.Duration {
			return time.Duration(800+rand.Intn(400)) * time.Millisecond
		}
	}
	return &Orchestrator{
		scorer:    scorer,
		fallbacks: fallbacks,
		opts:      opts,
		delay:     delay,
	}
}

// TryStart begins a new run for the given profile. It returns the run and
// true when the run was started, or the in-flight run and false when one is
// already active (the request is dropped, not queued). sampleKey selects
// which fallback result set substitutes a failed scoring call.
func (o *Orchestrator) TryStart(profile *models.ParsedProfile, sampleKey string) (*models.MatchRun, bool) {
	if profile == nil {
		return nil, false
	}

	o.mu.Lock()
	if o.running {
		run := snapshotRun(o.run)
		o.mu.Unlock()
		return run, false
	}

	run := models.NewMatchRun(uuid.New().String(), StageLabels)
	run.Status = models.RunStatusRunning
	o.running = true
	o.run = run
	snap := snapshotRun(run)
	o.mu.Unlock()

	go o.execute(run, profile, sampleKey)

	return snap, true
}

// Run returns a snapshot of the current (or most recent) run, or nil when no
// run has been started yet.
func (o *Orchestrator) Run() *models.MatchRun {
	o.mu.Lock()
	defer o.mu.Unlock()
	return snapshotRun(o.run)
}

// Running reports whether a run is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// execute walks the stage sequence. Every exit path, panic included, marks
// the run complete and releases the running flag so the presentation layer
// is never left waiting.
func (o *Orchestrator) execute(run *models.MatchRun, profile *models.ParsedProfile, sampleKey string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Run %s] PANIC recovered: %v\n", shortID(run.ID), r)
			o.setRunError(run, fmt.Sprintf("run panicked: %v", r))
		}
		o.finish(run)
	}()

	fmt.Printf("[Run %s] Starting matching run for profile %s\n", shortID(run.ID), profile.ID)

	for i := range StageLabels {
		o.setStage(run, i, models.StageRunning)
		time.Sleep(o.delay())

		switch i {
		case stageMatchScorer:
			o.runMatchScorer(run, profile, sampleKey)
		case stageWingman:
			o.runWingman(run, profile)
		}

		o.setStage(run, i, models.StageDone)
	}
}

// runMatchScorer issues the one scoring call. Any failure substitutes the
// predetermined local fallback set; the failure is logged, never fatal.
func (o *Orchestrator) runMatchScorer(run *models.MatchRun, profile *models.ParsedProfile, sampleKey string) {
	var results *models.MatchingResults

	if o.opts.ForceFallback {
		results = o.fallbacks.ResultsFor(sampleKey)
		results.UsedFallback = true
	} else {
		scored, err := o.scorer.MatchProfile(context.Background(), profile)
		if err != nil {
			fmt.Printf("[Run %s] Scoring failed, using local fallback: %v\n", shortID(run.ID), err)
			results = o.fallbacks.ResultsFor(sampleKey)
			results.UsedFallback = true
		} else {
			results = scored
		}
	}

	o.mu.Lock()
	run.Results = results
	o.mu.Unlock()
}

// runWingman merges advice into the results when wired to the live
// endpoint; otherwise the stage is purely simulated. Advice failures never
// abort the run.
func (o *Orchestrator) runWingman(run *models.MatchRun, profile *models.ParsedProfile) {
	if !o.opts.WingmanLive {
		return
	}

	o.mu.Lock()
	results := run.Results
	var matches []models.MatchResultItem
	if results != nil {
		matches = append(matches, results.Matches...)
	}
	o.mu.Unlock()

	if results == nil {
		return
	}

	advice, err := o.scorer.WingmanAdvice(context.Background(), matches, []models.ParsedProfile{*profile})
	if err != nil {
		fmt.Printf("[Run %s] Wingman advice failed: %v\n", shortID(run.ID), err)
		return
	}

	o.mu.Lock()
	for id, text := range advice {
		results.Wingman[id] = text
	}
	o.mu.Unlock()
}

// setStage updates one stage's status. Stages before the running one are
// done, the running one is unique, everything after stays idle.
func (o *Orchestrator) setStage(run *models.MatchRun, index int, status models.StageStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	run.Stages[index].Status = status
}

func (o *Orchestrator) setRunError(run *models.MatchRun, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	run.Error = msg
}

func (o *Orchestrator) finish(run *models.MatchRun) {
	o.mu.Lock()
	defer o.mu.Unlock()
	run.Status = models.RunStatusComplete
	o.running = false
	fmt.Printf("[Run %s] Run complete\n", shortID(run.ID))
}

// snapshotRun deep-copies the mutable parts of a run so handler reads never
// race the executing goroutine. Callers must hold o.mu.
func snapshotRun(run *models.MatchRun) *models.MatchRun {
	if run == nil {
		return nil
	}

	out := &models.MatchRun{
		ID:     run.ID,
		Status: run.Status,
		Error:  run.Error,
		Stages: make([]models.StageState, len(run.Stages)),
	}
	copy(out.Stages, run.Stages)

	if run.Results != nil {
		results := &models.MatchingResults{
			Matches:        make([]models.MatchResultItem, len(run.Results.Matches)),
			CandidateCount: run.Results.CandidateCount,
			UsedFallback:   run.Results.UsedFallback,
			Wingman:        make(map[string]string, len(run.Results.Wingman)),
		}
		copy(results.Matches, run.Results.Matches)
		for k, v := range run.Results.Wingman {
			results.Wingman[k] = v
		}
		out.Results = results
	}

	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
