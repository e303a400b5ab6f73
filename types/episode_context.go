package types

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EpisodeContext carries the control and bookkeeping of a single episode.
// The runner creates one per episode and reads the outcome fields back
// after the episode returns.
type EpisodeContext struct {
	Episode   int
	EpisodeID string
	// Seed reseeds the environment RNG when non-nil
	Seed *int64

	TimeoutContext context.Context
	Cancel         context.CancelFunc

	Report *EpisodeReport
	Trace  *Trace

	// outcome, filled in while the episode runs
	Timesteps   int
	TimedOut    bool
	HorizonEnd  bool
	Err         error
	RunDuration time.Duration
}

// NewEpisodeContext creates a context for the given episode number.
// A zero timeout means the episode is never cancelled.
func NewEpisodeContext(episode int, timeout time.Duration) *EpisodeContext {
	ctx := context.Background()
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	return &EpisodeContext{
		Episode:        episode,
		EpisodeID:      uuid.NewString(),
		TimeoutContext: ctx,
		Cancel:         cancel,
		Report:         NewEpisodeReport(episode),
		Trace:          NewTrace(),
	}
}

func (e *EpisodeContext) SetError(err error) {
	e.Err = err
}

// StepContext scopes a single step within an episode.
func (e *EpisodeContext) StepContext(step int) *StepContext {
	return &StepContext{Step: step, Episode: e}
}

type StepContext struct {
	Step    int
	Episode *EpisodeContext
}

// EpisodeReport collects named counters, durations and logs of an episode.
type EpisodeReport struct {
	Episode int

	lock       sync.Mutex
	startTime  time.Time
	IntValues  map[string][]int
	TimeValues map[string][]time.Duration
	Logs       map[string]string
}

func NewEpisodeReport(episode int) *EpisodeReport {
	return &EpisodeReport{
		Episode:    episode,
		startTime:  time.Now(),
		IntValues:  make(map[string][]int),
		TimeValues: make(map[string][]time.Duration),
		Logs:       make(map[string]string),
	}
}

func (r *EpisodeReport) AddInt(key string, value int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.IntValues[key] = append(r.IntValues[key], value)
}

func (r *EpisodeReport) AddTime(key string, value time.Duration) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.TimeValues[key] = append(r.TimeValues[key], value)
}

func (r *EpisodeReport) AddLog(key, value string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Logs[key] = value
}

// String representation of the report entries per key
func (r *EpisodeReport) String() string {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := fmt.Sprintf("episode %d\n", r.Episode)
	for key, values := range r.IntValues {
		result = fmt.Sprintf("%s%s [%d]: %v\n", result, key, len(values), values)
	}
	for key, values := range r.TimeValues {
		result = fmt.Sprintf("%s%s [%d]: %v\n", result, key, len(values), values)
	}
	for key, value := range r.Logs {
		result = fmt.Sprintf("%s%s: %s\n", result, key, value)
	}
	return result
}
