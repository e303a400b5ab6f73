package rollout

import (
	"fmt"
	"sort"

	"github.com/nexus-rl/envbridge/types"
)

// Generic dataset holding the digest of a run
type DataSet interface{}

// Analyzer digests episode traces into a DataSet.
type Analyzer interface {
	// episode number, run name, trace
	Analyze(int, string, *types.Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// CoverageAnalyzer counts the cumulative unique state hashes after every
// episode.
type CoverageAnalyzer struct {
	uniqueStates map[string]bool
	perEpisode   []int
}

var _ Analyzer = &CoverageAnalyzer{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{
		uniqueStates: make(map[string]bool),
		perEpisode:   make([]int, 0),
	}
}

func (c *CoverageAnalyzer) Analyze(_ int, _ string, trace *types.Trace) {
	for i := 0; i < trace.Len(); i++ {
		s, _, result, _ := trace.Get(i)
		c.uniqueStates[s.Hash()] = true
		c.uniqueStates[result.State.Hash()] = true
	}
	c.perEpisode = append(c.perEpisode, len(c.uniqueStates))
}

func (c *CoverageAnalyzer) DataSet() DataSet {
	out := make([]int, len(c.perEpisode))
	copy(out, c.perEpisode)
	return out
}

func (c *CoverageAnalyzer) Reset() {
	c.uniqueStates = make(map[string]bool)
	c.perEpisode = make([]int, 0)
}

// EpisodeLengthAnalyzer records the length of every episode.
type EpisodeLengthAnalyzer struct {
	lengths []int
}

var _ Analyzer = &EpisodeLengthAnalyzer{}

func NewEpisodeLengthAnalyzer() *EpisodeLengthAnalyzer {
	return &EpisodeLengthAnalyzer{lengths: make([]int, 0)}
}

func (e *EpisodeLengthAnalyzer) Analyze(_ int, _ string, trace *types.Trace) {
	e.lengths = append(e.lengths, trace.Len())
}

func (e *EpisodeLengthAnalyzer) DataSet() DataSet {
	out := make([]int, len(e.lengths))
	copy(out, e.lengths)
	return out
}

func (e *EpisodeLengthAnalyzer) Reset() {
	e.lengths = make([]int, 0)
}

// ModeBalanceAnalyzer tallies the agent-steps spent in every game mode,
// read from the step infos. The dynamic mode selection should keep the
// tallies close to each other over a long run.
type ModeBalanceAnalyzer struct {
	agentSteps map[string]int
}

var _ Analyzer = &ModeBalanceAnalyzer{}

func NewModeBalanceAnalyzer() *ModeBalanceAnalyzer {
	return &ModeBalanceAnalyzer{agentSteps: make(map[string]int)}
}

func (m *ModeBalanceAnalyzer) Analyze(_ int, _ string, trace *types.Trace) {
	for i := 0; i < trace.Len(); i++ {
		_, _, result, _ := trace.Get(i)
		mode, ok := result.Info["mode"].(string)
		if !ok {
			continue
		}
		agents, ok := result.Info["agents"].(int)
		if !ok {
			continue
		}
		m.agentSteps[mode] += agents
	}
}

func (m *ModeBalanceAnalyzer) DataSet() DataSet {
	out := make(map[string]int, len(m.agentSteps))
	for mode, steps := range m.agentSteps {
		out[mode] = steps
	}
	return out
}

func (m *ModeBalanceAnalyzer) Reset() {
	m.agentSteps = make(map[string]int)
}

// String representation of the mode tallies, sorted by mode name
func (m *ModeBalanceAnalyzer) String() string {
	modes := make([]string, 0, len(m.agentSteps))
	for mode := range m.agentSteps {
		modes = append(modes, mode)
	}
	sort.Strings(modes)
	result := ""
	for _, mode := range modes {
		result = fmt.Sprintf("%s%s: %d agent-steps\n", result, mode, m.agentSteps[mode])
	}
	return result
}
