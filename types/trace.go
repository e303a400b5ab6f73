package types

import "encoding/json"

// Trace of an episode as triplets (state, action, result)
type Trace struct {
	states  []State
	actions []Action
	results []*StepResult
}

func NewTrace() *Trace {
	return &Trace{
		states:  make([]State, 0),
		actions: make([]Action, 0),
		results: make([]*StepResult, 0),
	}
}

func (t *Trace) Append(state State, action Action, result *StepResult) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.results = append(t.results, result)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, Action, *StepResult, bool) {
	if i < 0 || i >= len(t.states) {
		return nil, nil, nil, false
	}
	return t.states[i], t.actions[i], t.results[i], true
}

func (t *Trace) Last() (State, Action, *StepResult, bool) {
	if len(t.states) < 1 {
		return nil, nil, nil, false
	}
	lastIndex := len(t.states) - 1
	return t.states[lastIndex], t.actions[lastIndex], t.results[lastIndex], true
}

func (t *Trace) Prefix(i int) (*Trace, bool) {
	if i > len(t.states) {
		return nil, false
	}
	return &Trace{
		states:  t.states[0:i],
		actions: t.actions[0:i],
		results: t.results[0:i],
	}, true
}

func (t *Trace) Slice(from, to int) *Trace {
	slicedTrace := NewTrace()
	for i := from; i < to; i++ {
		slicedTrace.Append(t.states[i], t.actions[i], t.results[i])
	}
	return slicedTrace
}

// TotalReward accumulated over the trace
func (t *Trace) TotalReward() float64 {
	total := 0.0
	for _, r := range t.results {
		total += r.Reward
	}
	return total
}

type traceStep struct {
	State      string                 `json:"state"`
	Action     string                 `json:"action"`
	NextState  string                 `json:"next_state"`
	Reward     float64                `json:"reward"`
	Terminated bool                   `json:"terminated"`
	Truncated  bool                   `json:"truncated"`
	Info       map[string]interface{} `json:"info,omitempty"`
}

// Serialized as a list of hashed transitions, one line per episode when
// appended to a jsonl file.
func (t *Trace) MarshalJSON() ([]byte, error) {
	steps := make([]traceStep, len(t.states))
	for i := range t.states {
		steps[i] = traceStep{
			State:      t.states[i].Hash(),
			Action:     t.actions[i].Hash(),
			NextState:  t.results[i].State.Hash(),
			Reward:     t.results[i].Reward,
			Terminated: t.results[i].Terminated,
			Truncated:  t.results[i].Truncated,
			Info:       t.results[i].Info,
		}
	}
	return json.Marshal(steps)
}
