package policies

import (
	"golang.org/x/exp/rand"

	"github.com/nexus-rl/envbridge/types"
)

// EpsilonGreedy is tabular Q-learning with epsilon exploration over the
// enumerable actions of the space.
type EpsilonGreedy struct {
	qTable  *QTable
	alpha   float64
	gamma   float64
	epsilon float64
	rand    *rand.Rand
}

var _ types.Policy = &EpsilonGreedy{}

func NewEpsilonGreedy(alpha, gamma, epsilon float64, seed int64) *EpsilonGreedy {
	return &EpsilonGreedy{
		qTable:  NewQTable(),
		alpha:   alpha,
		gamma:   gamma,
		epsilon: epsilon,
		rand:    rand.New(rand.NewSource(uint64(seed))),
	}
}

func (e *EpsilonGreedy) NextAction(_ int, state types.State, space types.Space) (types.Action, bool) {
	en, ok := space.(types.Enumerable)
	if !ok {
		return types.VecAction(space.Sample(e.rand)), true
	}
	actions := en.Enum()
	if len(actions) == 0 {
		return nil, false
	}

	if e.rand.Float64() < e.epsilon {
		return types.VecAction(actions[e.rand.Intn(len(actions))]), true
	}

	actionsByHash := make(map[string]types.VecAction, len(actions))
	hashes := make([]string, len(actions))
	for i, a := range actions {
		va := types.VecAction(a)
		hash := va.Hash()
		actionsByHash[hash] = va
		hashes[i] = hash
	}
	best, _ := e.qTable.MaxAmong(state.Hash(), hashes, 0)
	if best == "" {
		return nil, false
	}
	return actionsByHash[best], true
}

func (e *EpsilonGreedy) Update(_ int, state types.State, action types.Action, result *types.StepResult) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	target := result.Reward
	if !result.Terminated {
		target += e.gamma * e.qTable.Max(result.State.Hash(), 0)
	}
	curVal := e.qTable.Get(stateHash, actionHash, 0)
	e.qTable.Set(stateHash, actionHash, (1-e.alpha)*curVal+e.alpha*target)
}

func (e *EpsilonGreedy) UpdateEpisode(_ int, _ *types.Trace) {
}

func (e *EpsilonGreedy) Reset() {
	e.qTable.Reset()
}

// Record dumps the learned table next to the run results.
func (e *EpsilonGreedy) Record(path string) error {
	return e.qTable.Record(path)
}
