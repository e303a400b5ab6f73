package policies

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/nexus-rl/envbridge/types"
)

// Softmax samples among the enumerable actions with probability
// proportional to the exponentiated Q-values, and learns with a standard
// one-step Q update. On a non-enumerable space it degrades to uniform
// sampling.
type Softmax struct {
	qTable *QTable
	alpha  float64
	gamma  float64
	rand   *rand.Rand
}

var _ types.Policy = &Softmax{}

func NewSoftmax(alpha, gamma float64, seed int64) *Softmax {
	return &Softmax{
		qTable: NewQTable(),
		alpha:  alpha,
		gamma:  gamma,
		rand:   rand.New(rand.NewSource(uint64(seed))),
	}
}

func (s *Softmax) NextAction(_ int, state types.State, space types.Space) (types.Action, bool) {
	en, ok := space.(types.Enumerable)
	if !ok {
		return types.VecAction(space.Sample(s.rand)), true
	}
	actions := en.Enum()
	if len(actions) == 0 {
		return nil, false
	}

	stateHash := state.Hash()
	sum := 0.0
	vals := make([]float64, len(actions))
	for i, a := range actions {
		exp := math.Exp(s.qTable.Get(stateHash, types.VecAction(a).Hash(), 0))
		vals[i] = exp
		sum += exp
	}
	weights := make([]float64, len(actions))
	for i, v := range vals {
		weights[i] = v / sum
	}

	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return nil, false
	}
	return types.VecAction(actions[i]), true
}

func (s *Softmax) Update(_ int, state types.State, action types.Action, result *types.StepResult) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	target := result.Reward
	if !result.Terminated {
		target += s.gamma * s.qTable.Max(result.State.Hash(), 0)
	}
	curVal := s.qTable.Get(stateHash, actionHash, 0)
	s.qTable.Set(stateHash, actionHash, (1-s.alpha)*curVal+s.alpha*target)
}

func (s *Softmax) UpdateEpisode(_ int, _ *types.Trace) {
}

func (s *Softmax) Reset() {
	s.qTable.Reset()
}
