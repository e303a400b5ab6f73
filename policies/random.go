package policies

import (
	"golang.org/x/exp/rand"

	"github.com/nexus-rl/envbridge/types"
)

// Random samples the action space uniformly.
type Random struct {
	rand *rand.Rand
}

var _ types.Policy = &Random{}

func NewRandom(seed int64) *Random {
	return &Random{
		rand: rand.New(rand.NewSource(uint64(seed))),
	}
}

func (r *Random) NextAction(_ int, _ types.State, space types.Space) (types.Action, bool) {
	return types.VecAction(space.Sample(r.rand)), true
}

func (r *Random) Update(_ int, _ types.State, _ types.Action, _ *types.StepResult) {
}

func (r *Random) UpdateEpisode(_ int, _ *types.Trace) {
}

func (r *Random) Reset() {
}
