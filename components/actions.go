package components

import (
	"fmt"

	"github.com/nexus-rl/envbridge/types"
)

// NumControls is the width of a car control vector:
// throttle, steer, pitch, yaw, roll, jump, boost, handbrake.
const NumControls = 8

// number of analog controls at the front of the vector
const numAnalogControls = 5

// DiscreteAction bins the analog controls into Bins values spread over
// [-1, 1]; the three button controls stay binary.
type DiscreteAction struct {
	Bins int
}

var _ ActionParser = &DiscreteAction{}

func NewDiscreteAction(bins int) *DiscreteAction {
	if bins < 2 {
		bins = 3
	}
	return &DiscreteAction{Bins: bins}
}

func (d *DiscreteAction) Space() types.Space {
	dims := make([]int, NumControls)
	for i := 0; i < numAnalogControls; i++ {
		dims[i] = d.Bins
	}
	for i := numAnalogControls; i < NumControls; i++ {
		dims[i] = 2
	}
	return types.NewDiscrete(dims...)
}

func (d *DiscreteAction) ParseAction(action []float64) ([]float64, error) {
	if len(action) != NumControls {
		return nil, fmt.Errorf("discrete action: got %d values, want %d", len(action), NumControls)
	}
	controls := make([]float64, NumControls)
	for i, v := range action {
		bin := int(v)
		if float64(bin) != v {
			return nil, fmt.Errorf("discrete action: value %f at slot %d is not integral", v, i)
		}
		if i < numAnalogControls {
			if bin < 0 || bin >= d.Bins {
				return nil, fmt.Errorf("discrete action: bin %d at slot %d out of range", bin, i)
			}
			controls[i] = -1 + 2*float64(bin)/float64(d.Bins-1)
		} else {
			if bin != 0 && bin != 1 {
				return nil, fmt.Errorf("discrete action: button %d at slot %d must be 0 or 1", bin, i)
			}
			controls[i] = float64(bin)
		}
	}
	return controls, nil
}

// ContinuousAction clamps bounded controls straight through.
type ContinuousAction struct{}

var _ ActionParser = &ContinuousAction{}

func NewContinuousAction() *ContinuousAction {
	return &ContinuousAction{}
}

func (c *ContinuousAction) Space() types.Space {
	return types.NewBox(-1, 1, NumControls)
}

func (c *ContinuousAction) ParseAction(action []float64) ([]float64, error) {
	if len(action) != NumControls {
		return nil, fmt.Errorf("continuous action: got %d values, want %d", len(action), NumControls)
	}
	controls := make([]float64, NumControls)
	for i, v := range action {
		if v < -1 {
			v = -1
		} else if v > 1 {
			v = 1
		}
		controls[i] = v
	}
	return controls, nil
}
