package types

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
)

// Space describes the set of valid action or observation vectors.
type Space interface {
	// Shape of a flat vector in the space
	Shape() []int
	// Contains reports whether the vector lies in the space
	Contains([]float64) bool
	// Sample draws a uniform element of the space
	Sample(*rand.Rand) []float64
}

// Enumerable spaces can list every element they contain.
// Tabular policies fall back to sampling when a space is not enumerable.
type Enumerable interface {
	Enum() [][]float64
}

// Width is the total number of scalars in an element of the space.
func Width(s Space) int {
	w := 1
	for _, d := range s.Shape() {
		w *= d
	}
	return w
}

// Discrete is a multi-discrete space. Dims[i] is the number of choices
// for slot i and elements are vectors of integral values.
type Discrete struct {
	Dims []int
}

var _ Space = &Discrete{}
var _ Enumerable = &Discrete{}

func NewDiscrete(dims ...int) *Discrete {
	return &Discrete{Dims: dims}
}

func (d *Discrete) Shape() []int {
	return []int{len(d.Dims)}
}

func (d *Discrete) Contains(v []float64) bool {
	if len(v) != len(d.Dims) {
		return false
	}
	for i, x := range v {
		n := int(x)
		if float64(n) != x || n < 0 || n >= d.Dims[i] {
			return false
		}
	}
	return true
}

func (d *Discrete) Sample(rng *rand.Rand) []float64 {
	out := make([]float64, len(d.Dims))
	for i, n := range d.Dims {
		out[i] = float64(rng.Intn(n))
	}
	return out
}

// Enum lists the cartesian product of all the slots.
func (d *Discrete) Enum() [][]float64 {
	total := 1
	for _, n := range d.Dims {
		total *= n
	}
	out := make([][]float64, 0, total)
	cur := make([]float64, len(d.Dims))
	var visit func(slot int)
	visit = func(slot int) {
		if slot == len(d.Dims) {
			elem := make([]float64, len(cur))
			copy(elem, cur)
			out = append(out, elem)
			return
		}
		for i := 0; i < d.Dims[slot]; i++ {
			cur[slot] = float64(i)
			visit(slot + 1)
		}
	}
	visit(0)
	return out
}

// Box is a bounded continuous space with the same bounds on every dimension.
type Box struct {
	Low  float64
	High float64
	Dim  int
}

var _ Space = &Box{}

func NewBox(low, high float64, dim int) *Box {
	return &Box{Low: low, High: high, Dim: dim}
}

func (b *Box) Shape() []int {
	return []int{b.Dim}
}

func (b *Box) Contains(v []float64) bool {
	if len(v) != b.Dim {
		return false
	}
	for _, x := range v {
		if math.IsNaN(x) || x < b.Low || x > b.High {
			return false
		}
	}
	return true
}

func (b *Box) Sample(rng *rand.Rand) []float64 {
	out := make([]float64, b.Dim)
	for i := range out {
		out[i] = b.Low + rng.Float64()*(b.High-b.Low)
	}
	return out
}

// VecAction is a flat control vector used as the canonical action type.
type VecAction []float64

var _ Action = VecAction{}

func (a VecAction) Hash() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(parts, ",")
}
