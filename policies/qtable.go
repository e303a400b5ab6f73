package policies

import (
	"encoding/json"

	"github.com/nexus-rl/envbridge/util"
)

// QTable is a two-level table of state/action values.
type QTable struct {
	vals map[string]map[string]float64
}

func NewQTable() *QTable {
	return &QTable{
		vals: make(map[string]map[string]float64),
	}
}

func (q *QTable) Get(state, action string, def float64) float64 {
	if actions, ok := q.vals[state]; ok {
		if v, ok := actions[action]; ok {
			return v
		}
	}
	return def
}

func (q *QTable) Set(state, action string, value float64) {
	if _, ok := q.vals[state]; !ok {
		q.vals[state] = make(map[string]float64)
	}
	q.vals[state][action] = value
}

// Max returns the best known value of the state, def when unseen.
func (q *QTable) Max(state string, def float64) float64 {
	actions, ok := q.vals[state]
	if !ok || len(actions) == 0 {
		return def
	}
	first := true
	best := def
	for _, v := range actions {
		if first || v > best {
			best = v
			first = false
		}
	}
	return best
}

// MaxAmong returns the best action of the given candidates, scoring
// unseen actions with def.
func (q *QTable) MaxAmong(state string, actions []string, def float64) (string, float64) {
	if len(actions) == 0 {
		return "", def
	}
	best := actions[0]
	bestVal := q.Get(state, actions[0], def)
	for _, a := range actions[1:] {
		if v := q.Get(state, a, def); v > bestVal {
			best = a
			bestVal = v
		}
	}
	return best, bestVal
}

func (q *QTable) Reset() {
	q.vals = make(map[string]map[string]float64)
}

// Record dumps the table to a json file.
func (q *QTable) Record(path string) error {
	bs, err := json.Marshal(q.vals)
	if err != nil {
		return err
	}
	return util.WriteToFile(path, string(bs))
}
