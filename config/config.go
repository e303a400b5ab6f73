package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// MaxTeamSize bounds the per-team car count a session can hold.
const MaxTeamSize = 4

// ComponentSpec names a registered component and its parameters.
// In a config file a spec is either a bare string or a mapping with
// "name" and optional "params".
type ComponentSpec struct {
	Name   string                 `yaml:"name" json:"name"`
	Params map[string]interface{} `yaml:"params" json:"params,omitempty"`
}

func (c *ComponentSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&c.Name)
	}
	var raw struct {
		Name   string                 `yaml:"name"`
		Params map[string]interface{} `yaml:"params"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Params = raw.Params
	return nil
}

func (c *ComponentSpec) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Name)
	}
	var raw struct {
		Name   string                 `json:"name"`
		Params map[string]interface{} `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Params = raw.Params
	return nil
}

// IntList decodes a scalar or a list of ints. A scalar becomes a
// single-element list.
type IntList []int

func (l *IntList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var vals []int
		if err := node.Decode(&vals); err != nil {
			return err
		}
		*l = vals
		return nil
	}
	var v int
	if err := node.Decode(&v); err != nil {
		return err
	}
	*l = IntList{v}
	return nil
}

func (l *IntList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var vals []int
		if err := json.Unmarshal(data, &vals); err != nil {
			return err
		}
		*l = vals
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = IntList{v}
	return nil
}

// BoolList decodes a scalar or a list of bools.
type BoolList []bool

func (l *BoolList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var vals []bool
		if err := node.Decode(&vals); err != nil {
			return err
		}
		*l = vals
		return nil
	}
	var v bool
	if err := node.Decode(&v); err != nil {
		return err
	}
	*l = BoolList{v}
	return nil
}

func (l *BoolList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var vals []bool
		if err := json.Unmarshal(data, &vals); err != nil {
			return err
		}
		*l = vals
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = BoolList{v}
	return nil
}

// EnvConfig is the declarative description of a bridged environment.
// team_size and spawn_opponents accept lists, which enables dynamic
// game-mode selection at reset time.
type EnvConfig struct {
	TeamSize         IntList  `yaml:"team_size" json:"team_size"`
	SpawnOpponents   BoolList `yaml:"spawn_opponents" json:"spawn_opponents"`
	TickSkip         int      `yaml:"tick_skip" json:"tick_skip"`
	Gravity          float64  `yaml:"gravity" json:"gravity"`
	BoostConsumption float64  `yaml:"boost_consumption" json:"boost_consumption"`
	DodgeDeadzone    float64  `yaml:"dodge_deadzone" json:"dodge_deadzone"`
	CopyGameState    bool     `yaml:"copy_gamestate_every_step" json:"copy_gamestate_every_step"`

	RewardFunction     *ComponentSpec  `yaml:"reward_function" json:"reward_function,omitempty"`
	TerminalConditions []ComponentSpec `yaml:"terminal_conditions" json:"terminal_conditions,omitempty"`
	ObsBuilder         *ComponentSpec  `yaml:"obs_builder" json:"obs_builder,omitempty"`
	ActionParser       *ComponentSpec  `yaml:"action_parser" json:"action_parser,omitempty"`
	StateSetter        *ComponentSpec  `yaml:"state_setter" json:"state_setter,omitempty"`
}

// Defaults mirrors the environment defaults applied when a field is omitted.
func Defaults() *EnvConfig {
	return &EnvConfig{
		TeamSize:         IntList{1},
		SpawnOpponents:   BoolList{false},
		TickSkip:         8,
		Gravity:          1.0,
		BoostConsumption: 1.0,
		DodgeDeadzone:    0.8,
	}
}

// Normalize fills the fields a session cannot open without: empty mode
// lists and a zero tick_skip. Explicit zeros elsewhere are legal values
// (zero gravity, no boost drain, no deadzone) and stay untouched; parsed
// configs get their defaults from the pre-seeded struct instead.
func (c *EnvConfig) Normalize() {
	d := Defaults()
	if len(c.TeamSize) == 0 {
		c.TeamSize = d.TeamSize
	}
	if len(c.SpawnOpponents) == 0 {
		c.SpawnOpponents = d.SpawnOpponents
	}
	if c.TickSkip == 0 {
		c.TickSkip = d.TickSkip
	}
}

// Copy returns a copy the bridge can normalize and keep without touching
// the caller's value.
func (c *EnvConfig) Copy() *EnvConfig {
	out := *c
	out.TeamSize = append(IntList(nil), c.TeamSize...)
	out.SpawnOpponents = append(BoolList(nil), c.SpawnOpponents...)
	out.TerminalConditions = append([]ComponentSpec(nil), c.TerminalConditions...)
	if c.RewardFunction != nil {
		spec := *c.RewardFunction
		out.RewardFunction = &spec
	}
	if c.ObsBuilder != nil {
		spec := *c.ObsBuilder
		out.ObsBuilder = &spec
	}
	if c.ActionParser != nil {
		spec := *c.ActionParser
		out.ActionParser = &spec
	}
	if c.StateSetter != nil {
		spec := *c.StateSetter
		out.StateSetter = &spec
	}
	return &out
}

func (c *EnvConfig) Validate() error {
	if len(c.TeamSize) == 0 {
		return fmt.Errorf("team_size: at least one value required")
	}
	for _, ts := range c.TeamSize {
		if ts < 1 || ts > MaxTeamSize {
			return fmt.Errorf("team_size: %d out of range [1, %d]", ts, MaxTeamSize)
		}
	}
	if len(c.SpawnOpponents) == 0 {
		return fmt.Errorf("spawn_opponents: at least one value required")
	}
	if c.TickSkip < 1 {
		return fmt.Errorf("tick_skip: %d must be positive", c.TickSkip)
	}
	if c.Gravity < 0 {
		return fmt.Errorf("gravity: %f must not be negative", c.Gravity)
	}
	if c.BoostConsumption < 0 {
		return fmt.Errorf("boost_consumption: %f must not be negative", c.BoostConsumption)
	}
	if c.DodgeDeadzone < 0 || c.DodgeDeadzone > 1 {
		return fmt.Errorf("dodge_deadzone: %f out of range [0, 1]", c.DodgeDeadzone)
	}
	return nil
}

// Mode is a single (spawn opponents, team size) game mode.
type Mode struct {
	SpawnOpponents bool
	TeamSize       int
}

// Agents playing a step of this mode
func (m Mode) Agents() int {
	if m.SpawnOpponents {
		return m.TeamSize * 2
	}
	return m.TeamSize
}

func (m Mode) String() string {
	orange := 0
	if m.SpawnOpponents {
		orange = m.TeamSize
	}
	return fmt.Sprintf("%dv%d", m.TeamSize, orange)
}

// Modes lists every configured (spawn, size) combination.
func (c *EnvConfig) Modes() []Mode {
	modes := make([]Mode, 0, len(c.SpawnOpponents)*len(c.TeamSize))
	for _, so := range c.SpawnOpponents {
		for _, ts := range c.TeamSize {
			modes = append(modes, Mode{SpawnOpponents: so, TeamSize: ts})
		}
	}
	return modes
}

// MaxMode is the mode holding the most cars. Sessions open sized for it so
// every smaller mode fits without reopening.
func (c *EnvConfig) MaxMode() Mode {
	spawn := false
	for _, so := range c.SpawnOpponents {
		if so {
			spawn = true
		}
	}
	size := 0
	for _, ts := range c.TeamSize {
		if ts > size {
			size = ts
		}
	}
	return Mode{SpawnOpponents: spawn, TeamSize: size}
}

// Dynamic reports whether the config lists more than one game mode.
func (c *EnvConfig) Dynamic() bool {
	return len(c.TeamSize) > 1 || len(c.SpawnOpponents) > 1
}

var knownKeys = map[string]bool{
	"team_size":                 true,
	"spawn_opponents":           true,
	"tick_skip":                 true,
	"gravity":                   true,
	"boost_consumption":         true,
	"dodge_deadzone":            true,
	"copy_gamestate_every_step": true,
	"reward_function":           true,
	"terminal_conditions":       true,
	"obs_builder":               true,
	"action_parser":             true,
	"state_setter":              true,
}

// ParseYAML decodes a config, applying defaults for omitted fields.
// Unknown top-level keys are skipped with a warning, never an error.
func ParseYAML(data []byte, logger *zap.Logger) (*EnvConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var keys map[string]interface{}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	warnUnknownKeys(keys, logger)

	// the pre-seeded defaults survive for omitted fields only, so an
	// explicit zero in the file stays a zero
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ParseJSON is the json counterpart of ParseYAML.
func ParseJSON(data []byte, logger *zap.Logger) (*EnvConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var keys map[string]interface{}
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	warnUnknownKeys(keys, logger)

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func warnUnknownKeys(keys map[string]interface{}, logger *zap.Logger) {
	for k := range keys {
		if !knownKeys[k] {
			logger.Warn("skipping unknown config key", zap.String("key", k))
		}
	}
}

// Load reads a config file, picking the decoder from the extension.
func Load(path string, logger *zap.Logger) (*EnvConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data, logger)
	}
	return ParseYAML(data, logger)
}
