package factory

import (
	"fmt"

	"github.com/nexus-rl/envbridge/config"
)

// param helpers tolerate the loose number types yaml and json decoders
// produce inside map[string]interface{}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func floatsParam(params map[string]interface{}, key string) []float64 {
	v, ok := params[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, e := range raw {
		switch n := e.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		case int64:
			out = append(out, float64(n))
		default:
			return nil
		}
	}
	return out
}

// specFromValue converts a nested spec value (a bare name or a mapping)
// into a ComponentSpec, for components that build child components.
func specFromValue(v interface{}) (config.ComponentSpec, error) {
	switch spec := v.(type) {
	case string:
		return config.ComponentSpec{Name: spec}, nil
	case map[string]interface{}:
		name, _ := spec["name"].(string)
		if name == "" {
			return config.ComponentSpec{}, fmt.Errorf("nested component spec without a name")
		}
		params, _ := spec["params"].(map[string]interface{})
		return config.ComponentSpec{Name: name, Params: params}, nil
	case config.ComponentSpec:
		return spec, nil
	}
	return config.ComponentSpec{}, fmt.Errorf("nested component spec must be a string or a mapping, got %T", v)
}
