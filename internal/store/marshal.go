package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/registry"
)

// marshalMembers converts a member list to canonical JSON TEXT.
func marshalMembers(members []string) (string, error) {
	if members == nil {
		members = []string{}
	}
	data, err := ir.MarshalCanonical(members)
	if err != nil {
		return "", fmt.Errorf("marshal members: %w", err)
	}
	return string(data), nil
}

func unmarshalMembers(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var members []string
	if err := json.Unmarshal([]byte(data), &members); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	return members, nil
}

// MarshalConfig converts a registry config to canonical JSON. The output is
// stable for equal configs, so its hash identifies the configuration.
func MarshalConfig(cfg registry.Config[string]) ([]byte, error) {
	windows := make(map[string]any, len(cfg.Windows))
	for _, name := range slices.Sorted(maps.Keys(cfg.Windows)) {
		windows[name] = cfg.Windows[name]
	}
	lists := cfg.Lists
	if lists == nil {
		lists = []string{}
	}
	universe := cfg.Universe
	if universe == nil {
		universe = []string{}
	}

	data, err := ir.MarshalCanonical(map[string]any{
		"lists":          lists,
		"universe":       universe,
		"base_sn":        cfg.BaseSN,
		"default_window": cfg.DefaultWindow,
		"windows":        windows,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func unmarshalConfig(data string) (registry.Config[string], error) {
	var cfg registry.Config[string]
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Windows) == 0 {
		cfg.Windows = nil
	}
	return cfg, nil
}
