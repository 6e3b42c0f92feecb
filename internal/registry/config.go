package registry

import (
	"cmp"
	"maps"
	"slices"
)

// Config describes a registry at construction time.
type Config[M cmp.Ordered] struct {
	// Lists are the list names in order. The first one is the baseline and
	// always equals Universe.
	Lists []string `json:"lists"`

	// Universe is the fixed set of valid members.
	Universe []M `json:"universe"`

	// BaseSN is the initial current sn.
	BaseSN int64 `json:"base_sn"`

	// DefaultWindow is the retention length applied to every list without
	// an override. Zero means unlimited retention.
	DefaultWindow int64 `json:"default_window,omitempty"`

	// Windows overrides DefaultWindow per list name.
	Windows map[string]int64 `json:"windows,omitempty"`
}

// Clone returns a deep copy so that no two registries share configuration.
func (c Config[M]) Clone() Config[M] {
	out := c
	out.Lists = slices.Clone(c.Lists)
	out.Universe = slices.Clone(c.Universe)
	out.Windows = maps.Clone(c.Windows)
	return out
}

// Validate checks the structural rules New relies on.
func (c Config[M]) Validate() error {
	if len(c.Lists) == 0 {
		return newConfigError("at least one list name is required")
	}

	seen := make(map[string]bool, len(c.Lists))
	for i, name := range c.Lists {
		if name == "" {
			return newConfigError("lists[%d]: name must not be empty", i)
		}
		if seen[name] {
			return newConfigError("lists[%d]: duplicate list name %q", i, name)
		}
		seen[name] = true
	}

	if c.DefaultWindow < 0 {
		return newConfigError("default window %d must be positive (or 0 for unlimited)", c.DefaultWindow)
	}

	for _, name := range slices.Sorted(maps.Keys(c.Windows)) {
		if !seen[name] {
			return newConfigError("window configured for unknown list %q", name)
		}
		if w := c.Windows[name]; w <= 0 {
			return newConfigError("window for list %q must be positive, got %d", name, w)
		}
	}

	return nil
}
