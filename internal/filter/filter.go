// Package filter provides the instance selection predicate for devstop.
package filter

import (
	"sort"

	"github.com/yairfalse/devstop/pkg/instance"
)

// Tag key and value selecting development instances.
const (
	EnvironmentTag = "Environment"
	DevEnvironment = "Dev"
)

// Filter selects instances by power state and exact tag values.
type Filter struct {
	states      map[instance.State]bool
	includeTags map[string]string
}

// New creates a Filter. An empty state list matches any state.
func New(states []instance.State, includeTags map[string]string) Filter {
	stateMap := make(map[instance.State]bool, len(states))
	for _, s := range states {
		stateMap[s] = true
	}

	tags := make(map[string]string, len(includeTags))
	for k, v := range includeTags {
		tags[k] = v
	}

	return Filter{states: stateMap, includeTags: tags}
}

// DevRunning returns the fixed predicate: running AND Environment=Dev.
func DevRunning() Filter {
	return New(
		[]instance.State{instance.StateRunning},
		map[string]string{EnvironmentTag: DevEnvironment},
	)
}

// Matches reports whether the instance passes the filter.
// Tag comparison is exact and case-sensitive.
func (f Filter) Matches(i instance.Instance) bool {
	if len(f.states) > 0 && !f.states[i.State] {
		return false
	}

	// ALL include tags must match
	for k, v := range f.includeTags {
		got, ok := i.Tag(k)
		if !ok || got != v {
			return false
		}
	}

	return true
}

// Apply returns the matching instances, preserving order.
func (f Filter) Apply(instances []instance.Instance) []instance.Instance {
	matched := make([]instance.Instance, 0, len(instances))
	for _, i := range instances {
		if f.Matches(i) {
			matched = append(matched, i)
		}
	}
	return matched
}

// States returns the accepted states in sorted order.
func (f Filter) States() []instance.State {
	states := make([]instance.State, 0, len(f.states))
	for s := range f.states {
		states = append(states, s)
	}
	sort.Slice(states, func(a, b int) bool { return states[a] < states[b] })
	return states
}

// TagKeys returns the required tag keys in sorted order.
func (f Filter) TagKeys() []string {
	keys := make([]string, 0, len(f.includeTags))
	for k := range f.includeTags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TagValue returns the required value for a tag key.
func (f Filter) TagValue(key string) string {
	return f.includeTags[key]
}
