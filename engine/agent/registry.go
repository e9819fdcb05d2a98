package agent

import (
	"fmt"
	"sort"
)

// DefaultPolicy names the policy used when none is configured.
const DefaultPolicy = "slot1"

var policies = map[string]Policy{
	DefaultPolicy: SlotOneClue{},
}

// Lookup returns the policy registered under name.
func Lookup(name string) (Policy, error) {
	if name == "" {
		name = DefaultPolicy
	}
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (have %v)", name, Names())
	}
	return p, nil
}

// Names lists the registered policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(policies))
	for n := range policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
