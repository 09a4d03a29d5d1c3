package domain

import "strings"

// Well-known condition keys.
const (
	ImportCondition  = "import"
	RequireCondition = "require"
	NodeCondition    = "node"
	BunCondition     = "bun"
	DenoCondition    = "deno"
	WorkerdCondition = "workerd"
)

// ConditionSet is an immutable set of active condition keys.
// Only membership matters for matching; insertion order is kept for display.
type ConditionSet struct {
	keys  []string
	index map[string]struct{}
}

// NewConditionSet returns a set holding keys, dropping duplicates and empty keys.
func NewConditionSet(keys ...string) ConditionSet {
	s := ConditionSet{
		keys:  make([]string, 0, len(keys)),
		index: make(map[string]struct{}, len(keys)),
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := s.index[k]; ok {
			continue
		}
		s.index[k] = struct{}{}
		s.keys = append(s.keys, k)
	}
	return s
}

// Has reports whether key is active.
func (s ConditionSet) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Keys returns the active keys in insertion order.
func (s ConditionSet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of active keys.
func (s ConditionSet) Len() int {
	return len(s.keys)
}

// With returns a new set extended with keys.
func (s ConditionSet) With(keys ...string) ConditionSet {
	all := make([]string, 0, len(s.keys)+len(keys))
	all = append(all, s.keys...)
	all = append(all, keys...)
	return NewConditionSet(all...)
}

// String renders the set as a comma separated list.
func (s ConditionSet) String() string {
	return strings.Join(s.keys, ",")
}
