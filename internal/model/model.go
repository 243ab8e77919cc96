package model

import "fmt"

// NAName is the printable name of the implicit not-applicable sentinel state.
//
// Every pre-condition gains one NA state after its declared states unless it
// is marked NA-exempt. Post-conditions never carry the sentinel.
const NAName = "NA"

// State is one named value of a condition.
//
// SkipInner marks the state as skip-eligible: once the iteration reaches this
// state, all more deeply nested pre-condition dimensions are irrelevant and
// the synthesizer may prune their sub-product (skip-ahead, package synth).
// Only concrete pre-condition states may carry the mark.
type State struct {
	Name      string
	SkipInner bool
}

// Condition is an ordered set of named states forming one dimension of the
// combination space.
//
// For pre-conditions, NAExempt suppresses the implicit NA sentinel: the
// condition then iterates over its declared states only, and a table entry
// claiming NA applicability for it is a configuration error.
type Condition struct {
	Name     string
	States   []State
	NAExempt bool
}

// Cardinality returns the count of declared states.
func (c Condition) Cardinality() int {
	return len(c.States)
}

// Span returns the cardinality including the NA sentinel.
// For NA-exempt (and post-) conditions this equals Cardinality.
func (c Condition) Span() int {
	if c.NAExempt {
		return len(c.States)
	}
	return len(c.States) + 1
}

// NAIndex returns the state index of the NA sentinel.
// The sentinel is always ordered after the declared states.
// Returns -1 for NA-exempt conditions.
func (c Condition) NAIndex() int {
	if c.NAExempt {
		return -1
	}
	return len(c.States)
}

// StateName returns the printable name for a state index, including the
// sentinel. Indices outside [0, Span) yield a placeholder rather than a
// panic so that diagnostics can always be rendered.
func (c Condition) StateName(index int) string {
	if index >= 0 && index < len(c.States) {
		return c.States[index].Name
	}
	if index == c.NAIndex() {
		return NAName
	}
	return fmt.Sprintf("?%d", index)
}

// StateIndex resolves a state name to its index. The sentinel name resolves
// to NAIndex unless the condition is NA-exempt.
func (c Condition) StateIndex(name string) (int, bool) {
	for i, s := range c.States {
		if s.Name == name {
			return i, true
		}
	}
	if name == NAName && !c.NAExempt {
		return c.NAIndex(), true
	}
	return 0, false
}

// Model is the ordered catalog of pre-conditions and post-conditions for one
// test item. Constructed once per item, validated eagerly, then immutable
// for the lifetime of a synthesis run.
type Model struct {
	Name string
	Pre  []Condition
	Post []Condition
}

// New validates and returns a condition model.
//
// INVARIANTS (checked here, configuration errors):
//   - every condition declares at least one state
//   - condition names are unique within pre- and within post-conditions
//   - state names are unique within a condition and never the sentinel name
//   - SkipInner appears only on pre-condition states
//   - NAExempt appears only on pre-conditions
func New(name string, pre, post []Condition) (*Model, error) {
	if err := validateConditions("pre-condition", pre); err != nil {
		return nil, err
	}
	if err := validateConditions("post-condition", post); err != nil {
		return nil, err
	}
	for _, c := range post {
		if c.NAExempt {
			return nil, &ConfigurationError{
				Code:      ErrCodeBadCondition,
				Entry:     -1,
				Condition: c.Name,
				Message:   "NA-exempt is meaningful for pre-conditions only",
			}
		}
		for _, s := range c.States {
			if s.SkipInner {
				return nil, &ConfigurationError{
					Code:      ErrCodeBadCondition,
					Entry:     -1,
					Condition: c.Name,
					Message:   fmt.Sprintf("state %q: skip annotation on a post-condition state", s.Name),
				}
			}
		}
	}
	return &Model{Name: name, Pre: pre, Post: post}, nil
}

func validateConditions(kind string, conditions []Condition) error {
	seen := make(map[string]bool, len(conditions))
	for _, c := range conditions {
		if c.Name == "" {
			return &ConfigurationError{
				Code:    ErrCodeBadCondition,
				Entry:   -1,
				Message: kind + " with empty name",
			}
		}
		if seen[c.Name] {
			return &ConfigurationError{
				Code:      ErrCodeBadCondition,
				Entry:     -1,
				Condition: c.Name,
				Message:   "duplicate " + kind + " name",
			}
		}
		seen[c.Name] = true
		if len(c.States) == 0 {
			return &ConfigurationError{
				Code:      ErrCodeBadCondition,
				Entry:     -1,
				Condition: c.Name,
				Message:   kind + " declares no states",
			}
		}
		states := make(map[string]bool, len(c.States))
		for _, s := range c.States {
			if s.Name == "" || s.Name == NAName {
				return &ConfigurationError{
					Code:      ErrCodeBadCondition,
					Entry:     -1,
					Condition: c.Name,
					Message:   fmt.Sprintf("state name %q is reserved or empty", s.Name),
				}
			}
			if states[s.Name] {
				return &ConfigurationError{
					Code:      ErrCodeBadCondition,
					Entry:     -1,
					Condition: c.Name,
					Message:   fmt.Sprintf("duplicate state name %q", s.Name),
				}
			}
			states[s.Name] = true
		}
	}
	return nil
}

// PreSpans returns the cardinality-including-NA of every pre-condition,
// outermost first. This is the radix vector of the generation-order space.
func (m *Model) PreSpans() []int {
	spans := make([]int, len(m.Pre))
	for i, c := range m.Pre {
		spans[i] = c.Span()
	}
	return spans
}

// GenerationSize returns the size of the generation-order space, the product
// of all pre-condition spans.
func (m *Model) GenerationSize() int {
	size := 1
	for _, c := range m.Pre {
		size *= c.Span()
	}
	return size
}
