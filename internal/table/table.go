// Package table holds the validated transition table of a test item: one
// precomputed entry per covered combination of pre-condition states (or per
// NA-collapsed group), plus the order map from generation-order indices to
// storage-order indices.
//
// Tables are constructed once per item, validated eagerly, and immutable
// afterwards. All validation failures are model.ConfigurationError values
// identifying the offending condition or entry; they abort synthesis for the
// item and never surface mid-run.
package table

import (
	"fmt"

	"github.com/roach88/transom/internal/model"
)

// Applicability states whether a pre-condition dimension affects the outcome
// recorded by an entry.
type Applicability uint8

const (
	// Applicable means the dimension's concrete state is part of the case.
	Applicable Applicability = iota

	// NotApplicable means the dimension does not affect the entry's outcome;
	// the synthesizer reports the NA sentinel for it while still iterating
	// the concrete states.
	NotApplicable
)

// Entry is the precomputed outcome for one combination or NA-collapsed group.
type Entry struct {
	// Applicability has one element per pre-condition, declaration order.
	Applicability []Applicability

	// Expected has one post-condition state index per post-condition,
	// declaration order. Unused (zero) for skip entries.
	Expected []int

	// Skip excludes the covered combinations from the plan entirely: no
	// callback fires for them and they do not count toward the plan size.
	Skip bool
}

// Table is a validated transition table.
type Table struct {
	entries  []Entry
	orderMap []int
	identity bool
}

// New validates entries and order map against the model and returns the
// table.
//
// INVARIANTS (all violations are configuration errors):
//   - len(orderMap) == product of pre-condition spans (generation-order size)
//   - every order-map value is a valid index into entries
//   - every entry is referenced by at least one order-map slot (no orphans)
//   - per entry: applicability and expected lengths match the model, expected
//     state indices are declared, and NotApplicable never targets an
//     NA-exempt condition
func New(m *model.Model, entries []Entry, orderMap []int) (*Table, error) {
	if want := m.GenerationSize(); len(orderMap) != want {
		return nil, &model.ConfigurationError{
			Code:    model.ErrCodeSizeMismatch,
			Item:    m.Name,
			Entry:   -1,
			Message: fmt.Sprintf("order map has %d slots, generation-order size is %d", len(orderMap), want),
		}
	}
	referenced := make([]bool, len(entries))
	for g, s := range orderMap {
		if s < 0 || s >= len(entries) {
			return nil, &model.ConfigurationError{
				Code:    model.ErrCodeSizeMismatch,
				Item:    m.Name,
				Entry:   -1,
				Message: fmt.Sprintf("order map slot %d references entry %d of %d", g, s, len(entries)),
			}
		}
		referenced[s] = true
	}
	for s, ok := range referenced {
		if !ok {
			return nil, &model.ConfigurationError{
				Code:    model.ErrCodeOrphanEntry,
				Item:    m.Name,
				Entry:   s,
				Message: "entry unreachable from every generation-order index",
			}
		}
	}
	for s, e := range entries {
		if err := validateEntry(m, s, e); err != nil {
			return nil, err
		}
	}
	t := &Table{
		entries:  append([]Entry(nil), entries...),
		orderMap: append([]int(nil), orderMap...),
		identity: true,
	}
	for g, s := range t.orderMap {
		if g != s {
			t.identity = false
			break
		}
	}
	return t, nil
}

func validateEntry(m *model.Model, index int, e Entry) error {
	if len(e.Applicability) != len(m.Pre) {
		return &model.ConfigurationError{
			Code:    model.ErrCodeSizeMismatch,
			Item:    m.Name,
			Entry:   index,
			Message: fmt.Sprintf("entry has %d applicability flags for %d pre-conditions", len(e.Applicability), len(m.Pre)),
		}
	}
	if len(e.Expected) != len(m.Post) {
		return &model.ConfigurationError{
			Code:    model.ErrCodeSizeMismatch,
			Item:    m.Name,
			Entry:   index,
			Message: fmt.Sprintf("entry has %d expected states for %d post-conditions", len(e.Expected), len(m.Post)),
		}
	}
	for i, a := range e.Applicability {
		if a == NotApplicable && m.Pre[i].NAExempt {
			return &model.ConfigurationError{
				Code:      model.ErrCodeNAExempt,
				Item:      m.Name,
				Entry:     index,
				Condition: m.Pre[i].Name,
				Message:   "NA applicability claimed for an NA-exempt condition",
			}
		}
	}
	if e.Skip {
		return nil
	}
	for j, v := range e.Expected {
		if v < 0 || v >= m.Post[j].Cardinality() {
			return &model.ConfigurationError{
				Code:      model.ErrCodeBadState,
				Item:      m.Name,
				Entry:     index,
				Condition: m.Post[j].Name,
				Message:   fmt.Sprintf("expected state index %d outside [0, %d)", v, m.Post[j].Cardinality()),
			}
		}
	}
	return nil
}

// Len returns the number of stored entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// GenerationSize returns the number of order-map slots.
func (t *Table) GenerationSize() int {
	return len(t.orderMap)
}

// Identity reports whether the order map is the identity, i.e. storage order
// equals generation order and no NA-collapsing was applied. The synthesizer
// uses this to keep a monotone storage cursor instead of re-encoding.
func (t *Table) Identity() bool {
	return t.identity
}

// StorageIndex maps a generation-order index to its storage index.
// The index must be in [0, GenerationSize); validated tables make the lookup
// panic-free for every index the odometer can produce.
func (t *Table) StorageIndex(gen int) int {
	return t.orderMap[gen]
}

// Lookup returns the entry covering a generation-order index.
func (t *Table) Lookup(gen int) Entry {
	return t.entries[t.orderMap[gen]]
}

// EntryAt returns the entry at a storage index.
func (t *Table) EntryAt(storage int) Entry {
	return t.entries[storage]
}
