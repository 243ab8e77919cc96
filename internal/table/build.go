package table

import (
	"fmt"
	"strings"

	"github.com/roach88/transom/internal/codec"
	"github.com/roach88/transom/internal/model"
)

// Row is one raw transition-map row as supplied by the specification loader.
//
// Rows are matched against generation-order slots in declaration order: the
// first row matching a slot covers it. A row naming the NA sentinel for a
// pre-condition covers every state of that dimension, sentinel included, and
// records NotApplicable for it in the built entry. A row naming a concrete
// state covers exactly that state.
type Row struct {
	// Pre names one state per pre-condition, declaration order. The value
	// is either a declared state name or model.NAName.
	Pre []string

	// Post names the expected state per post-condition, declaration order.
	// May be empty for skip rows.
	Post []string

	// Skip marks the covered combinations as excluded from the plan.
	Skip bool
}

type compiledRow struct {
	// match holds one state index per pre-condition, -1 for NA wildcards.
	match   []int
	entry   Entry
	covered int
}

// Build expands raw rows into a validated transition table.
//
// Identical entries produced by different rows are collapsed to one stored
// entry; the order map then maps several generation-order slots to the same
// storage index. When nothing collapses the order map is the identity.
//
// Build fails with a configuration error when a slot is covered by no row
// (completeness), when a row is fully shadowed by earlier rows, or when a row
// references undeclared states. It never silently proceeds on a gap.
func Build(m *model.Model, rows []Row) (*Table, error) {
	compiled := make([]*compiledRow, len(rows))
	for r, row := range rows {
		cr, err := compileRow(m, r, row)
		if err != nil {
			return nil, err
		}
		compiled[r] = cr
	}

	c, err := codec.New(m.PreSpans())
	if err != nil {
		return nil, &model.ConfigurationError{
			Code:    model.ErrCodeBadCondition,
			Item:    m.Name,
			Entry:   -1,
			Message: err.Error(),
		}
	}

	var entries []Entry
	storageOf := make(map[string]int)
	orderMap := make([]int, c.Size())
	for g := 0; g < c.Size(); g++ {
		vector, err := c.Decode(g)
		if err != nil {
			return nil, err
		}
		cr := firstMatch(compiled, vector)
		if cr == nil {
			return nil, &model.ConfigurationError{
				Code:    model.ErrCodeIncomplete,
				Item:    m.Name,
				Entry:   -1,
				Message: fmt.Sprintf("no row covers combination %s", formatVector(m, vector)),
			}
		}
		cr.covered++
		key := fingerprint(cr.entry)
		storage, ok := storageOf[key]
		if !ok {
			storage = len(entries)
			entries = append(entries, cr.entry)
			storageOf[key] = storage
		}
		orderMap[g] = storage
	}

	for r, cr := range compiled {
		if cr.covered == 0 {
			return nil, &model.ConfigurationError{
				Code:    model.ErrCodeDeadRow,
				Item:    m.Name,
				Entry:   r,
				Message: "row is fully shadowed by earlier rows",
			}
		}
	}

	return New(m, entries, orderMap)
}

func compileRow(m *model.Model, index int, row Row) (*compiledRow, error) {
	if len(row.Pre) != len(m.Pre) {
		return nil, &model.ConfigurationError{
			Code:    model.ErrCodeSizeMismatch,
			Item:    m.Name,
			Entry:   index,
			Message: fmt.Sprintf("row names %d pre-condition states for %d pre-conditions", len(row.Pre), len(m.Pre)),
		}
	}
	cr := &compiledRow{
		match: make([]int, len(m.Pre)),
		entry: Entry{
			Applicability: make([]Applicability, len(m.Pre)),
			Expected:      make([]int, len(m.Post)),
			Skip:          row.Skip,
		},
	}
	for i, name := range row.Pre {
		if name == model.NAName {
			if m.Pre[i].NAExempt {
				return nil, &model.ConfigurationError{
					Code:      model.ErrCodeNAExempt,
					Item:      m.Name,
					Entry:     index,
					Condition: m.Pre[i].Name,
					Message:   "NA named for an NA-exempt condition",
				}
			}
			cr.match[i] = -1
			cr.entry.Applicability[i] = NotApplicable
			continue
		}
		state, ok := m.Pre[i].StateIndex(name)
		if !ok {
			return nil, &model.ConfigurationError{
				Code:      model.ErrCodeBadState,
				Item:      m.Name,
				Entry:     index,
				Condition: m.Pre[i].Name,
				Message:   fmt.Sprintf("undeclared state %q", name),
			}
		}
		cr.match[i] = state
	}
	if row.Skip && len(row.Post) == 0 {
		return cr, nil
	}
	if len(row.Post) != len(m.Post) {
		return nil, &model.ConfigurationError{
			Code:    model.ErrCodeSizeMismatch,
			Item:    m.Name,
			Entry:   index,
			Message: fmt.Sprintf("row names %d post-condition states for %d post-conditions", len(row.Post), len(m.Post)),
		}
	}
	for j, name := range row.Post {
		state, ok := m.Post[j].StateIndex(name)
		if !ok {
			return nil, &model.ConfigurationError{
				Code:      model.ErrCodeBadState,
				Item:      m.Name,
				Entry:     index,
				Condition: m.Post[j].Name,
				Message:   fmt.Sprintf("undeclared state %q", name),
			}
		}
		cr.entry.Expected[j] = state
	}
	return cr, nil
}

func firstMatch(rows []*compiledRow, vector []int) *compiledRow {
	for _, cr := range rows {
		if matches(cr.match, vector) {
			return cr
		}
	}
	return nil
}

func matches(match, vector []int) bool {
	for i, want := range match {
		if want >= 0 && want != vector[i] {
			return false
		}
	}
	return true
}

func fingerprint(e Entry) string {
	return fmt.Sprintf("%v|%v|%t", e.Applicability, e.Expected, e.Skip)
}

func formatVector(m *model.Model, vector []int) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = m.Pre[i].Name + "=" + m.Pre[i].StateName(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
