// Package synth implements the combinatorial test synthesizer: an
// odometer-style enumerator over the Cartesian product of pre-condition
// states that dispatches prepare/action/check callbacks per surviving
// combination.
//
// ARCHITECTURE:
//
// Single-threaded, synchronous, cooperative. Each step fully completes its
// prepare/action/check sequence before the iteration advances. Combinations
// are exercised in exactly the declared nesting order, outermost condition
// first; callbacks may rely on that order, so reordering is a behavior
// change, not an optimization.
//
// Two vectors drive a step. The iteration vector enumerates every concrete
// state (and the NA sentinel slot) of every dimension. The effective vector
// is the iteration vector with NA-substituted components: where the fetched
// entry marks a dimension not applicable, the effective component is forced
// to the NA sentinel for dispatch and reporting while the iteration vector
// continues through the concrete states. Exhaustiveness and reporting are
// thereby decoupled: every distinct combination is visited, NA-insensitive
// variants coalesce to one labeled case.
//
// Skip-ahead pruning: a dispatched state marked skip-eligible force-sets all
// more deeply nested dimensions to their maximal value before the standard
// increment, so the following odometer carry advances the triggering
// dimension by one unit in O(1) amortized work instead of enumerating the
// pruned inner sub-product.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/transom/internal/codec"
	"github.com/roach88/transom/internal/model"
	"github.com/roach88/transom/internal/table"
)

// Handler receives the per-combination callbacks, in order: Prepare once per
// pre-condition (outermost first), Action once, Check once per
// post-condition (declaration order).
//
// A non-nil error from any callback stops the run immediately and propagates
// verbatim to the caller; the synthesizer imposes no continue-on-failure
// policy of its own. Handlers that want partial-failure tolerance absorb the
// failure themselves and return nil.
type Handler interface {
	// Prepare establishes the state of one pre-condition dimension.
	// The state index may be the dimension's NA sentinel.
	Prepare(pre int, state int) error

	// Action performs the action under test.
	Action() error

	// Check verifies one post-condition against its expected state.
	Check(post int, expected int) error
}

// Synthesizer walks the combination space of one test item.
//
// A synthesizer owns no persistent state across runs beyond per-run
// iteration counters, which reset at the start of each run. Exactly one run
// may be active at a time.
type Synthesizer struct {
	model *model.Model
	table *table.Table
	codec *codec.Codec
	spans []int

	vector    []int
	effective []int
	cursor    int
	jumped    bool
	active    bool
	inStep    bool
	steps     int

	plan int // lazily computed, -1 until known
}

// New builds a synthesizer for a validated model and transition table.
// The table's generation-order size must match the model.
func New(m *model.Model, t *table.Table) (*Synthesizer, error) {
	c, err := codec.New(m.PreSpans())
	if err != nil {
		return nil, err
	}
	if t.GenerationSize() != c.Size() {
		return nil, &model.ConfigurationError{
			Code:    model.ErrCodeSizeMismatch,
			Item:    m.Name,
			Entry:   -1,
			Message: fmt.Sprintf("table covers %d slots, model generates %d", t.GenerationSize(), c.Size()),
		}
	}
	return &Synthesizer{
		model:     m,
		table:     t,
		codec:     c,
		spans:     c.Spans(),
		vector:    make([]int, len(m.Pre)),
		effective: make([]int, len(m.Pre)),
		plan:      -1,
	}, nil
}

// ErrRunActive is returned when Run is entered while another run of the same
// synthesizer has not finished.
var ErrRunActive = errors.New("synthesis run already in progress")

// PlanSize returns the total count of callback-bearing combinations: steps
// whose entry is not a skip entry, after skip-ahead pruning. Computed by a
// dry pass on first use so the total is available before any action fires.
func (s *Synthesizer) PlanSize() int {
	if s.plan < 0 {
		n := 0
		// The dry pass cannot fail on a validated table and a nil handler.
		_ = s.walk(context.Background(), nil, &n)
		s.plan = n
	}
	return s.plan
}

// Steps returns the number of combinations dispatched so far in the current
// or most recent run.
func (s *Synthesizer) Steps() int {
	return s.steps
}

// Scope returns the printable vector of the effective states of the
// combination currently being dispatched, for progress reporting and
// failure localization. Outside a dispatch it returns the empty string.
func (s *Synthesizer) Scope() string {
	if !s.inStep {
		return ""
	}
	var b strings.Builder
	for i, v := range s.effective {
		b.WriteByte('/')
		b.WriteString(s.model.Pre[i].StateName(v))
	}
	return b.String()
}

// Run enumerates the combination space and dispatches the handler for every
// surviving combination. The context is checked between steps; a canceled
// context stops the run with the context's error.
func (s *Synthesizer) Run(ctx context.Context, h Handler) error {
	if s.active {
		return ErrRunActive
	}
	s.active = true
	defer func() { s.active = false }()
	if s.plan < 0 {
		// Populate the plan before the first action fires, per the runner
		// contract: totals must be queryable up front.
		s.PlanSize()
	}
	return s.walk(ctx, h, nil)
}

// walk is the single enumeration loop shared by Run and the PlanSize dry
// pass. With a nil handler it only counts surviving combinations into n.
func (s *Synthesizer) walk(ctx context.Context, h Handler, n *int) error {
	s.reset()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := s.fetch()
		if !entry.Skip {
			s.substitute(entry)
			if h != nil {
				s.steps++
				s.inStep = true
				err := s.dispatch(h, entry)
				s.inStep = false
				if err != nil {
					return err
				}
			}
			if n != nil {
				*n++
			}
			s.skipAhead()
		}
		if !s.increment() {
			return nil
		}
	}
}

func (s *Synthesizer) reset() {
	for i := range s.vector {
		s.vector[i] = 0
	}
	s.cursor = 0
	s.jumped = false
	s.inStep = false
	s.steps = 0
}

// fetch resolves the current iteration vector to its transition entry.
//
// The generation-order index equals the monotone cursor as long as the
// odometer has not jumped; after a skip-ahead the index is recomputed from
// the vector via the mixed-radix encoding.
func (s *Synthesizer) fetch() table.Entry {
	gen := s.cursor
	if s.jumped {
		var err error
		gen, err = s.codec.Encode(s.vector)
		if err != nil {
			// The odometer can only produce in-range vectors.
			panic(err)
		}
		s.jumped = false
	}
	s.cursor = gen + 1
	return s.table.Lookup(gen)
}

// substitute computes the effective vector: iteration components, with
// not-applicable dimensions forced to their NA sentinel.
func (s *Synthesizer) substitute(entry table.Entry) {
	for i, v := range s.vector {
		if entry.Applicability[i] == table.NotApplicable {
			s.effective[i] = s.model.Pre[i].NAIndex()
		} else {
			s.effective[i] = v
		}
	}
}

func (s *Synthesizer) dispatch(h Handler, entry table.Entry) error {
	for i, v := range s.effective {
		if err := h.Prepare(i, v); err != nil {
			return err
		}
	}
	if err := h.Action(); err != nil {
		return err
	}
	for j, v := range entry.Expected {
		if err := h.Check(j, v); err != nil {
			return err
		}
	}
	return nil
}

// skipAhead applies the pruning rule after a dispatched combination: when the
// effective state of some dimension is marked skip-eligible, every more
// deeply nested dimension is forced to its maximal value so that the next
// increment carries into the triggering dimension. With several eligible
// dimensions in one step the outermost wins, pruning the largest sub-product.
func (s *Synthesizer) skipAhead() {
	for i, v := range s.effective {
		if v >= s.model.Pre[i].Cardinality() {
			continue // the NA sentinel carries no annotation
		}
		if !s.model.Pre[i].States[v].SkipInner {
			continue
		}
		if i == len(s.spans)-1 {
			return // innermost dimension, nothing nested to prune
		}
		for j := i + 1; j < len(s.spans); j++ {
			s.vector[j] = s.spans[j] - 1
		}
		s.jumped = true
		return
	}
}

// increment advances the odometer by one unit: the innermost dimension
// increments; on overflow it resets to zero and carries outward. Returns
// false when the outermost dimension overflows, terminating the run.
func (s *Synthesizer) increment() bool {
	for i := len(s.vector) - 1; i >= 0; i-- {
		s.vector[i]++
		if s.vector[i] < s.spans[i] {
			return true
		}
		s.vector[i] = 0
	}
	return false
}
