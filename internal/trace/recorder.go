package trace

import (
	"context"
	"fmt"

	"github.com/roach88/transom/internal/model"
	"github.com/roach88/transom/internal/synth"
)

// EventKind discriminates recorded callback events.
type EventKind string

const (
	// KindPrepare is one pre-condition preparation.
	KindPrepare EventKind = "prepare"

	// KindAction is the action under test.
	KindAction EventKind = "action"

	// KindCheck is one post-condition check.
	KindCheck EventKind = "check"
)

// Event is one recorded callback dispatch.
type Event struct {
	RunToken  string
	Seq       int64
	Kind      EventKind
	Dimension int    // condition index; -1 for action events
	State     string // printable state name; expected state for checks
	Scope     string // effective-state vector of the enclosing combination
}

// Recorder is a synth.Handler that appends every dispatched callback to the
// store and then forwards to an optional delegate handler. A failing
// delegate stops the run through the normal callback-error path; the event
// is recorded before the delegate runs so the log always names the step that
// failed.
type Recorder struct {
	store    *Store
	model    *model.Model
	token    string
	clock    *Clock
	ctx      context.Context
	scope    func() string
	delegate synth.Handler
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithDelegate forwards every callback to h after recording it.
func WithDelegate(h synth.Handler) RecorderOption {
	return func(r *Recorder) {
		r.delegate = h
	}
}

// WithScope records the given scope string (typically Synthesizer.Scope)
// alongside every event.
func WithScope(scope func() string) RecorderOption {
	return func(r *Recorder) {
		r.scope = scope
	}
}

// NewRecorder creates a recorder for one run. The context bounds the store
// writes for the whole run.
func NewRecorder(ctx context.Context, store *Store, m *model.Model, token string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store: store,
		model: m,
		token: token,
		clock: NewClock(),
		ctx:   ctx,
		scope: func() string { return "" },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare implements synth.Handler.
func (r *Recorder) Prepare(pre int, state int) error {
	e := Event{
		RunToken:  r.token,
		Seq:       r.clock.Next(),
		Kind:      KindPrepare,
		Dimension: pre,
		State:     r.model.Pre[pre].StateName(state),
		Scope:     r.scope(),
	}
	if err := r.store.WriteEvent(r.ctx, e); err != nil {
		return fmt.Errorf("record prepare: %w", err)
	}
	if r.delegate != nil {
		return r.delegate.Prepare(pre, state)
	}
	return nil
}

// Action implements synth.Handler.
func (r *Recorder) Action() error {
	e := Event{
		RunToken:  r.token,
		Seq:       r.clock.Next(),
		Kind:      KindAction,
		Dimension: -1,
		State:     "",
		Scope:     r.scope(),
	}
	if err := r.store.WriteEvent(r.ctx, e); err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	if r.delegate != nil {
		return r.delegate.Action()
	}
	return nil
}

// Check implements synth.Handler.
func (r *Recorder) Check(post int, expected int) error {
	e := Event{
		RunToken:  r.token,
		Seq:       r.clock.Next(),
		Kind:      KindCheck,
		Dimension: post,
		State:     r.model.Post[post].StateName(expected),
		Scope:     r.scope(),
	}
	if err := r.store.WriteEvent(r.ctx, e); err != nil {
		return fmt.Errorf("record check: %w", err)
	}
	if r.delegate != nil {
		return r.delegate.Check(post, expected)
	}
	return nil
}
