package client

import (
	"context"
	"sync"
)

// Outcome is the result of a confirmed action.
type Outcome int

const (
	// Confirmed means the user approved and the action succeeded.
	Confirmed Outcome = iota
	// Cancelled means the user declined; the action never ran.
	Cancelled
	// Failed means the prompt errored or the action ran and failed.
	Failed
)

// String implements fmt.Stringer for test output.
func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Prompter asks the user to approve a destructive action.
type Prompter interface {
	Confirm(ctx context.Context, label string) (bool, error)
}

// Notifier receives the result of a confirmed action, success or failure,
// so the caller can surface it. Optional.
type Notifier interface {
	Notify(outcome Outcome, message string)
}

// Confirmer runs destructive actions behind a confirmation prompt.
// Prompts are serialized so the user never faces two dialogs at once;
// each invocation still gets its own answer.
type Confirmer struct {
	promptMu sync.Mutex
	prompter Prompter
	notifier Notifier
}

// NewConfirmer creates a Confirmer. Panics if p is nil.
func NewConfirmer(p Prompter, n Notifier) *Confirmer {
	if p == nil {
		panic("client.NewConfirmer: prompter must not be nil")
	}
	return &Confirmer{prompter: p, notifier: n}
}

// ConfirmAndRun prompts with label and, if approved, runs action. A
// declined prompt runs nothing and returns Cancelled with a nil error.
// Only the prompt is serialized; confirmed actions run concurrently.
func (c *Confirmer) ConfirmAndRun(ctx context.Context, label string, action func(ctx context.Context) error) (Outcome, error) {
	c.promptMu.Lock()
	ok, err := c.prompter.Confirm(ctx, label)
	c.promptMu.Unlock()

	if err != nil {
		return Failed, err
	}
	if !ok {
		return Cancelled, nil
	}

	if err := action(ctx); err != nil {
		if c.notifier != nil {
			c.notifier.Notify(Failed, label+": "+err.Error())
		}
		return Failed, err
	}
	if c.notifier != nil {
		c.notifier.Notify(Confirmed, label)
	}
	return Confirmed, nil
}
