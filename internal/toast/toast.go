package toast

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/pipegauge/internal/model"
)

// ErrNotVisible is returned by ViewDetails once the toast is dismissed.
var ErrNotVisible = errors.New("toast not visible")

// Navigator is the router collaborator that resolves a lead id to a detail view.
type Navigator interface {
	Navigate(leadID string) error
}

// Event is one user input travelling from the innermost element outwards.
type Event struct {
	stopped bool
}

// StopPropagation keeps the event from reaching containing elements.
func (e *Event) StopPropagation() {
	if e != nil {
		e.stopped = true
	}
}

func (e *Event) Stopped() bool { return e != nil && e.stopped }

// Toast is a single notification that starts visible and, once dismissed,
// stays dismissed. It has no expiry. Not safe for concurrent use.
type Toast struct {
	visible bool
	leadID  string
	company string
}

func New(leadID, company string) *Toast {
	return &Toast{visible: true, leadID: leadID, company: company}
}

// State returns a copy suitable for rendering.
func (t *Toast) State() model.Toast {
	if !t.visible {
		return model.Toast{}
	}
	return model.Toast{Visible: true, LeadID: t.leadID, Company: t.company}
}

// Dismiss hides the toast and reports whether anything changed.
func (t *Toast) Dismiss(ev *Event) bool {
	ev.StopPropagation()
	if !t.visible {
		return false
	}
	t.visible = false
	return true
}

// ViewDetails asks nav to open the lead behind the toast. It consumes ev and
// leaves the toast state as it was, whether or not navigation succeeds.
func (t *Toast) ViewDetails(ev *Event, nav Navigator) error {
	ev.StopPropagation()
	if !t.visible {
		return ErrNotVisible
	}
	if err := nav.Navigate(t.leadID); err != nil {
		return fmt.Errorf("navigate to lead %q: %w", t.leadID, err)
	}
	return nil
}
