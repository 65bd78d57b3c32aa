package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ErrVerificationInFlight means a transition for the same email is already
// outstanding. The duplicate submission is dropped without touching the
// registry.
var ErrVerificationInFlight = errors.New("verification already in flight for this doctor")

// ActionError reports a failed approve/reject attempt. The record keeps its
// previous status and the attempt may be retried.
type ActionError struct {
	Email  string
	Action Action
	Cause  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("failed to %s doctor %s: %v", e.Action, e.Email, e.Cause)
}

func (e *ActionError) Unwrap() error { return e.Cause }

// RefreshError reports a failed queue refresh. The queue keeps its
// last-known-good contents.
type RefreshError struct {
	Cause error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh verification queue: %v", e.Cause)
}

func (e *RefreshError) Unwrap() error { return e.Cause }

// Controller drives doctor registrations through pending → approved or
// pending → rejected against the registry, and keeps an in-memory snapshot
// of the registry listing for the admin views.
//
// At most one transition per email may be outstanding at a time; the guard
// is set synchronously before the registry call is issued and, on success,
// held until the follow-up listing fetch returns, so a duplicate
// submission can never produce a second call. Transitions for different
// emails interleave freely. After a successful transition the controller
// re-fetches the whole listing instead of patching the record locally: the
// registry alone decides the verification date and any server-side side
// effects, and a full fetch also picks up changes made by other admins.
type Controller struct {
	registry Registry

	mu         sync.Mutex
	queue      []Doctor
	inFlight   map[string]struct{}
	actionErrs map[string]*ActionError
	refreshErr *RefreshError
}

func NewController(registry Registry) *Controller {
	return &Controller{
		registry:   registry,
		inFlight:   make(map[string]struct{}),
		actionErrs: make(map[string]*ActionError),
	}
}

func (c *Controller) SubmitApprove(ctx context.Context, email string) error {
	return c.submit(ctx, email, ActionApprove)
}

func (c *Controller) SubmitReject(ctx context.Context, email string) error {
	return c.submit(ctx, email, ActionReject)
}

func (c *Controller) submit(ctx context.Context, email string, action Action) error {
	if err := c.acquire(email, action); err != nil {
		return err
	}

	var err error
	switch action {
	case ActionApprove:
		err = c.registry.Approve(ctx, email)
	case ActionReject:
		err = c.registry.Reject(ctx, email)
	}

	if err != nil {
		actionErr := &ActionError{Email: email, Action: action, Cause: err}
		c.mu.Lock()
		delete(c.inFlight, email)
		c.actionErrs[email] = actionErr
		c.mu.Unlock()
		return actionErr
	}

	// Hold the guard through the refresh: until the new listing lands the
	// snapshot still shows the record as pending, and releasing early would
	// let a duplicate submission reach the registry in that window.
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, email)
		c.mu.Unlock()
	}()

	// The transition itself succeeded; a refresh failure is reported
	// separately and leaves the previous snapshot in place.
	return c.Refresh(ctx)
}

// acquire checks-and-sets the per-email guard. It also drops submissions
// for records the current snapshot already shows as finalised; the UI
// disables those controls, but the controller does not trust it to.
func (c *Controller) acquire(email string, action Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inFlight[email]; busy {
		return ErrVerificationInFlight
	}

	for _, d := range c.queue {
		if d.Email == email && d.Status != StatusPending {
			return ErrNotPending
		}
	}

	c.inFlight[email] = struct{}{}
	delete(c.actionErrs, email)
	return nil
}

// Refresh replaces the queue wholesale with the registry listing. On
// failure the queue is left untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	doctors, err := c.registry.List(ctx)
	if err != nil {
		refreshErr := &RefreshError{Cause: err}
		c.mu.Lock()
		c.refreshErr = refreshErr
		c.mu.Unlock()
		return refreshErr
	}

	c.mu.Lock()
	c.queue = doctors
	c.refreshErr = nil
	c.mu.Unlock()
	return nil
}

// Queue returns a copy of the current snapshot.
func (c *Controller) Queue() []Doctor {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Doctor, len(c.queue))
	copy(out, c.queue)
	return out
}

// InFlight reports whether a transition for email is outstanding.
func (c *Controller) InFlight(email string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, busy := c.inFlight[email]
	return busy
}

// ActionErr returns the error from the last failed transition attempt for
// email, or nil.
func (c *Controller) ActionErr(email string) *ActionError {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.actionErrs[email]
}

// RefreshErr returns the error from the last failed refresh, or nil if the
// last refresh succeeded.
func (c *Controller) RefreshErr() *RefreshError {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.refreshErr
}

// Filter derives a view over the snapshot without copying it into a new
// source of truth: an empty status matches every status, and a non-empty
// query must case-insensitively match the name, specialization or license
// number. Filtering never calls the registry.
func (c *Controller) Filter(status Status, query string) []Doctor {
	c.mu.Lock()
	defer c.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))

	var out []Doctor
	for _, d := range c.queue {
		if status != "" && d.Status != status {
			continue
		}
		if query != "" && !matchesQuery(d, query) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesQuery(d Doctor, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(d.FullName), lowerQuery) ||
		strings.Contains(strings.ToLower(d.Specialization), lowerQuery) ||
		strings.Contains(strings.ToLower(d.LicenseNumber), lowerQuery)
}

// Stats summarises the snapshot for the admin dashboard cards.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Total: len(c.queue)}
	for _, d := range c.queue {
		switch d.Status {
		case StatusPending:
			s.Pending++
		case StatusApproved:
			s.Approved++
		case StatusRejected:
			s.Rejected++
		}
	}
	return s
}
