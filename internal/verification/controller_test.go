package verification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRegistry implements a test double for Registry
type mockRegistry struct {
	mu      sync.Mutex
	doctors []Doctor

	approveCalls int32
	rejectCalls  int32
	listCalls    int32

	approveErr error
	rejectErr  error
	listErr    error

	// approveGate, when set, blocks Approve until released. Used to keep a
	// transition in flight while the test exercises the guard. listGate does
	// the same for List, to hold a submission in its refresh phase.
	approveGate chan struct{}
	listGate    chan struct{}
}

func (m *mockRegistry) List(ctx context.Context) ([]Doctor, error) {
	atomic.AddInt32(&m.listCalls, 1)
	if m.listGate != nil {
		<-m.listGate
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Doctor, len(m.doctors))
	copy(out, m.doctors)
	return out, nil
}

func (m *mockRegistry) Approve(ctx context.Context, email string) error {
	atomic.AddInt32(&m.approveCalls, 1)
	if m.approveGate != nil {
		<-m.approveGate
	}
	if m.approveErr != nil {
		return m.approveErr
	}
	m.setStatus(email, StatusApproved)
	return nil
}

func (m *mockRegistry) Reject(ctx context.Context, email string) error {
	atomic.AddInt32(&m.rejectCalls, 1)
	if m.rejectErr != nil {
		return m.rejectErr
	}
	m.setStatus(email, StatusRejected)
	return nil
}

func (m *mockRegistry) setStatus(email string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.doctors {
		if m.doctors[i].Email == email {
			m.doctors[i].Status = status
			if status == StatusApproved {
				now := time.Now()
				m.doctors[i].VerificationDate = &now
			}
		}
	}
}

func pendingDoctor(name, email, specialization, license string) Doctor {
	return Doctor{
		FullName:       name,
		Email:          email,
		Specialization: specialization,
		LicenseNumber:  license,
		Status:         StatusPending,
	}
}

func newTestController(t *testing.T, reg *mockRegistry) *Controller {
	t.Helper()
	c := NewController(reg)
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

func TestSubmitApprove_Success(t *testing.T) {
	reg := &mockRegistry{doctors: []Doctor{
		pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001"),
		pendingDoctor("Dr. Ben Oduya", "b@x.com", "Neurology", "MED-000002"),
	}}
	c := newTestController(t, reg)

	require.NoError(t, c.SubmitApprove(context.Background(), "a@x.com"))

	// The queue must match the post-approval listing, including the
	// verification date the registry set.
	queue := c.Queue()
	require.Len(t, queue, 2)
	assert.Equal(t, StatusApproved, queue[0].Status)
	assert.NotNil(t, queue[0].VerificationDate)
	assert.Equal(t, StatusPending, queue[1].Status)

	pending := c.Filter(StatusPending, "")
	require.Len(t, pending, 1)
	assert.Equal(t, "b@x.com", pending[0].Email)

	assert.False(t, c.InFlight("a@x.com"))
	assert.Nil(t, c.ActionErr("a@x.com"))
}

func TestSubmit_SingleFlightPerEmail(t *testing.T) {
	gate := make(chan struct{})
	reg := &mockRegistry{
		doctors:     []Doctor{pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001")},
		approveGate: gate,
	}
	c := newTestController(t, reg)

	done := make(chan error, 1)
	go func() {
		done <- c.SubmitApprove(context.Background(), "a@x.com")
	}()

	// Wait for the first submission to reach the registry.
	require.Eventually(t, func() bool {
		return c.InFlight("a@x.com")
	}, time.Second, time.Millisecond)

	// Duplicates for the same email are dropped without a registry call,
	// whichever action they carry.
	assert.ErrorIs(t, c.SubmitApprove(context.Background(), "a@x.com"), ErrVerificationInFlight)
	assert.ErrorIs(t, c.SubmitReject(context.Background(), "a@x.com"), ErrVerificationInFlight)

	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), atomic.LoadInt32(&reg.approveCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&reg.rejectCalls))
	assert.False(t, c.InFlight("a@x.com"))
}

func TestSubmit_GuardHeldThroughRefresh(t *testing.T) {
	reg := &mockRegistry{
		doctors: []Doctor{pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001")},
	}
	c := newTestController(t, reg)

	gate := make(chan struct{})
	reg.listGate = gate

	done := make(chan error, 1)
	go func() {
		done <- c.SubmitApprove(context.Background(), "a@x.com")
	}()

	// Wait until the approve has landed and the refresh is underway.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&reg.listCalls) > 1
	}, time.Second, time.Millisecond)

	// The snapshot still shows the doctor as pending at this point; a
	// duplicate submission must be dropped, not issued against the registry
	// where it would fail the pending check.
	assert.Equal(t, StatusPending, c.Queue()[0].Status)
	assert.ErrorIs(t, c.SubmitApprove(context.Background(), "a@x.com"), ErrVerificationInFlight)

	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), atomic.LoadInt32(&reg.approveCalls))
	assert.False(t, c.InFlight("a@x.com"))
	assert.Equal(t, StatusApproved, c.Queue()[0].Status)
	assert.Nil(t, c.ActionErr("a@x.com"))
}

func TestSubmit_DifferentEmailsProceedConcurrently(t *testing.T) {
	gate := make(chan struct{})
	reg := &mockRegistry{
		doctors: []Doctor{
			pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001"),
			pendingDoctor("Dr. Ben Oduya", "b@x.com", "Neurology", "MED-000002"),
		},
		approveGate: gate,
	}
	c := newTestController(t, reg)

	done := make(chan error, 1)
	go func() {
		done <- c.SubmitApprove(context.Background(), "a@x.com")
	}()

	require.Eventually(t, func() bool {
		return c.InFlight("a@x.com")
	}, time.Second, time.Millisecond)

	// A reject for a different doctor is not blocked by a@x.com's lock.
	require.NoError(t, c.SubmitReject(context.Background(), "b@x.com"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&reg.rejectCalls))

	close(gate)
	require.NoError(t, <-done)
}

func TestSubmitApprove_FailureLeavesStatusAndReleasesLock(t *testing.T) {
	reg := &mockRegistry{
		doctors:    []Doctor{pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001")},
		approveErr: errors.New("backend down"),
	}
	c := newTestController(t, reg)

	err := c.SubmitApprove(context.Background(), "a@x.com")

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "a@x.com", actionErr.Email)
	assert.Equal(t, ActionApprove, actionErr.Action)

	// Status unchanged and the error is retrievable for the attempt.
	queue := c.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, StatusPending, queue[0].Status)
	require.NotNil(t, c.ActionErr("a@x.com"))

	// Lock released: a retry goes through once the backend recovers.
	assert.False(t, c.InFlight("a@x.com"))
	reg.approveErr = nil
	require.NoError(t, c.SubmitApprove(context.Background(), "a@x.com"))
	assert.Nil(t, c.ActionErr("a@x.com"))
	assert.Equal(t, StatusApproved, c.Queue()[0].Status)
}

func TestSubmit_NonPendingIsDefensiveNoOp(t *testing.T) {
	approved := pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001")
	approved.Status = StatusApproved
	reg := &mockRegistry{doctors: []Doctor{approved}}
	c := newTestController(t, reg)

	assert.ErrorIs(t, c.SubmitApprove(context.Background(), "a@x.com"), ErrNotPending)
	assert.ErrorIs(t, c.SubmitReject(context.Background(), "a@x.com"), ErrNotPending)
	assert.Equal(t, int32(0), atomic.LoadInt32(&reg.approveCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&reg.rejectCalls))
}

func TestRefreshFailure_KeepsLastKnownGoodQueue(t *testing.T) {
	reg := &mockRegistry{doctors: []Doctor{
		pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001"),
	}}
	c := newTestController(t, reg)
	require.Len(t, c.Queue(), 1)

	reg.listErr = errors.New("listing unavailable")
	err := c.Refresh(context.Background())

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Len(t, c.Queue(), 1)
	require.NotNil(t, c.RefreshErr())

	reg.listErr = nil
	require.NoError(t, c.Refresh(context.Background()))
	assert.Nil(t, c.RefreshErr())
}

func TestSubmitApprove_TransitionSucceedsButRefreshFails(t *testing.T) {
	reg := &mockRegistry{doctors: []Doctor{
		pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001"),
	}}
	c := newTestController(t, reg)

	reg.listErr = errors.New("listing unavailable")
	err := c.SubmitApprove(context.Background(), "a@x.com")

	// The failure is a refresh failure, not an action failure.
	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Nil(t, c.ActionErr("a@x.com"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&reg.approveCalls))

	// Snapshot still shows the pre-approval state until a refresh lands.
	assert.Equal(t, StatusPending, c.Queue()[0].Status)

	reg.listErr = nil
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, StatusApproved, c.Queue()[0].Status)
}

func TestFilter_PureAndIdempotent(t *testing.T) {
	reg := &mockRegistry{doctors: []Doctor{
		pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001"),
		pendingDoctor("Dr. Ben Oduya", "b@x.com", "Neurology", "MED-000002"),
	}}
	c := newTestController(t, reg)
	listCallsAfterSetup := atomic.LoadInt32(&reg.listCalls)

	first := c.Filter(StatusPending, "cardio")
	second := c.Filter(StatusPending, "cardio")

	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, "a@x.com", first[0].Email)

	// Filtering never re-fetches and never shrinks the snapshot.
	assert.Equal(t, listCallsAfterSetup, atomic.LoadInt32(&reg.listCalls))
	assert.Len(t, c.Queue(), 2)
}

func TestFilter_MatchesAnyOfNameSpecializationLicense(t *testing.T) {
	reg := &mockRegistry{doctors: []Doctor{
		pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000111"),
		pendingDoctor("Dr. Ben Oduya", "b@x.com", "Neurology", "MED-000222"),
	}}
	c := newTestController(t, reg)

	assert.Len(t, c.Filter("", "ASHA"), 1)       // name, case-insensitive
	assert.Len(t, c.Filter("", "neuro"), 1)      // specialization
	assert.Len(t, c.Filter("", "000222"), 1)     // license number
	assert.Len(t, c.Filter("", "med-000"), 2)    // shared license prefix
	assert.Empty(t, c.Filter("", "orthopedics")) // no match
}

func TestStats(t *testing.T) {
	approved := pendingDoctor("Dr. Asha Rao", "a@x.com", "Cardiology", "MED-000001")
	approved.Status = StatusApproved
	rejected := pendingDoctor("Dr. Cy Tan", "c@x.com", "ENT", "MED-000003")
	rejected.Status = StatusRejected

	reg := &mockRegistry{doctors: []Doctor{
		approved,
		pendingDoctor("Dr. Ben Oduya", "b@x.com", "Neurology", "MED-000002"),
		rejected,
	}}
	c := newTestController(t, reg)

	stats := c.Stats()
	assert.Equal(t, Stats{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, stats)
}
