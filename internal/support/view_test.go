package support

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/poller"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeTickets struct {
	mu       sync.Mutex
	tickets  []domain.Ticket
	listErr  error
	sendErr  error
	readErr  error
	lists    int
	reads    []string
	calls    []string
	nextID   int
	sendHook func()
	listHook func()
}

func (f *fakeTickets) Sender() domain.SenderType { return domain.SenderUser }

func (f *fakeTickets) List(context.Context) ([]domain.Ticket, error) {
	if f.listHook != nil {
		f.listHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Ticket, len(f.tickets))
	for i := range f.tickets {
		out[i] = *f.tickets[i].Clone()
	}
	return out, nil
}

func (f *fakeTickets) Send(_ context.Context, id, text string) (*domain.Ticket, error) {
	if f.sendHook != nil {
		f.sendHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "send")
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			f.nextID++
			f.tickets[i].Messages = append(f.tickets[i].Messages, domain.Message{
				ID: fmt.Sprintf("srv-%d", f.nextID), SenderType: domain.SenderUser, Text: text,
				Timestamp: t0.Add(time.Duration(len(f.tickets[i].Messages)) * time.Minute),
			})
			return f.tickets[i].Clone(), nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", nil)
}

func (f *fakeTickets) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "read:"+id)
	if f.readErr != nil {
		return f.readErr
	}
	f.reads = append(f.reads, id)
	if t := find(f.tickets, id); t != nil {
		t.UnreadCount = 0
	}
	return nil
}

func (f *fakeTickets) Create(_ context.Context, subject, message string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := domain.Ticket{
		ID: fmt.Sprintf("t-new-%d", f.nextID), Subject: subject, Status: domain.TicketStatusOpen,
		Messages: []domain.Message{{ID: "m-first", SenderType: domain.SenderUser, Text: message, Timestamp: t0}},
	}
	f.tickets = append(f.tickets, t)
	return t.Clone(), nil
}

func (f *fakeTickets) addAdminReply(id, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := find(f.tickets, id)
	f.nextID++
	t.Messages = append(t.Messages, domain.Message{
		ID: fmt.Sprintf("adm-%d", f.nextID), SenderType: domain.SenderAdmin, Text: text,
		Timestamp: t0.Add(time.Hour),
	})
}

func ticketWith(id string, n int) domain.Ticket {
	t := domain.Ticket{ID: id, Subject: "Subject " + id, Status: domain.TicketStatusOpen, UnreadCount: 1}
	for i := 0; i < n; i++ {
		t.Messages = append(t.Messages, domain.Message{
			ID: fmt.Sprintf("%s-m%d", id, i), SenderType: domain.SenderUser,
			Text: fmt.Sprintf("message %d", i), Timestamp: t0.Add(time.Duration(i) * time.Minute),
		})
	}
	return t
}

func newView(t *testing.T, backend Backend) (*View, *poller.FakeClock) {
	t.Helper()
	clock := poller.NewFakeClock(t0)
	v := NewView(backend, Options{Name: "user-support", PollInterval: 3 * time.Second, Clock: clock})
	t.Cleanup(v.Unmount)
	return v, clock
}

func TestChanged(t *testing.T) {
	base := ticketWith("t1", 2)
	same := *base.Clone()

	more := *base.Clone()
	more.Messages = append(more.Messages, domain.Message{ID: "x", Timestamp: t0.Add(time.Hour)})

	status := *base.Clone()
	status.Status = domain.TicketStatusClosed

	edited := *base.Clone()
	edited.Messages[1].Text = "edited"

	subject := *base.Clone()
	subject.Subject = "other"

	unread := *base.Clone()
	unread.UnreadCount = 4

	assert.False(t, Changed(&base, &same))
	assert.False(t, Changed(nil, nil))
	assert.True(t, Changed(nil, &base))
	assert.True(t, Changed(&base, &more))
	assert.True(t, Changed(&base, &status))
	assert.True(t, Changed(&base, &edited))
	assert.True(t, Changed(&base, &subject))
	assert.True(t, Changed(&base, &unread))
}

func TestMergeKeepsUnacknowledgedPendingAtTail(t *testing.T) {
	server := ticketWith("t1", 2)
	server.Messages[0], server.Messages[1] = server.Messages[1], server.Messages[0]
	pending := []domain.Message{{ID: "pending-1", Text: "hi", Pending: true}, {ID: "t1-m0"}}

	out := merge(&server, pending)
	require.Len(t, out.Messages, 3)
	assert.Equal(t, "t1-m0", out.Messages[0].ID)
	assert.Equal(t, "t1-m1", out.Messages[1].ID)
	assert.Equal(t, "pending-1", out.Messages[2].ID)
	assert.Nil(t, merge(nil, pending))
}

func TestMountFetchesAndStartsPolling(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 2)}}
	v, _ := newView(t, backend)

	require.NoError(t, v.Mount(context.Background()))
	snap := v.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	require.Len(t, snap.Tickets, 1)
	assert.True(t, v.Mounted())
}

func TestMountSurfacesFetchError(t *testing.T) {
	backend := &fakeTickets{listErr: apperrors.NewBackendError(500, "database offline", nil)}
	v, _ := newView(t, backend)

	err := v.Mount(context.Background())
	require.Error(t, err)
	assert.Equal(t, "database offline", v.Snapshot().Error)
	assert.False(t, v.Mounted())
}

func TestTickReplacesActiveOnlyWhenChanged(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 2)}}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))
	require.NoError(t, v.Select(context.Background(), "t1"))

	before := v.Snapshot()
	require.NoError(t, v.Tick(context.Background()))
	after := v.Snapshot()
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Active, after.Active)

	backend.addAdminReply("t1", "we are on it")
	require.NoError(t, v.Tick(context.Background()))
	updated := v.Snapshot()
	assert.Greater(t, updated.Version, after.Version)
	require.Len(t, updated.Active.Messages, 3)
	assert.Equal(t, "we are on it", updated.Active.Last().Text)
}

func TestPollingDrivesTicks(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	v, clock := newView(t, backend)

	updates := make(chan Snapshot, 16)
	unsubscribe := v.Subscribe(func(s Snapshot) { updates <- s })
	defer unsubscribe()

	require.NoError(t, v.Mount(context.Background()))
	backend.addAdminReply("t1", "hello")

	clock.BlockUntil(1)
	clock.Advance(3 * time.Second)

	require.Eventually(t, func() bool {
		for {
			select {
			case s := <-updates:
				if len(s.Tickets) == 1 && len(s.Tickets[0].Messages) == 2 {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, time.Millisecond)
}

func TestTickErrorLeavesStateAlone(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))
	before := v.Snapshot()

	backend.mu.Lock()
	backend.listErr = errors.New("connection reset")
	backend.mu.Unlock()

	require.Error(t, v.Tick(context.Background()))
	assert.Equal(t, before, v.Snapshot())
}

func TestSelectMarksReadBeforeSwitching(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1), ticketWith("t2", 1)}}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))

	require.NoError(t, v.Select(context.Background(), "t2"))
	snap := v.Snapshot()
	assert.Equal(t, PhaseViewing, snap.Phase)
	assert.Equal(t, "t2", snap.ActiveID)
	assert.Equal(t, 0, snap.Active.UnreadCount)
	assert.Equal(t, []string{"list", "read:t2", "list"}, backend.calls)
}

func TestSelectFailureKeepsCurrentTicket(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}, readErr: apperrors.NewBackendError(403, "not yours", nil)}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))

	require.Error(t, v.Select(context.Background(), "t1"))
	snap := v.Snapshot()
	assert.Empty(t, snap.ActiveID)
	assert.Equal(t, "not yours", snap.Error)
}

func TestSendIsOptimisticThenReconciled(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))
	require.NoError(t, v.Select(context.Background(), "t1"))

	var during Snapshot
	backend.sendHook = func() { during = v.Snapshot() }

	require.NoError(t, v.Send(context.Background(), "any update?"))

	assert.Equal(t, PhaseSending, during.Phase)
	require.Len(t, during.Active.Messages, 2)
	assert.True(t, during.Active.Messages[1].Pending)

	snap := v.Snapshot()
	assert.Equal(t, PhaseViewing, snap.Phase)
	require.Len(t, snap.Active.Messages, 2)
	assert.False(t, snap.Active.Messages[1].Pending)
	assert.Equal(t, "srv-1", snap.Active.Messages[1].ID)
}

func TestSendFailureWithdrawsOptimisticMessage(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}, sendErr: apperrors.NewNetworkError(errors.New("dial tcp"))}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))
	require.NoError(t, v.Select(context.Background(), "t1"))

	err := v.Send(context.Background(), "hello?")
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))

	snap := v.Snapshot()
	assert.Equal(t, PhaseViewing, snap.Phase)
	assert.Len(t, snap.Active.Messages, 1)
	assert.Equal(t, "backend unreachable", snap.Error)
}

func TestSendValidation(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))

	assert.True(t, apperrors.IsValidation(v.Send(context.Background(), "hi")))
	require.NoError(t, v.Select(context.Background(), "t1"))
	assert.True(t, apperrors.IsValidation(v.Send(context.Background(), "   ")))
	assert.NotContains(t, backend.calls, "send")
}

func TestCreateSelectsNewTicket(t *testing.T) {
	backend := &fakeTickets{}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))

	ticket, err := v.Create(context.Background(), "Refund", "please")
	require.NoError(t, err)
	snap := v.Snapshot()
	assert.Equal(t, ticket.ID, snap.ActiveID)
	assert.Equal(t, PhaseViewing, snap.Phase)
	require.Len(t, snap.Tickets, 1)
}

func TestUnmountStopsPolling(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	v, _ := newView(t, backend)
	require.NoError(t, v.Mount(context.Background()))
	v.Unmount()
	v.Unmount()
	assert.False(t, v.Mounted())
}

func TestRegistrySharesAndReleasesViews(t *testing.T) {
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	reg := NewRegistry()
	builds := 0
	build := func() *View {
		builds++
		return NewView(backend, Options{Name: "user-support", Clock: poller.NewFakeClock(t0)})
	}

	a, releaseA, err := reg.Acquire(context.Background(), "sid:user", build)
	require.NoError(t, err)
	b, releaseB, err := reg.Acquire(context.Background(), "sid:user", build)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, builds)

	releaseA()
	releaseA()
	assert.True(t, a.Mounted())
	releaseB()
	assert.False(t, a.Mounted())
	assert.Zero(t, reg.Len())
}

func TestRegistryDropsViewThatFailedToMount(t *testing.T) {
	backend := &fakeTickets{listErr: errors.New("down")}
	reg := NewRegistry()

	_, _, err := reg.Acquire(context.Background(), "k", func() *View {
		return NewView(backend, Options{Clock: poller.NewFakeClock(t0)})
	})
	require.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestRegistryConcurrentAcquireSharesMountFailure(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	backend.listHook = func() {
		once.Do(func() { close(entered) })
		<-gate
	}
	reg := NewRegistry()
	builds := 0
	build := func() *View {
		builds++
		return NewView(backend, Options{Clock: poller.NewFakeClock(t0)})
	}

	errs := make(chan error, 2)
	go func() {
		_, _, err := reg.Acquire(context.Background(), "k", build)
		errs <- err
	}()
	<-entered
	go func() {
		_, _, err := reg.Acquire(context.Background(), "k", build)
		errs <- err
	}()
	assert.Eventually(t, func() bool {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		e := reg.views["k"]
		return e != nil && e.refs == 2
	}, time.Second, time.Millisecond)

	backend.mu.Lock()
	backend.listErr = errors.New("down")
	backend.mu.Unlock()
	close(gate)

	require.Error(t, <-errs)
	require.Error(t, <-errs)
	assert.Zero(t, reg.Len())
	assert.Equal(t, 1, builds)

	backend.mu.Lock()
	backend.listErr = nil
	backend.mu.Unlock()
	v, release, err := reg.Acquire(context.Background(), "k", build)
	require.NoError(t, err)
	assert.True(t, v.Mounted())
	assert.Equal(t, 2, builds)
	release()
	assert.False(t, v.Mounted())
}

func TestRegistryWaiterGivesUpOnCancel(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	backend := &fakeTickets{tickets: []domain.Ticket{ticketWith("t1", 1)}}
	backend.listHook = func() {
		once.Do(func() { close(entered) })
		<-gate
	}
	reg := NewRegistry()
	build := func() *View { return NewView(backend, Options{Clock: poller.NewFakeClock(t0)}) }

	first := make(chan func(), 1)
	go func() {
		_, release, err := reg.Acquire(context.Background(), "k", build)
		assert.NoError(t, err)
		first <- release
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := reg.Acquire(ctx, "k", build)
	require.ErrorIs(t, err, context.Canceled)

	close(gate)
	release := <-first
	assert.Equal(t, 1, reg.Len())
	release()
	assert.Zero(t, reg.Len())
}
