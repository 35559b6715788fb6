// Package support drives the live support chat shared by the user and admin
// consoles: a ticket list kept fresh by polling plus one active conversation.
package support

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/events"
	"github.com/spec-kit/contentdesk/internal/poller"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// Options configures a View.
type Options struct {
	Name         string
	PollInterval time.Duration
	Clock        poller.Clock
	Logger       *zap.Logger
	Observer     poller.Observer
	Events       events.Dispatcher
}

// View is one mounted chat window. It is safe for concurrent use; user
// actions are not de-duplicated.
type View struct {
	name    string
	backend Backend
	clock   poller.Clock
	logger  *zap.Logger
	events  events.Dispatcher
	poller  *poller.Poller

	mu      sync.Mutex
	state   Snapshot
	pending map[string][]domain.Message
}

// NewView builds an unmounted view over backend.
func NewView(backend Backend, opts Options) *View {
	if opts.Clock == nil {
		opts.Clock = poller.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Events == nil {
		opts.Events = events.NewInMemoryDispatcher()
	}
	v := &View{
		name:    opts.Name,
		backend: backend,
		clock:   opts.Clock,
		logger:  opts.Logger.With(zap.String("view", opts.Name)),
		events:  opts.Events,
		state:   Snapshot{View: opts.Name, Phase: PhaseIdle},
		pending: make(map[string][]domain.Message),
	}
	v.poller = poller.New(v.Tick, poller.Options{
		Name:     opts.Name,
		Interval: opts.PollInterval,
		Clock:    opts.Clock,
		Logger:   opts.Logger,
		Observer: opts.Observer,
	})
	return v
}

// Name identifies the view in events and metrics.
func (v *View) Name() string { return v.name }

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Subscribe calls fn with a snapshot after every state change. The returned
// function unsubscribes.
func (v *View) Subscribe(fn func(Snapshot)) func() {
	return v.events.Subscribe(events.EventChatUpdated, func(_ context.Context, e events.Event) error {
		if snap, ok := e.Payload.(Snapshot); ok && e.View == v.name {
			fn(snap)
		}
		return nil
	})
}

// Events exposes the dispatcher so callers can observe ticket events.
func (v *View) Events() events.Dispatcher { return v.events }

// Mount fetches the ticket list and starts polling. A failed fetch is
// surfaced and polling is not started.
func (v *View) Mount(ctx context.Context) error {
	v.update(ctx, func(s *Snapshot) {
		s.Phase = PhaseLoading
		s.Error = ""
	})

	tickets, err := v.backend.List(ctx)
	if err != nil {
		v.update(ctx, func(s *Snapshot) {
			s.Phase = PhaseIdle
			s.Error = apperrors.ToDomainError(err).Message
		})
		return err
	}

	v.update(ctx, func(s *Snapshot) {
		s.Tickets = tickets
		s.Phase = PhaseIdle
		if s.ActiveID != "" {
			if t := find(tickets, s.ActiveID); t != nil {
				s.Active = merge(t, v.pending[s.ActiveID])
				s.Phase = PhaseViewing
			}
		}
	})
	v.poller.Start(context.WithoutCancel(ctx))
	return nil
}

// Unmount stops polling. The last state stays readable.
func (v *View) Unmount() {
	v.poller.Stop()
}

// Mounted reports whether the view is polling.
func (v *View) Mounted() bool { return v.poller.Running() }

// Tick re-fetches the list and replaces the active ticket only when it
// changed. Errors are returned to the poller, which logs them.
func (v *View) Tick(ctx context.Context) error {
	tickets, err := v.backend.List(ctx)
	if err != nil {
		return err
	}
	v.reconcile(ctx, tickets)
	return nil
}

// Select marks a ticket read, switches the view to it and reconciles with a
// fresh fetch.
func (v *View) Select(ctx context.Context, ticketID string) error {
	if strings.TrimSpace(ticketID) == "" {
		return apperrors.NewValidationError("ticket id is required", nil)
	}
	if err := v.backend.MarkRead(ctx, ticketID); err != nil {
		v.fail(ctx, err)
		return err
	}
	v.publish(ctx, events.New(events.EventTicketRead, v.name, ticketID, nil))

	v.update(ctx, func(s *Snapshot) {
		s.ActiveID = ticketID
		s.Phase = PhaseViewing
		s.Error = ""
		if t := find(s.Tickets, ticketID); t != nil {
			t.UnreadCount = 0
			s.Active = merge(t, v.pending[ticketID])
		} else {
			s.Active = nil
		}
	})
	return v.refetch(ctx)
}

// Send appends an optimistic message, posts it, then re-fetches. On failure
// the optimistic message is withdrawn and the error surfaced.
func (v *View) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.NewValidationError("message cannot be empty", nil)
	}

	optimistic := domain.Message{
		ID:         "pending-" + uuid.NewString(),
		SenderType: v.backend.Sender(),
		Text:       text,
		Timestamp:  v.clock.Now().UTC(),
		Pending:    true,
	}

	v.mu.Lock()
	ticketID := v.state.ActiveID
	if ticketID == "" || v.state.Active == nil {
		v.mu.Unlock()
		return apperrors.NewValidationError("select a ticket first", nil)
	}
	v.mu.Unlock()

	v.update(ctx, func(s *Snapshot) {
		v.pending[ticketID] = append(v.pending[ticketID], optimistic)
		if s.Active != nil && s.ActiveID == ticketID {
			s.Active.Messages = append(s.Active.Messages, optimistic)
		}
		s.Phase = PhaseSending
		s.Error = ""
	})

	server, err := v.backend.Send(ctx, ticketID, text)
	v.acknowledge(ticketID, optimistic.ID)
	if err != nil {
		v.update(ctx, func(s *Snapshot) {
			if s.Active != nil && s.ActiveID == ticketID {
				s.Active = withoutMessage(s.Active, optimistic.ID)
			}
			s.Phase = v.restingPhase(s)
			s.Error = apperrors.ToDomainError(err).Message
		})
		return err
	}

	var sentID string
	if last := server.Last(); last != nil {
		sentID = last.ID
	}
	v.publish(ctx, events.New(events.EventTicketMessageSent, v.name, ticketID, events.TicketMessageSentPayload{
		MessageID:   sentID,
		SenderType:  string(optimistic.SenderType),
		BodyPreview: preview(text),
	}))

	if err := v.refetch(ctx); err != nil {
		// The send succeeded; fall back to the copy it returned.
		v.update(ctx, func(s *Snapshot) {
			if s.ActiveID == ticketID {
				s.Active = merge(server, v.pending[ticketID])
			}
			s.Phase = v.restingPhase(s)
		})
		v.logger.Warn("refetch after send failed", zap.Error(err))
	}
	return nil
}

// Create opens a new ticket, re-fetches and selects it.
func (v *View) Create(ctx context.Context, subject, message string) (*domain.Ticket, error) {
	creator, ok := v.backend.(Creator)
	if !ok {
		return nil, errors.New("this view cannot open tickets")
	}
	ticket, err := creator.Create(ctx, subject, message)
	if err != nil {
		v.fail(ctx, err)
		return nil, err
	}
	v.publish(ctx, events.New(events.EventTicketCreated, v.name, ticket.ID, nil))

	v.update(ctx, func(s *Snapshot) {
		s.ActiveID = ticket.ID
		s.Active = merge(ticket, nil)
		s.Phase = PhaseViewing
		s.Error = ""
	})
	if err := v.refetch(ctx); err != nil {
		v.logger.Warn("refetch after create failed", zap.Error(err))
	}
	return ticket, nil
}

// UpdateStatus requests a status transition and re-fetches. The backend
// decides whether the transition applies.
func (v *View) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	updater, ok := v.backend.(StatusUpdater)
	if !ok {
		return errors.New("this view cannot change ticket status")
	}
	var old domain.TicketStatus
	v.mu.Lock()
	if t := find(v.state.Tickets, ticketID); t != nil {
		old = t.Status
	}
	v.mu.Unlock()

	updated, err := updater.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		v.fail(ctx, err)
		return err
	}
	v.publish(ctx, events.New(events.EventTicketStatusChanged, v.name, ticketID, events.TicketStatusChangedPayload{
		OldStatus: string(old),
		NewStatus: string(updated.Status),
	}))
	return v.refetch(ctx)
}

func (v *View) refetch(ctx context.Context) error {
	tickets, err := v.backend.List(ctx)
	if err != nil {
		return err
	}
	v.reconcile(ctx, tickets)
	return nil
}

// reconcile applies a fetched list. It publishes only when something the
// user can see changed.
func (v *View) reconcile(ctx context.Context, tickets []domain.Ticket) {
	v.mu.Lock()
	changed := listChanged(v.state.Tickets, tickets)
	if changed {
		v.state.Tickets = tickets
	}
	if v.state.ActiveID != "" {
		next := merge(find(tickets, v.state.ActiveID), v.pending[v.state.ActiveID])
		if next != nil && Changed(v.state.Active, next) {
			v.state.Active = next
			changed = true
		}
	}
	if phase := v.restingPhase(&v.state); phase != v.state.Phase && v.state.Phase != PhaseLoading {
		v.state.Phase = phase
		changed = true
	}
	if !changed {
		v.mu.Unlock()
		return
	}
	v.state.Version++
	snap := v.state.clone()
	v.mu.Unlock()

	v.publish(ctx, events.New(events.EventChatUpdated, v.name, snap.ActiveID, snap))
}

// restingPhase is the phase once no request is in flight. Callers hold mu.
func (v *View) restingPhase(s *Snapshot) Phase {
	if s.ActiveID != "" && len(v.pending[s.ActiveID]) > 0 {
		return PhaseSending
	}
	if s.ActiveID != "" && s.Active != nil {
		return PhaseViewing
	}
	return PhaseIdle
}

func (v *View) acknowledge(ticketID, messageID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	list := v.pending[ticketID]
	for i, m := range list {
		if m.ID == messageID {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(v.pending, ticketID)
		return
	}
	v.pending[ticketID] = list
}

func (v *View) fail(ctx context.Context, err error) {
	v.update(ctx, func(s *Snapshot) {
		s.Error = apperrors.ToDomainError(err).Message
	})
}

// update mutates state under the lock and publishes the result.
func (v *View) update(ctx context.Context, fn func(s *Snapshot)) {
	v.mu.Lock()
	fn(&v.state)
	v.state.Version++
	snap := v.state.clone()
	v.mu.Unlock()

	v.publish(ctx, events.New(events.EventChatUpdated, v.name, snap.ActiveID, snap))
}

func (v *View) publish(ctx context.Context, e events.Event) {
	if err := v.events.Publish(ctx, e); err != nil {
		v.logger.Debug("event handler failed", zap.String("event", string(e.Type)), zap.Error(err))
	}
}

func withoutMessage(t *domain.Ticket, id string) *domain.Ticket {
	out := t.Clone()
	msgs := out.Messages[:0]
	for _, m := range out.Messages {
		if m.ID != id {
			msgs = append(msgs, m)
		}
	}
	out.Messages = msgs
	return out
}

func preview(text string) string {
	const max = 80
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "…"
}
