package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/contentdesk/internal/api/dto"
	"github.com/spec-kit/contentdesk/internal/auth"
	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/events"
	"github.com/spec-kit/contentdesk/internal/observability"
	"github.com/spec-kit/contentdesk/internal/poller"
	"github.com/spec-kit/contentdesk/internal/support"
)

const streamHeartbeat = 15 * time.Second

// SupportHandler serves the user and admin support chat: a snapshot, an
// event stream and the chat actions. Every request shares the browser's
// mounted view through the registry.
type SupportHandler struct {
	kind     domain.PrincipalKind
	registry *support.Registry
	interval time.Duration
	clock    poller.Clock
	logger   *zap.Logger
	metrics  *observability.Metrics
	done     <-chan struct{}
}

// SupportOptions configures a SupportHandler.
type SupportOptions struct {
	Registry     *support.Registry
	PollInterval time.Duration
	Clock        poller.Clock
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	// Done ends open streams when closed, e.g. on shutdown.
	Done <-chan struct{}
}

// NewSupportHandler builds the handler for kind.
func NewSupportHandler(kind domain.PrincipalKind, opts SupportOptions) *SupportHandler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &SupportHandler{
		kind:     kind,
		registry: opts.Registry,
		interval: opts.PollInterval,
		clock:    opts.Clock,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		done:     opts.Done,
	}
}

func (h *SupportHandler) viewName() string {
	return string(h.kind) + "-support"
}

func (h *SupportHandler) acquire(c *fiber.Ctx) (*support.View, func(), error) {
	b, err := browser(c)
	if err != nil {
		return nil, nil, err
	}
	return h.registry.Acquire(c.UserContext(), b.ID+":"+string(h.kind), func() *support.View {
		return h.build(b)
	})
}

func (h *SupportHandler) build(b *auth.Browser) *support.View {
	var backend support.Backend = support.UserBackend{Tickets: b.UserAPI.Tickets}
	if h.kind == domain.PrincipalAdmin {
		backend = support.AdminBackend{Tickets: b.AdminAPI.AdminTickets}
	}
	view := support.NewView(backend, support.Options{
		Name:         h.viewName(),
		PollInterval: h.interval,
		Clock:        h.clock,
		Logger:       h.logger.With(zap.String("sid", b.ID)),
		Observer:     h.metrics,
	})
	h.logEvents(view)
	return view
}

func (h *SupportHandler) logEvents(view *support.View) {
	logger := h.logger.With(zap.String("view", view.Name()))
	for _, t := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketMessageSent,
		events.EventTicketStatusChanged,
	} {
		view.Events().Subscribe(t, func(_ context.Context, e events.Event) error {
			logger.Info("support event", zap.String("event", string(e.Type)), zap.String("ticket_id", e.TicketID))
			return nil
		})
	}
}

// Tickets GET /support returns the current snapshot.
func (h *SupportHandler) Tickets(c *fiber.Ctx) error {
	view, release, err := h.acquire(c)
	if err != nil {
		return err
	}
	defer release()
	return data(c, view.Snapshot())
}

// Stream GET /support/stream pushes a snapshot on every change as
// server-sent events until the client goes away.
func (h *SupportHandler) Stream(c *fiber.Ctx) error {
	view, release, err := h.acquire(c)
	if err != nil {
		return err
	}

	updates := make(chan support.Snapshot, 1)
	unsubscribe := view.Subscribe(func(s support.Snapshot) {
		// Keep only the newest snapshot for a slow reader.
		for {
			select {
			case updates <- s:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	name := view.Name()
	h.metrics.StreamOpened(name)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	initial := view.Snapshot()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			unsubscribe()
			release()
			h.metrics.StreamClosed(name)
		}()

		if err := writeEvent(w, initial); err != nil {
			return
		}
		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()
		for {
			select {
			case <-h.done:
				return
			case snap := <-updates:
				if err := writeEvent(w, snap); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, snap support.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Version, payload); err != nil {
		return err
	}
	return w.Flush()
}

// Create POST /support/tickets.
func (h *SupportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, release, err := h.acquire(c)
	if err != nil {
		return err
	}
	defer release()
	if _, err := view.Create(c.UserContext(), req.Subject, req.Message); err != nil {
		return err
	}
	return created(c, view.Snapshot())
}

// Select POST /support/select.
func (h *SupportHandler) Select(c *fiber.Ctx) error {
	var req dto.SelectTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, release, err := h.acquire(c)
	if err != nil {
		return err
	}
	defer release()
	if err := view.Select(c.UserContext(), req.TicketID); err != nil {
		return err
	}
	return data(c, view.Snapshot())
}

// Send POST /support/messages replies in the active ticket.
func (h *SupportHandler) Send(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, release, err := h.acquire(c)
	if err != nil {
		return err
	}
	defer release()
	if req.TicketID != "" && view.Snapshot().ActiveID != req.TicketID {
		if err := view.Select(c.UserContext(), req.TicketID); err != nil {
			return err
		}
	}
	if err := view.Send(c.UserContext(), req.Message); err != nil {
		return err
	}
	return data(c, view.Snapshot())
}

// UpdateStatus PUT /admin/support/:id/status.
func (h *SupportHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, release, err := h.acquire(c)
	if err != nil {
		return err
	}
	defer release()
	if err := view.UpdateStatus(c.UserContext(), c.Params("id"), req.Status); err != nil {
		return err
	}
	return data(c, view.Snapshot())
}
