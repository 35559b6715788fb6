package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
	"github.com/spec-kit/contentdesk/internal/support"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

func (a *app) ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Support tickets",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your tickets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				if err := a.requireUser(ctx); err != nil {
					return err
				}
				tickets, err := a.userAPI.Tickets.MyTickets(ctx)
				if err != nil {
					return err
				}
				return a.printTickets(tickets)
			},
		},
		a.ticketsCreateCmd(),
		&cobra.Command{
			Use:   "send <id> <message>",
			Short: "Post a message to a ticket",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := a.requireUser(ctx); err != nil {
					return err
				}
				ticket, err := a.userAPI.Tickets.SendMessage(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				a.say("Sent to %s (%d messages)", ticket.ID, len(ticket.Messages))
				return nil
			},
		},
		&cobra.Command{
			Use:   "chat <id>",
			Short: "Open a live chat on a ticket",
			Long:  "Prints the thread, then sends every line read from stdin. New replies appear as they arrive. Type /quit or send EOF to leave.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := a.requireUser(ctx); err != nil {
					return err
				}
				return a.chat(ctx, support.UserBackend{Tickets: a.userAPI.Tickets}, args[0])
			},
		},
	)
	return cmd
}

func (a *app) ticketsCreateCmd() *cobra.Command {
	var in service.CreateTicketInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireUser(ctx); err != nil {
				return err
			}
			ticket, err := a.userAPI.Tickets.Create(ctx, in)
			if err != nil {
				return err
			}
			a.say("Opened ticket %s", ticket.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Subject, "subject", "", "ticket subject")
	cmd.Flags().StringVarP(&in.Message, "message", "m", "", "first message")
	return cmd
}

func (a *app) printTickets(tickets []domain.Ticket) error {
	return a.printer.print(tickets, func() table {
		t := table{headers: []string{"ID", "SUBJECT", "STATUS", "UNREAD", "MESSAGES"}}
		for _, tk := range tickets {
			t.add(tk.ID, tk.Subject, string(tk.Status), itoa(tk.UnreadCount), itoa(len(tk.Messages)))
		}
		return t
	})
}

// chat drives a support view from the terminal: acknowledged messages are
// printed once each, stdin lines are sent.
func (a *app) chat(ctx context.Context, backend support.Backend, ticketID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := support.NewView(backend, support.Options{
		Name:         "contentctl-chat",
		PollInterval: a.v.GetDuration("poll-interval"),
		Clock:        a.opts.Clock,
		Logger:       a.logger,
	})

	var mu sync.Mutex
	seen := make(map[string]bool)
	lastErr := ""
	unsubscribe := view.Subscribe(func(s support.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Active != nil {
			for _, m := range s.Active.Messages {
				if m.Pending || seen[m.ID] {
					continue
				}
				seen[m.ID] = true
				fmt.Fprintf(a.opts.Out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), m.SenderType, m.Text)
			}
		}
		if s.Error != "" && s.Error != lastErr {
			fmt.Fprintf(a.opts.Err, "! %s\n", s.Error)
		}
		lastErr = s.Error
	})
	defer unsubscribe()

	if err := view.Mount(ctx); err != nil {
		return err
	}
	defer view.Unmount()

	if err := view.Select(ctx, ticketID); err != nil {
		return err
	}
	if view.Snapshot().Active == nil {
		return apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "/quit":
				return nil
			}
			if err := view.Send(ctx, line); err != nil && apperrors.IsAuth(err) {
				return err
			}
		}
	}
}
