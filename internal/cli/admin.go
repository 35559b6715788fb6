package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/service"
	"github.com/spec-kit/contentdesk/internal/session"
	"github.com/spec-kit/contentdesk/internal/support"
)

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration",
	}
	admin := func() *session.Store { return a.admin }
	cmd.AddCommand(
		a.signInCmd("login <email>", "Sign in as an admin", admin),
		a.signOutCmd("logout", "Sign out the admin session", admin),
		a.adminUsersCmd(),
		a.adminTicketsCmd(),
	)
	return cmd
}

func (a *app) adminUsersCmd() *cobra.Command {
	var q service.UserQuery
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireAdmin(ctx); err != nil {
				return err
			}
			page, err := a.adminAPI.Users.GetAllUsers(ctx, q.Search, q.Status, q.Subscription, q.Page, q.Limit)
			if err != nil {
				return err
			}
			return a.printer.print(page, func() table {
				t := table{headers: []string{"ID", "NAME", "EMAIL", "STATUS", "PLAN", "CREDITS"}}
				for _, u := range page.Users {
					plan := "free"
					if u.Plan != nil && u.Plan.Name != "" {
						plan = u.Plan.Name
					}
					t.add(u.ID, u.Name, u.Email, orDash(string(u.Status)), plan, itoa(u.Credits))
				}
				return t
			})
		},
	}
	cmd.Flags().StringVar(&q.Search, "search", "", "match name or email")
	cmd.Flags().StringVar(&q.Status, "status", "", "active, inactive or suspended")
	cmd.Flags().StringVar(&q.Subscription, "subscription", "", "plan name")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 10, "page size")
	return cmd
}

func (a *app) adminTicketsCmd() *cobra.Command {
	var filter service.AdminTicketFilter
	var status string
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Support queue",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List tickets across users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireAdmin(ctx); err != nil {
				return err
			}
			filter.Status = domain.TicketStatus(status)
			tickets, err := a.adminAPI.AdminTickets.List(ctx, filter)
			if err != nil {
				return err
			}
			return a.printTickets(tickets)
		},
	}
	list.Flags().StringVar(&status, "status", "", "open, pending or closed")
	list.Flags().StringVar(&filter.Search, "search", "", "match subject or requester")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "reply <id> <message>",
			Short: "Answer a ticket",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := a.requireAdmin(ctx); err != nil {
					return err
				}
				if _, err := a.adminAPI.AdminTickets.SendMessage(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
					return err
				}
				a.say("Replied to %s", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "status <id> <open|pending|closed>",
			Short: "Change a ticket's status",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := a.requireAdmin(ctx); err != nil {
					return err
				}
				ticket, err := a.adminAPI.AdminTickets.UpdateStatus(ctx, args[0], domain.TicketStatus(args[1]))
				if err != nil {
					return err
				}
				a.say("Ticket %s is %s", ticket.ID, ticket.Status)
				return nil
			},
		},
		&cobra.Command{
			Use:   "chat <id>",
			Short: "Open a live chat on a ticket as support",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := a.requireAdmin(ctx); err != nil {
					return err
				}
				return a.chat(ctx, support.AdminBackend{Tickets: a.adminAPI.AdminTickets}, args[0])
			},
		},
	)
	return cmd
}
