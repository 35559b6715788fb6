package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/session"
)

func (a *app) loginCmd() *cobra.Command {
	return a.signInCmd("login <email>", "Sign in as a user", func() *session.Store { return a.user })
}

func (a *app) signInCmd(use, short string, store func() *session.Store) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". The password comes from --password, CONTENTCTL_PASSWORD or the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := domain.Credentials{Email: args[0], Password: a.password(password)}
			sess, err := store().Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			a.say("Signed in as %s <%s>", sess.Principal.DisplayName(), sess.Principal.Email())
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func (a *app) password(flag string) string {
	if flag != "" {
		return flag
	}
	if env := a.v.GetString("password"); env != "" {
		return env
	}
	line, _ := bufio.NewReader(a.opts.In).ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) registerCmd() *cobra.Command {
	var reg domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg.Password = a.password(reg.Password)
			sess, err := a.user.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			a.say("Welcome, %s", sess.Principal.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&reg.Name, "name", "", "display name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "account password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return a.signOutCmd("logout", "Sign out the user session", func() *session.Store { return a.user })
}

func (a *app) signOutCmd(use, short string, store func() *session.Store) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := store().Logout(cmd.Context()); err != nil {
				return err
			}
			a.say("Signed out")
			return nil
		},
	}
}

type whoami struct {
	User  *domain.Principal `json:"user"`
	Admin *domain.Principal `json:"admin"`
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user and admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var out whoami
			var err error
			if out.User, err = a.user.CurrentPrincipal(ctx); err != nil {
				return err
			}
			if out.Admin, err = a.admin.CurrentPrincipal(ctx); err != nil {
				return err
			}
			return a.printer.print(out, func() table {
				t := table{headers: []string{"KIND", "NAME", "EMAIL"}}
				for _, p := range []*domain.Principal{out.User, out.Admin} {
					if p != nil {
						t.add(string(p.Kind), orDash(p.DisplayName()), orDash(p.Email()))
					}
				}
				return t
			})
		},
	}
}

