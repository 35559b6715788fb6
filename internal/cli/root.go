package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/contentdesk/internal/apiclient"
	"github.com/spec-kit/contentdesk/internal/domain"
	"github.com/spec-kit/contentdesk/internal/poller"
	"github.com/spec-kit/contentdesk/internal/service"
	"github.com/spec-kit/contentdesk/internal/session"
	apperrors "github.com/spec-kit/contentdesk/pkg/util"
)

// EnvPrefix prefixes every environment override, e.g. CONTENTCTL_BACKEND_URL.
const EnvPrefix = "CONTENTCTL"

// Options inject the process edges. Zero values use the real terminal,
// a file backed session and the wall clock.
type Options struct {
	Out        io.Writer
	Err        io.Writer
	In         io.Reader
	Storage    session.Storage
	HTTPClient *http.Client
	Clock      poller.Clock
}

type app struct {
	opts     Options
	v        *viper.Viper
	logger   *zap.Logger
	printer  *printer
	user     *session.Store
	admin    *session.Store
	userAPI  *service.Set
	adminAPI *service.Set
}

// Execute runs contentctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	opts = withDefaults(opts)
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(opts.Err, formatError(err))
		return exitCode(err)
	}
	return 0
}

func withDefaults(opts Options) Options {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Clock == nil {
		opts.Clock = poller.RealClock{}
	}
	return opts
}

// NewRootCommand builds the contentctl command tree. Settings resolve as
// flags, then CONTENTCTL_* variables, then the config file.
func NewRootCommand(opts Options) *cobra.Command {
	opts = withDefaults(opts)
	a := &app{opts: opts, v: viper.New()}

	root := &cobra.Command{
		Use:           "contentctl",
		Short:         "Content studio from the terminal",
		Long:          "contentctl signs in to the content backend and works with documents, writing tools and support tickets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.SetIn(opts.In)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default $HOME/.contentdesk/config.yaml)")
	flags.String("backend-url", "http://localhost:5000/api", "backend API base URL")
	flags.StringP("output", "o", string(FormatTable), "output format (table, json, yaml)")
	flags.Duration("timeout", 60*time.Second, "per request timeout")
	flags.String("session-file", "", "session file (default $CONTENTDESK_HOME/session.json)")
	flags.Duration("poll-interval", poller.DefaultInterval, "support chat refresh interval")
	flags.BoolP("verbose", "v", false, "log requests to stderr")
	for _, name := range []string{"config", "backend-url", "output", "timeout", "session-file", "poll-interval", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.documentsCmd(),
		a.ticketsCmd(),
		a.seoCmd(),
		a.translateCmd(),
		a.adminCmd(),
	)
	return root
}

func (a *app) init() error {
	if err := a.readConfig(); err != nil {
		return err
	}

	format, err := parseFormat(a.v.GetString("output"))
	if err != nil {
		return err
	}
	a.printer = &printer{out: a.opts.Out, format: format}
	a.logger = a.newLogger()

	storage := a.opts.Storage
	if storage == nil {
		path := a.v.GetString("session-file")
		if path == "" {
			if path, err = session.DefaultFilePath(); err != nil {
				return err
			}
		}
		if storage, err = session.NewFileStorage(path); err != nil {
			return err
		}
	}
	if secret := a.v.GetString("seal-secret"); secret != "" {
		if storage, err = session.Sealed(storage, secret); err != nil {
			return err
		}
	}

	client := apiclient.New(apiclient.Options{
		BaseURL:    a.v.GetString("backend-url"),
		Timeout:    a.v.GetDuration("timeout"),
		ClientName: "contentctl",
		HTTPClient: a.opts.HTTPClient,
		Logger:     a.logger,
	})

	a.user = session.NewStore(domain.PrincipalUser, storage, nil, a.logger)
	a.admin = session.NewStore(domain.PrincipalAdmin, storage, nil, a.logger)
	a.userAPI = service.NewSet(client.WithTokenSource(a.user))
	a.adminAPI = service.NewSet(client.WithTokenSource(a.admin))
	a.user.SetAuthenticator(a.userAPI.Auth)
	a.admin.SetAuthenticator(a.adminAPI.AdminAuth)
	return nil
}

func (a *app) readConfig() error {
	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
		if home := os.Getenv("CONTENTDESK_HOME"); home != "" {
			a.v.AddConfigPath(home)
		}
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".contentdesk"))
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) newLogger() *zap.Logger {
	if !a.v.GetBool("verbose") {
		return zap.NewNop()
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(a.opts.Err), zapcore.DebugLevel)
	return zap.New(core)
}

// requireUser mirrors the console route guard for terminal commands.
func (a *app) requireUser(ctx context.Context) error {
	if !a.user.IsAuthenticated(ctx) {
		return apperrors.NewAuthError("not signed in, run `contentctl login` first")
	}
	return nil
}

func (a *app) requireAdmin(ctx context.Context) error {
	if !a.admin.IsAuthenticated(ctx) {
		return apperrors.NewAuthError("not signed in as admin, run `contentctl admin login` first")
	}
	return nil
}

func (a *app) say(format string, args ...any) {
	fmt.Fprintf(a.opts.Out, format+"\n", args...)
}

func formatError(err error) string {
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		return "error: " + err.Error()
	}
	msg := fmt.Sprintf("error: %s (%s)", de.Message, de.Code)
	if missing, ok := de.Details["missing"].([]string); ok && len(missing) > 0 {
		msg += "\n  missing: " + strings.Join(missing, ", ")
	}
	return msg
}

func exitCode(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return 2
	case apperrors.IsAuth(err):
		return 3
	case apperrors.IsBackend(err), apperrors.IsNetwork(err):
		return 4
	}
	return 1
}
