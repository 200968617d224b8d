// Command portfolio-admin manages the portfolio's projects from a terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/portfolio-site-backend/admin"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/client"
	"github.com/rpupo63/portfolio-site-backend/errs"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every command.
type app struct {
	settingsPath string
	server       string
	verbose      bool

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: bufio.NewReader(in), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "portfolio-admin",
		Short:         "Manage portfolio projects",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.verbose {
				log.Logger = log.Logger.Level(zerolog.DebugLevel)
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.settingsPath, "config", defaultSettingsPath(), "settings file")
	root.PersistentFlags().StringVar(&a.server, "server", "", "API base URL (overrides the settings file)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.listCmd(),
		a.createCmd(),
		a.editCmd(),
		a.reorderCmd(),
		a.deleteCmd(),
		a.hashPasswordCmd(),
	)
	return root
}

func (a *app) settings() (Settings, error) {
	s, err := loadSettings(a.settingsPath)
	if err != nil {
		return s, err
	}
	if a.server != "" {
		s.Server = a.server
	}
	return s, nil
}

// session holds a controller wired to the API and the stored token.
type session struct {
	ctrl *admin.Controller
	stop func()
}

func (a *app) openSession(ctx context.Context, confirm admin.ConfirmFunc) (*session, error) {
	s, err := a.settings()
	if err != nil {
		return nil, err
	}

	identity, err := auth.PeekIdentity(s.Token, time.Now())
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring unreadable stored token")
		identity = nil
	}

	api := client.New(s.Server, client.WithToken(s.Token))
	notifier := &cliNotifier{out: a.out, errOut: a.errOut}
	ctrl := admin.New(api, api,
		admin.WithNotifier(notifier),
		admin.WithConfirm(confirm),
	)
	stop := ctrl.Watch(ctx, auth.NewSession(identity))

	if ctrl.State() == admin.StateUnauthenticated {
		stop()
		return nil, fmt.Errorf("%w: run `portfolio-admin login` first", errs.ErrNotAuthenticated)
	}
	if notifier.lastErr != nil {
		stop()
		if errs.IsNotAuthenticated(notifier.lastErr) {
			return nil, fmt.Errorf("%w: session expired, run `portfolio-admin login`", errs.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("could not load projects from %s: %w", s.Server, notifier.lastErr)
	}
	return &session{ctrl: ctrl, stop: stop}, nil
}

// prompt prints label and reads one trimmed line.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) confirmer(assumeYes bool) admin.ConfirmFunc {
	if assumeYes {
		return func(string) bool { return true }
	}
	return func(question string) bool {
		answer, err := a.prompt(question + " [y/N] ")
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}
}

type cliNotifier struct {
	out     io.Writer
	errOut  io.Writer
	lastErr error
}

func (n *cliNotifier) Notify(notice admin.Notice) {
	if notice.Level == admin.LevelError {
		if notice.Err != nil {
			n.lastErr = notice.Err
			fmt.Fprintf(n.errOut, "error: %s (%v)\n", notice.Message, notice.Err)
			return
		}
		fmt.Fprintf(n.errOut, "error: %s\n", notice.Message)
		return
	}
	fmt.Fprintln(n.out, notice.Message)
}
