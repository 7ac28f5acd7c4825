// Package cli is the lifelinectl command tree. Every command goes through the
// same client pipeline the dashboard uses, so an expired access token is
// refreshed transparently and a dead session ends with a login hint.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/andriandrian/lifeline-admin/internal/client"
	"github.com/andriandrian/lifeline-admin/internal/config"
	"github.com/andriandrian/lifeline-admin/internal/session"
	"github.com/andriandrian/lifeline-admin/internal/table"
)

// App carries what every command needs.
type App struct {
	Client      *client.Client
	Log         logrus.FieldLogger
	PageSize    int
	ReloadDelay time.Duration

	out io.Writer
	in  *bufio.Reader
}

// New builds the client from cfg. Session cookies live in store.
func New(cfg *config.ClientConfig, store session.Store, in io.Reader, out io.Writer, log logrus.FieldLogger) *App {
	a := &App{
		Log:         log,
		PageSize:    cfg.Table.PageSize,
		ReloadDelay: cfg.Table.ReloadDelay,
		out:         out,
		in:          bufio.NewReader(in),
	}
	a.Client = client.New(cfg.API.BaseURL, store,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(log),
		client.WithNavigator(client.NavigatorFunc(a.navigate)),
	)
	return a
}

// navigate is where the browser would change page. A terminal can only tell
// the operator what to run next.
func (a *App) navigate(route string) {
	if route == client.LoginRoute {
		fmt.Fprintln(a.out, mutedStyle.Render("Run `lifelinectl login` to sign in again."))
	}
}

func (a *App) Success(message string) {
	fmt.Fprintln(a.out, successStyle.Render(message))
}

func (a *App) Error(err error) {
	fmt.Fprintln(a.out, errorStyle.Render(Message(err)))
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a y/N question on the terminal. Anything but y or yes declines,
// and so does a closed input.
func (a *App) Confirm(_ context.Context, prompt string) (bool, error) {
	answer, err := a.readLine(prompt + " [y/N] ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

type assumeYes struct{}

func (assumeYes) Confirm(context.Context, string) (bool, error) { return true, nil }

func (a *App) confirmer(yes bool) table.Confirmer {
	if yes {
		return assumeYes{}
	}
	return a
}

// Message is the line printed for a failed command. API failures get the
// operator-facing notice; local errors such as bad arguments are printed as is.
func Message(err error) string {
	var httpErr *client.HTTPError
	if client.Classify(err) != client.KindRemote || errors.As(err, &httpErr) {
		return client.Notice(err)
	}
	return err.Error()
}

// errReported marks a failure the command already printed.
var errReported = errors.New("already reported")

// Execute runs root and reports a failure on errOut. It returns the exit code.
func Execute(ctx context.Context, root *cobra.Command, errOut io.Writer) int {
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case !errors.Is(err, errReported):
		fmt.Fprintln(errOut, errorStyle.Render("Error: "+Message(err)))
	}
	return 1
}
