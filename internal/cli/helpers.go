package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/guard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotLoggedIn = errors.New("not logged in, run 'taskboard auth login' first")

// authorize restores the session, lets the guard resolve the profile and
// enters target for the signed-in user. It returns the user's id.
func authorize(cmd *cobra.Command, target func(uid int64) string) (int64, error) {
	ctx := cmd.Context()
	if _, err := application.Start(ctx); err != nil {
		return 0, err
	}

	d, err := application.Guard.Enter(ctx, app.HomePath)
	if err != nil {
		if api.IsNetwork(err) {
			return 0, err
		}
		return 0, fmt.Errorf("session expired, run 'taskboard auth login': %s", api.DisplayMessage(err))
	}
	if d.Kind != guard.Redirect || d.Target == app.LoginPath {
		return 0, errNotLoggedIn
	}
	uid := application.UserID()

	path := target(uid)
	d, err = application.Guard.Enter(ctx, path)
	if err != nil {
		return 0, err
	}
	if d.Kind != guard.PassThrough {
		return 0, fmt.Errorf("cannot open %s", path)
	}
	application.Nav.Navigate(path)
	return uid, nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", what, raw)
	}
	return id, nil
}

// errorMessage is what the user sees for a failed call
func errorMessage(err error) string {
	return api.DisplayMessage(err)
}

// prompter reads answers from the command's input
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, out: cmd.OutOrStdout(), reader: bufio.NewReader(in)}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	text, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// password reads without echo when the input is a terminal
func (p *prompter) password(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func (p *prompter) confirm(question string) bool {
	answer, err := p.line(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
