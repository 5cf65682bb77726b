package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"prompthub/internal/client/tabs"
	"prompthub/internal/client/transition"
	"prompthub/internal/client/workspace"
	"prompthub/internal/domain"
)

// App drives a workspace from line-oriented input.
type App struct {
	ws     *workspace.Workspace
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewApp wires an App to ws, reading commands from in and printing to out.
func NewApp(ws *workspace.Workspace, in io.Reader, out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{ws: ws, in: bufio.NewReader(in), out: out, logger: logger}
}

func (a *App) loggedIn() bool {
	_, ok := a.ws.User()
	return ok
}

func (a *App) status() string {
	u, ok := a.ws.User()
	if !ok {
		return ""
	}
	s := u.Email
	v := a.ws.Editor().View()
	if v.DocID != "" {
		title := v.Title
		if strings.TrimSpace(title) == "" {
			title = v.DocID
		}
		s += " " + title
		if v.Dirty {
			s += "*"
		}
	}
	return "(" + s + ")"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// describe turns an action error into the message shown to the user.
func describe(err error) string {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		return conflict.Message
	case errors.Is(err, tabs.ErrConfirmClose):
		return "this new document has unsaved changes; use \"close <tab> !\" to discard it"
	case errors.Is(err, transition.ErrTransitionInProgress):
		return "the document is still loading"
	case errors.Is(err, workspace.ErrNoDocument):
		return "no document is open"
	case errors.Is(err, domain.ErrUnauthorized):
		return "not signed in: " + err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	default:
		return err.Error()
	}
}

// report prints err, if any, and reports whether there was one.
func (a *App) report(err error) bool {
	if err == nil || errors.Is(err, transition.ErrStaleResult) {
		return false
	}
	a.println("error:", describe(err))
	return true
}
