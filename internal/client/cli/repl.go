package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"strings"
)

// command is one REPL verb.
type command struct {
	usage   string
	minArgs int
	auth    bool
	run     func(ctx context.Context, args []string) error
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":    {usage: "login", run: a.login},
		"logout":   {usage: "logout", auth: true, run: a.logout},
		"refresh":  {usage: "refresh", auth: true, run: a.refresh},
		"ls":       {usage: "ls [folder]", auth: true, run: a.list},
		"tree":     {usage: "tree", auth: true, run: a.tree},
		"mkdir":    {usage: "mkdir <name> [parent]", minArgs: 1, auth: true, run: a.mkdir},
		"mvdir":    {usage: "mvdir <folder> <name>", minArgs: 2, auth: true, run: a.renameFolder},
		"rmdir":    {usage: "rmdir <folder>", minArgs: 1, auth: true, run: a.rmdir},
		"new":      {usage: "new <folder> [title]", minArgs: 1, auth: true, run: a.newDocument},
		"open":     {usage: "open <document>", minArgs: 1, auth: true, run: a.open},
		"preview":  {usage: "preview <document>", minArgs: 1, auth: true, run: a.preview},
		"rename":   {usage: "rename <document> <title>", minArgs: 2, auth: true, run: a.renameDocument},
		"rm":       {usage: "rm <document>", minArgs: 1, auth: true, run: a.rm},
		"tabs":     {usage: "tabs", auth: true, run: a.listTabs},
		"tab":      {usage: "tab <tab>", minArgs: 1, auth: true, run: a.activate},
		"close":    {usage: "close <tab> [!]", minArgs: 1, auth: true, run: a.closeTab},
		"order":    {usage: "order <tab>...", minArgs: 1, auth: true, run: a.reorderTabs},
		"show":     {usage: "show", auth: true, run: a.show},
		"edit":     {usage: "edit", auth: true, run: a.edit},
		"append":   {usage: "append <text>", minArgs: 1, auth: true, run: a.appendText},
		"title":    {usage: "title <title>", auth: true, run: a.setTitle},
		"save":     {usage: "save <title>", auth: true, run: a.saveVersion},
		"versions": {usage: "versions [document]", auth: true, run: a.versions},
		"version":  {usage: "version <document> <id>", minArgs: 2, auth: true, run: a.version},
		"stats":    {usage: "stats", auth: true, run: a.dashboard},
		"profile":  {usage: "profile", auth: true, run: a.profile},
		"name":     {usage: "name <display name|->", minArgs: 1, auth: true, run: a.displayName},
		"drafts":   {usage: "drafts clear", minArgs: 1, run: a.drafts},
		"settings": {usage: "settings [key value]", run: a.settings},
	}
}

// Run reads commands until EOF, "exit" or "quit". Command failures are
// printed and the loop continues.
func (a *App) Run(ctx context.Context) error {
	cmds := a.commands()
	a.println("PromptHub workspace (type 'help' for commands)")

	for {
		a.printf("ph%s> ", a.status())
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		if quit := a.dispatch(ctx, cmds, strings.Fields(line)); quit || eof {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmds map[string]command, fields []string) (quit bool) {
	if len(fields) == 0 {
		return false
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "exit", "quit":
		a.println("Bye!")
		return true
	case "help":
		a.help(cmds)
		return false
	}

	cmd, ok := cmds[name]
	if !ok {
		a.println("Unknown command:", name)
		return false
	}
	if cmd.auth && !a.loggedIn() {
		a.println("Please login first")
		return false
	}
	if len(args) < cmd.minArgs {
		a.println("Usage:", cmd.usage)
		return false
	}
	a.report(a.runCommand(ctx, name, cmd, args))
	return false
}

// runCommand isolates a panicking command so the session survives it.
func (a *App) runCommand(ctx context.Context, name string, cmd command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("command panicked", "command", name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%s failed unexpectedly", name)
		}
	}()
	return cmd.run(ctx, args)
}

func (a *App) help(cmds map[string]command) {
	var usages []string
	for _, c := range cmds {
		if c.auth && !a.loggedIn() {
			continue
		}
		if !c.auth && c.usage == "login" && a.loggedIn() {
			continue
		}
		usages = append(usages, c.usage)
	}
	sort.Strings(usages)
	a.println("Available commands:")
	for _, u := range usages {
		a.println("  " + u)
	}
	a.println("  exit")
}
