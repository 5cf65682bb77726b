package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"prompthub/internal/client/workspace"
	"prompthub/internal/domain/models/docsystem"
)

func (a *App) login(ctx context.Context, _ []string) error {
	email, err := ReadLine(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := ReadPassword(a.in, a.out)
	if err != nil {
		return err
	}

	user, err := a.ws.Login(ctx, email, password).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Signed in as %s\n", user.Email)
	if n := len(a.ws.Tabs().Tabs()); n > 0 {
		a.printf("Restored %d tab(s)\n", n)
	}
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.ws.Logout(ctx).Err(); err != nil {
		return err
	}
	a.println("Signed out")
	return nil
}

func (a *App) refresh(ctx context.Context, _ []string) error {
	at, err := a.ws.Refresh(ctx).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Workspace refreshed at %s\n", at.Local().Format("15:04:05"))
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	snap := a.ws.Snapshot()
	if len(args) == 0 {
		for _, f := range snap.RootFolders() {
			a.printf("%s/  %s\n", f.Name, f.ID)
		}
		return nil
	}

	folderID := args[0]
	docs, err := a.ws.LoadFolder(ctx, folderID).Unwrap()
	if err != nil {
		return err
	}
	for _, f := range snap.Children(folderID) {
		a.printf("%s/  %s\n", f.Name, f.ID)
	}
	for _, d := range docs {
		a.printf("%s  %s\n", d.DisplayTitle(), d.ID)
	}
	return nil
}

func (a *App) tree(ctx context.Context, _ []string) error {
	tree, err := a.ws.Tree(ctx).Unwrap()
	if err != nil {
		return err
	}
	var walk func(nodes []*docsystem.FolderTreeNode, depth int)
	walk = func(nodes []*docsystem.FolderTreeNode, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, n := range nodes {
			a.printf("%s%s/\n", indent, n.Name)
			walk(n.Folders, depth+1)
			for _, d := range n.Documents {
				a.printf("%s  %s\n", indent, docsystem.DisplayTitle(d.Title))
			}
		}
	}
	walk(tree.Folders, 0)
	return nil
}

func (a *App) mkdir(ctx context.Context, args []string) error {
	var parent *string
	if len(args) > 1 {
		parent = &args[1]
	}
	f, err := a.ws.CreateFolder(ctx, args[0], parent).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Created folder %s (%s)\n", f.Name, f.ID)
	return nil
}

func (a *App) renameFolder(ctx context.Context, args []string) error {
	f, err := a.ws.RenameFolder(ctx, args[0], strings.Join(args[1:], " ")).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Renamed folder to %s\n", f.Name)
	return nil
}

func (a *App) rmdir(ctx context.Context, args []string) error {
	del, err := a.ws.DeleteFolder(ctx, args[0]).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Deleted %d folder(s) and %d document(s)\n", len(del.FolderIDs), len(del.DocumentIDs))
	return nil
}

func (a *App) newDocument(ctx context.Context, args []string) error {
	var title *string
	if len(args) > 1 {
		t := strings.Join(args[1:], " ")
		title = &t
	}
	doc, err := a.ws.CreateDocument(ctx, args[0], title).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Created %s (%s)\n", docsystem.DisplayTitle(doc.TitleOrEmpty()), doc.ID)
	return nil
}

func (a *App) open(ctx context.Context, args []string) error {
	if _, err := a.ws.Open(ctx, args[0]).Unwrap(); err != nil {
		return err
	}
	return a.show(ctx, nil)
}

func (a *App) preview(ctx context.Context, args []string) error {
	if _, err := a.ws.Preview(ctx, args[0]).Unwrap(); err != nil {
		return err
	}
	return a.show(ctx, nil)
}

func (a *App) renameDocument(ctx context.Context, args []string) error {
	doc, err := a.ws.RenameDocument(ctx, args[0], strings.Join(args[1:], " ")).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Renamed to %s\n", doc.TitleOrEmpty())
	return nil
}

func (a *App) rm(ctx context.Context, args []string) error {
	if err := a.ws.DeleteDocument(ctx, args[0]).Err(); err != nil {
		return err
	}
	a.println("Deleted")
	return nil
}

func (a *App) listTabs(_ context.Context, _ []string) error {
	active, _ := a.ws.Tabs().Active()
	for _, t := range a.ws.Tabs().Tabs() {
		marker := " "
		if t.ID == active.ID {
			marker = ">"
		}
		flags := ""
		if t.IsPreview {
			flags += " (preview)"
		}
		if t.IsDirty {
			flags += " *"
		}
		a.printf("%s %s  %s%s\n", marker, t.ID, t.Title, flags)
	}
	return nil
}

func (a *App) activate(ctx context.Context, args []string) error {
	if _, err := a.ws.ActivateTab(ctx, args[0]).Unwrap(); err != nil {
		return err
	}
	if a.ws.Editor().DocID() != "" {
		return a.show(ctx, nil)
	}
	return nil
}

func (a *App) reorderTabs(ctx context.Context, args []string) error {
	if err := a.ws.ReorderTabs(args).Err(); err != nil {
		return err
	}
	return a.listTabs(ctx, nil)
}

func (a *App) closeTab(ctx context.Context, args []string) error {
	force := len(args) > 1 && args[1] == "!"
	return a.ws.CloseTab(ctx, args[0], force).Err()
}

func (a *App) show(_ context.Context, _ []string) error {
	v := a.ws.Editor().View()
	if v.DocID == "" {
		return workspace.ErrNoDocument
	}
	if v.Err != nil {
		return v.Err
	}
	dirty := ""
	if v.Dirty {
		dirty = " (unsaved)"
	}
	a.printf("# %s%s [%s]\n", docsystem.DisplayTitle(v.Title), dirty, v.State)
	if !v.LastSavedAt.IsZero() {
		a.printf("saved %s\n", v.LastSavedAt.Local().Format("2006-01-02 15:04:05"))
	}
	a.println(v.Content)
	return nil
}

func (a *App) edit(ctx context.Context, _ []string) error {
	if a.ws.Editor().DocID() == "" {
		return workspace.ErrNoDocument
	}
	content, err := ReadMultiline(a.in, "Enter the new content", a.out)
	if err != nil {
		return err
	}
	return a.ws.Edit(ctx, content).Err()
}

func (a *App) appendText(ctx context.Context, args []string) error {
	v := a.ws.Editor().View()
	text := strings.Join(args, " ")
	if v.Content != "" {
		text = v.Content + "\n" + text
	}
	return a.ws.Edit(ctx, text).Err()
}

func (a *App) setTitle(ctx context.Context, args []string) error {
	return a.ws.SetTitle(ctx, strings.Join(args, " ")).Err()
}

func (a *App) saveVersion(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	if title == "" {
		title = a.ws.Editor().View().Title
	}
	id, err := a.ws.SaveVersion(ctx, title).Unwrap()
	if err != nil {
		return err
	}
	a.printf("Saved version %d\n", id)
	return nil
}

func (a *App) versions(ctx context.Context, args []string) error {
	docID := a.ws.Editor().DocID()
	if len(args) > 0 {
		docID = args[0]
	}
	if docID == "" {
		return workspace.ErrNoDocument
	}
	vs, err := a.ws.Versions(ctx, docID).Unwrap()
	if err != nil {
		return err
	}
	if len(vs) == 0 {
		a.println("No versions yet")
	}
	for _, v := range vs {
		a.printf("%d  %s  %s\n", v.ID, v.CreatedAt.Local().Format("2006-01-02 15:04"), v.Title)
	}
	return nil
}

func (a *App) version(ctx context.Context, args []string) error {
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version id %q", args[1])
	}
	v, err := a.ws.Version(ctx, args[0], id).Unwrap()
	if err != nil {
		return err
	}
	a.printf("# %s (version %d)\n", v.Title, v.ID)
	a.println(v.Content)
	return nil
}

func (a *App) dashboard(ctx context.Context, _ []string) error {
	m, err := a.ws.Dashboard(ctx).Unwrap()
	if err != nil {
		return err
	}
	a.printf("%d folder(s), %d document(s), %d version(s)\n", m.TotalFolders, m.TotalDocuments, m.TotalVersions)
	for _, d := range m.RecentlyUpdated {
		a.printf("  %s  %s\n", d.UpdatedAt.Local().Format("2006-01-02 15:04"), d.Title)
	}
	return nil
}

func (a *App) profile(ctx context.Context, _ []string) error {
	p, err := a.ws.Profile(ctx).Unwrap()
	if err != nil {
		return err
	}
	name := "(none)"
	if p.DisplayName != nil {
		name = *p.DisplayName
	}
	a.printf("%s  display name: %s\n", p.Email, name)
	return nil
}

func (a *App) displayName(ctx context.Context, args []string) error {
	var name *string
	if args[0] != "-" {
		n := strings.Join(args, " ")
		name = &n
	}
	return a.ws.SetDisplayName(ctx, name).Err()
}

func (a *App) drafts(ctx context.Context, args []string) error {
	if args[0] != "clear" {
		return errors.New("usage: drafts clear")
	}
	if err := a.ws.DiscardDrafts(ctx).Err(); err != nil {
		return err
	}
	a.println("Local drafts discarded")
	return nil
}

func (a *App) settings(_ context.Context, args []string) error {
	s := a.ws.Settings()
	if len(args) >= 2 {
		value := strings.Join(args[1:], " ")
		switch args[0] {
		case "preview_on_select":
			s.PreviewOnSelect = value == "true"
		case "word_wrap":
			s.WordWrap = value == "true"
		case "theme":
			s.Theme = value
		case "font_size":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("font_size must be a positive number")
			}
			s.FontSize = n
		default:
			return fmt.Errorf("unknown setting %q", args[0])
		}
		saved, err := a.ws.SaveSettings(s).Unwrap()
		if err != nil {
			return err
		}
		s = saved
	}
	a.printf("preview_on_select=%t word_wrap=%t theme=%s font_size=%d\n", s.PreviewOnSelect, s.WordWrap, s.Theme, s.FontSize)
	return nil
}
