package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/client/preview"
	"github.com/kentxun/anymind/internal/common"
)

const listTimeLayout = "2006-01-02 15:04"

var errUsage = errors.New("usage")

func requireID(args []string, cmd string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s <id>", errUsage, cmd)
	}
	return args[0], nil
}

func notFound(id string) error {
	return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
}

// New reads a note from the terminal and stores it.
func (a *App) New(ctx context.Context) error {
	content, err := GetMultiline(a.reader, "Enter note text, #tags inline", a.out)
	if err != nil {
		return err
	}
	rec, err := a.records.Create(ctx, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s %s\n", rec.ID, strings.Join(rec.Tags(), " "))
	return nil
}

// Edit shows the current text and replaces it with newly typed text.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := requireID(args, "edit")
	if err != nil {
		return err
	}
	rec, err := a.records.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(id)
	}

	fmt.Fprintf(a.out, "Current text:\n%s\n", rec.Content)
	content, err := GetMultiline(a.reader, "Enter new text", a.out)
	if err != nil {
		return err
	}
	if content == rec.Content {
		fmt.Fprintln(a.out, "Unchanged")
		return nil
	}

	updated, err := a.records.Update(ctx, id, content)
	if err != nil {
		return err
	}
	if updated == nil {
		return notFound(id)
	}
	fmt.Fprintf(a.out, "Updated %s\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := requireID(args, "delete")
	if err != nil {
		return err
	}
	rec, err := a.records.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(id)
	}
	if err := a.records.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := requireID(args, "show")
	if err != nil {
		return err
	}
	rec, err := a.records.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(id)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", rec.ID)
	fmt.Fprintf(tw, "Created:\t%s (%s)\n", rec.CreatedAt.Local().Format(listTimeLayout), rec.WeekKey)
	fmt.Fprintf(tw, "Updated:\t%s\n", rec.UpdatedAt.Local().Format(listTimeLayout))
	fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(rec.Tags(), " "))
	fmt.Fprintf(tw, "Sync:\t%s\n", preview.Status(rec.UpdatedAt, rec.LastSyncAt, rec.SyncEnabled))
	if rec.CloudDeletePending {
		fmt.Fprintf(tw, "\tremote copy will be deleted on next sync\n")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%s\n", rec.Content)
	return nil
}

// List prints record summaries matching the options in args.
func (a *App) List(ctx context.Context, args []string) error {
	q, err := parseListArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return a.printList(ctx, q)
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: search <text>", errUsage)
	}
	return a.printList(ctx, models.RecordQuery{Search: strings.Join(args, " ")})
}

func (a *App) printList(ctx context.Context, q models.RecordQuery) error {
	rows, err := a.records.List(ctx, q)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No records")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tSYNC\tPREVIEW\tTAGS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.UpdatedAt.Local().Format(listTimeLayout), r.SyncStatus, r.Preview, strings.Join(r.Tags, " "))
	}
	return tw.Flush()
}

func (a *App) Groups(ctx context.Context, args []string) error {
	mode := models.GroupByWeek
	if len(args) > 0 {
		m, err := models.ParseGroupingMode(args[0])
		if err != nil {
			return fmt.Errorf("%w: groups [day|week|month]", errUsage)
		}
		mode = m
	}

	groups, err := a.records.Groups(ctx, mode)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No records")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%d\n", g.Key, g.Count)
	}
	return tw.Flush()
}

func (a *App) Tags(ctx context.Context) error {
	list, err := a.records.Tags(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No tags")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, t := range list {
		kind := "user"
		if t.IsSystem {
			kind = "system"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", t.Name, kind, t.Count)
	}
	return tw.Flush()
}

func (a *App) Enable(ctx context.Context, args []string) error {
	return a.toggleSync(ctx, args, "enable", true)
}

func (a *App) Disable(ctx context.Context, args []string) error {
	return a.toggleSync(ctx, args, "disable", false)
}

func (a *App) toggleSync(ctx context.Context, args []string, cmd string, enabled bool) error {
	id, err := requireID(args, cmd)
	if err != nil {
		return err
	}
	rec, err := a.records.SetSyncEnabled(ctx, id, enabled)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(id)
	}

	switch {
	case enabled:
		fmt.Fprintf(a.out, "Sync enabled for %s\n", id)
	case rec.CloudDeletePending:
		fmt.Fprintf(a.out, "Sync disabled for %s; the remote copy is removed on next sync\n", id)
	default:
		fmt.Fprintf(a.out, "Sync disabled for %s\n", id)
	}
	return nil
}
