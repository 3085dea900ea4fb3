package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/treediff/internal/store"
	"github.com/loog-project/treediff/internal/ui"
	"github.com/loog-project/treediff/pkg/changefmt"
)

var historyCmd = &cobra.Command{
	Use:   "history [FLAGS] [DOCUMENT]",
	Short: "List tracked documents or the revisions of one",
	Long: `Without arguments, list every document in the history database.
With a DOCUMENT, list its revisions, print the changes of one revision with
--show, or browse them with --interactive.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: documentCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runListDocuments(cmd.Context(), cmd.OutOrStdout())
		}
		return runHistory(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("show", "",
		"Print the changes of this revision (hexadecimal ID as listed)")
	historyCmd.Flags().StringP("output", "o", string(changefmt.FormatText),
		"Format of the changes printed by --show")
	historyCmd.Flags().Bool("dump", false,
		"Dump the raw revision records")
	historyCmd.Flags().BoolP("interactive", "i", false,
		"Browse the revisions in a terminal UI")

	for _, name := range []string{"show", "output", "dump", "interactive"} {
		mustBind(name, viper.BindPFlag("history."+name, historyCmd.Flags().Lookup(name)))
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func runListDocuments(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, hs, closeHistory, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	docs, err := hs.Documents(ctx)
	if err != nil {
		return err
	}
	t := newTable("DOCUMENT", "REVISIONS", "LAST CHANGE")
	for _, doc := range docs {
		latest, err := hs.GetLatestRevision(ctx, doc)
		if err != nil {
			return err
		}
		rev, err := hs.GetRevision(ctx, doc, latest)
		if err != nil {
			return err
		}
		t.Row(doc, humanize.Comma(int64(latest)+1), humanize.Time(rev.Time))
	}
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func runHistory(ctx context.Context, w io.Writer, document string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tracker, hs, closeHistory, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	if show := viper.GetString("history.show"); show != "" {
		id, err := strconv.ParseUint(show, 16, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", store.ErrInvalidRevision, show)
		}
		format, err := changefmt.ParseFormat(viper.GetString("history.output"))
		if err != nil {
			return err
		}
		snap, rev, err := hs.Get(ctx, document, store.RevisionID(id))
		if err != nil {
			return fmt.Errorf("loading revision %s of %s: %w", show, document, err)
		}
		if viper.GetBool("history.dump") {
			spew.Fdump(w, rev, snap)
			return nil
		}
		return changefmt.Write(w, rev.Changes, format)
	}

	revisions, err := tracker.History(ctx, document)
	if err != nil {
		return fmt.Errorf("loading history of %s: %w", document, err)
	}

	switch {
	case viper.GetBool("history.interactive"):
		return ui.Run(ui.NewHistoryView(document, revisions, tracker))
	case viper.GetBool("history.dump"):
		spew.Fdump(w, revisions)
		return nil
	}

	t := newTable("REVISION", "PREVIOUS", "TIME", "CHANGES", "SOURCE")
	for _, rev := range revisions {
		previous, changes := "", "initial"
		if !rev.Initial {
			added, deleted, updated := rev.Changes.Count()
			previous = rev.PreviousID.String()
			changes = fmt.Sprintf("+%d -%d ~%d", added, deleted, updated)
		}
		t.Row(rev.ID.String(), previous, humanize.Time(rev.Time), changes, rev.Source)
	}
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
