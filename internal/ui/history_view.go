package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/loog-project/treediff/internal/store"
	"github.com/loog-project/treediff/pkg/treediff"
)

// SnapshotSource loads the full document of a revision.
type SnapshotSource interface {
	Restore(ctx context.Context, document string, rev store.RevisionID) (*store.Snapshot, error)
}

// HistoryView lists the revisions of a document, newest first. Opening a
// revision shows it against its predecessor.
type HistoryView struct {
	Base

	document  string
	revisions []*store.Revision
	source    SnapshotSource
	cursor    int
	layout    *splitLayout
}

var _ View = (*HistoryView)(nil)

func NewHistoryView(document string, revisions []*store.Revision, source SnapshotSource) *HistoryView {
	newestFirst := make([]*store.Revision, len(revisions))
	for i, rev := range revisions {
		newestFirst[len(revisions)-1-i] = rev
	}
	return &HistoryView{
		document:  document,
		revisions: newestFirst,
		source:    source,
		layout:    newSplitLayout(0.45),
	}
}

func (hv *HistoryView) SetSize(width, height int) {
	hv.Base.SetSize(width, height)
	hv.layout.SetSize(width, height)
}

func (hv *HistoryView) Update(msg tea.Msg) (View, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok || len(hv.revisions) == 0 {
		return hv, nil
	}
	switch {
	case key.Matches(k, keys.Up):
		hv.cursor = max(0, hv.cursor-1)
	case key.Matches(k, keys.Down):
		hv.cursor = min(len(hv.revisions)-1, hv.cursor+1)
	case key.Matches(k, keys.Top):
		hv.cursor = 0
	case key.Matches(k, keys.Bottom):
		hv.cursor = len(hv.revisions) - 1
	case key.Matches(k, keys.Open):
		return hv, hv.open(hv.revisions[hv.cursor])
	}
	return hv, nil
}

func (hv *HistoryView) open(rev *store.Revision) tea.Cmd {
	ctx := context.Background()
	right, err := hv.source.Restore(ctx, hv.document, rev.ID)
	if err != nil {
		return PushAlert("load revision "+rev.ID.String(), err)
	}
	left := right
	if !rev.Initial {
		if left, err = hv.source.Restore(ctx, hv.document, rev.PreviousID); err != nil {
			return PushAlert("load revision "+rev.PreviousID.String(), err)
		}
	}
	title := fmt.Sprintf("%s → %s", rev.PreviousID, rev.ID)
	if rev.Initial {
		title = rev.ID.String()
	}
	return PushChangeView(Push, NewDiffView(title, left.Object, right.Object, rev.Changes))
}

func (hv *HistoryView) View() string {
	if len(hv.revisions) == 0 {
		return hv.Theme.MutedTextStyle.Render("no revisions")
	}
	return hv.layout.Render(hv.renderList(), hv.renderChanges(hv.revisions[hv.cursor]))
}

// renderChanges lists the changes of [rev] next to the revision list.
func (hv *HistoryView) renderChanges(rev *store.Revision) string {
	if rev.Initial {
		return hv.Theme.MutedTextStyle.Render("initial revision, enter to show the document")
	}
	lines := make([]string, 0, max(0, min(len(rev.Changes), hv.Height)))
	for _, c := range rev.Changes {
		if len(lines) == hv.Height {
			break
		}
		style := hv.Theme.UpdatedTextStyle
		switch c.Type {
		case treediff.ChangeAdd:
			style = hv.Theme.AddedTextStyle
		case treediff.ChangeDelete:
			style = hv.Theme.DeletedTextStyle
		}
		lines = append(lines, style.Render(c.String()))
	}
	return strings.Join(lines, "\n")
}

func (hv *HistoryView) renderList() string {
	// keep the cursor in the window
	height := max(1, hv.Height)
	start := 0
	if hv.cursor >= height {
		start = hv.cursor - height + 1
	}
	end := min(len(hv.revisions), start+height)

	var bob strings.Builder
	for i := start; i < end; i++ {
		rev := hv.revisions[i]
		arrow := "  "
		if i == hv.cursor {
			arrow = hv.Theme.ListCurrentArrowTextStyle.Render("→ ")
		}
		changes := hv.Theme.MutedTextStyle.Render("initial")
		if !rev.Initial {
			changes = renderCounts(hv.Theme, rev.Changes)
		}
		fmt.Fprintf(&bob, "%s%s  %-14s  %s  %s",
			arrow,
			hv.Theme.ListRevisionTextStyle.Render(rev.ID.String()),
			humanize.Time(rev.Time),
			changes,
			hv.Theme.ListSourceTextStyle.Render(rev.Source),
		)
		if i < end-1 {
			bob.WriteByte('\n')
		}
	}
	return bob.String()
}

func (hv *HistoryView) KeyMap() string {
	return NewShortcuts(keys.Up, keys.Down, keys.Open, keys.Quit).Render(hv.Theme)
}

func (hv *HistoryView) Breadcrumb() string {
	return hv.document
}

func (hv *HistoryView) Counts() string {
	return humanize.Comma(int64(len(hv.revisions))) + " revisions"
}
