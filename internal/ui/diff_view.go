package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loog-project/treediff/pkg/diffpreview"
	"github.com/loog-project/treediff/pkg/treediff"
)

// DiffView shows the merged tree of two documents with every change marked.
type DiffView struct {
	Base

	title    string
	tree     *diffpreview.AnnotatedNode
	changes  treediff.Changes
	viewport viewport.Model

	onlyChanges bool
	highlight   bool
}

var _ View = (*DiffView)(nil)

func NewDiffView(title string, left, right any, changes treediff.Changes) *DiffView {
	return &DiffView{
		title:     title,
		tree:      diffpreview.AnnotateChanges(left, right, changes),
		changes:   changes,
		viewport:  viewport.New(10, 10),
		highlight: true,
	}
}

func (dv *DiffView) SetSize(width, height int) {
	dv.Base.SetSize(width, height)
	dv.viewport.Width = width
	dv.viewport.Height = height
}

func (dv *DiffView) SetTheme(theme Theme) {
	dv.Base.SetTheme(theme)
	dv.render()
}

func (dv *DiffView) render() {
	opts := diffpreview.DefaultRenderOptions
	opts.OnlyChanges = dv.onlyChanges
	opts.EnableBackgroundHighlight = dv.highlight

	content := diffpreview.RenderYAML(dv.tree, dv.Theme.Preview, opts)
	if len(dv.changes) == 0 {
		content = dv.Theme.MutedTextStyle.Render("(no differences)") + "\n" + content
	}
	dv.viewport.SetContent(content)
}

func (dv *DiffView) Update(msg tea.Msg) (View, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return dv, nil
	}
	switch {
	case key.Matches(k, keys.Back):
		return dv, PushChangeView(Pop, nil)
	case key.Matches(k, keys.ToggleChanges):
		dv.onlyChanges = !dv.onlyChanges
		dv.render()
		dv.viewport.GotoTop()
	case key.Matches(k, keys.ToggleHighlight):
		dv.highlight = !dv.highlight
		dv.render()
	default:
		ScrollViewport(k, &dv.viewport)
	}
	return dv, nil
}

func (dv *DiffView) View() string {
	return dv.viewport.View()
}

func (dv *DiffView) KeyMap() string {
	return NewShortcuts(keys.Up, keys.Down, keys.ToggleChanges, keys.ToggleHighlight, keys.Back, keys.Quit).
		Render(dv.Theme)
}

func (dv *DiffView) Breadcrumb() string {
	return dv.title
}

func (dv *DiffView) Counts() string {
	return renderCounts(dv.Theme, dv.changes) +
		dv.Theme.MutedTextStyle.Render(fmt.Sprintf(" %3.f%%", dv.viewport.ScrollPercent()*100))
}

func renderCounts(theme Theme, changes treediff.Changes) string {
	added, deleted, updated := changes.Count()
	return theme.AddedTextStyle.Render(fmt.Sprintf("+%d", added)) + " " +
		theme.DeletedTextStyle.Render(fmt.Sprintf("-%d", deleted)) + " " +
		theme.UpdatedTextStyle.Render(fmt.Sprintf("~%d", updated))
}
