package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/treediff/internal/store"
	"github.com/loog-project/treediff/pkg/treediff"
)

type fakeSource map[store.RevisionID]any

func (f fakeSource) Restore(_ context.Context, _ string, rev store.RevisionID) (*store.Snapshot, error) {
	obj, ok := f[rev]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.Snapshot{ID: rev, Object: obj}, nil
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHistoryViewOpensRevision(t *testing.T) {
	changes := treediff.Changes{{Type: treediff.ChangeUpdate, Path: treediff.Path{"a"}, OldValue: 1, NewValue: 2}}
	revs := []*store.Revision{
		{ID: 0, Initial: true},
		{ID: 1, PreviousID: 0, Changes: changes},
	}
	src := fakeSource{0: treediff.MapOf("a", 1), 1: treediff.MapOf("a", 2)}

	var v View = NewHistoryView("doc", revs, src)
	v.SetTheme(DarkTheme)
	v.SetSize(80, 10)
	assert.Contains(t, v.View(), "~ a: 1 -> 2")

	// newest first, the cursor starts on revision 1
	v, cmd := v.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(pushViewMsg)
	require.True(t, ok)
	assert.Equal(t, Push, msg.pushType)
	dv, ok := msg.view.(*DiffView)
	require.True(t, ok)
	assert.Equal(t, changes, dv.changes)
	assert.Equal(t, "00000000 → 00000001", dv.Breadcrumb())

	v, _ = v.Update(keyPress("j"))
	v, _ = v.Update(keyPress("j"))
	assert.Equal(t, 1, v.(*HistoryView).cursor)
}

func TestHistoryViewAlertsOnMissingSnapshot(t *testing.T) {
	revs := []*store.Revision{{ID: 0, Initial: true}}
	v := NewHistoryView("doc", revs, fakeSource{})

	_, cmd := v.Update(keyPress("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(alertMsg)
	require.True(t, ok)
	assert.True(t, errors.Is(msg.Err, store.ErrNotFound))
}

func TestSplitLayout(t *testing.T) {
	s := newSplitLayout(0.25)
	s.SetSize(20, 2)
	assert.Equal(t, 5, s.leftWidth)
	assert.Equal(t, 15, s.rightWidth())

	out := s.Render("ab", "cd")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ab   cd             ", lines[0])

	assert.Equal(t, "only", newSplitLayout(2).Render("only", "ignored"), "no size yet")
}

func TestDiffViewToggles(t *testing.T) {
	left := treediff.MapOf("a", 1, "b", "same")
	right := treediff.MapOf("a", 2, "b", "same")
	dv := NewDiffView("left → right", left, right, treediff.Diff(left, right))
	dv.SetSize(80, 10)
	dv.SetTheme(DarkTheme)

	assert.Contains(t, dv.View(), "same")
	dv.Update(keyPress("c"))
	assert.True(t, dv.onlyChanges)
	assert.NotContains(t, dv.View(), "same")

	_, cmd := dv.Update(keyPress("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, Pop, cmd().(pushViewMsg).pushType)
}

func TestRootStackAndQuit(t *testing.T) {
	r := *NewRoot(DarkTheme, NewDiffView("d", nil, nil, nil))
	m, _ := r.Update(tea.WindowSizeMsg{Width: 40, Height: 11})
	r = m.(Root)
	assert.Equal(t, 10, r.Height)

	m, _ = r.Update(NewAlert("x", errors.New("boom")))
	r = m.(Root)
	m, _ = r.Update(pushViewMsg{pushType: Push, view: &AlertView{Title: "x", Err: errors.New("boom")}})
	r = m.(Root)
	require.Len(t, r.ViewStack, 2)
	assert.Contains(t, r.View(), "boom")

	m, _ = r.Update(pushViewMsg{pushType: Pop})
	r = m.(Root)
	m, _ = r.Update(pushViewMsg{pushType: Pop})
	r = m.(Root)
	assert.Len(t, r.ViewStack, 1, "the first view is never popped")

	m, cmd := r.Update(keyPress("q"))
	assert.True(t, m.(Root).ShuttingDown)
	assert.NotNil(t, cmd)
}
