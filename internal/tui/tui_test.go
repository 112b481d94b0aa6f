package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcin-skalski/pr-status/internal/signal"
	"github.com/marcin-skalski/pr-status/internal/status"
)

type staticProvider struct {
	snap  Snapshot
	calls int
}

func (p *staticProvider) GetSnapshot() Snapshot {
	p.calls++
	return p.snap
}

func sampleSnapshot() Snapshot {
	results := []status.Result{
		{Status: status.Ready, Link: "https://github.com/octo/a/pull/1", Title: "Ship it", Message: "octo/a#1"},
		{Status: status.NeedsWork, Link: "https://github.com/octo/a/pull/2", Title: strings.Repeat("long title ", 10), Error: "Changes requested"},
	}
	return Snapshot{
		Timestamp: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		Cycles:    4,
		Mode:      "top 5",
		Results:   results,
		Signal:    signal.FromResults(results, 5),
	}
}

func TestRenderView(t *testing.T) {
	out := renderView(sampleSnapshot(), 0)

	assert.Contains(t, out, "top 5")
	assert.Contains(t, out, "2 PRs")
	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "READY")
	assert.Contains(t, out, "NEEDS_WORK (Changes requested)")
	assert.Contains(t, out, "https://github.com/octo/a/pull/2")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "15:04:05")
}

func TestRenderView_CycleError(t *testing.T) {
	snap := Snapshot{Mode: "top 5", Err: "github down", Signal: signal.FromError(nil, 5)}

	out := renderView(snap, 80)

	assert.Contains(t, out, "Error getting PRs: github down")
	assert.Contains(t, out, "waiting for first poll")
}

func TestRenderResults_Empty(t *testing.T) {
	assert.Contains(t, renderResults(nil, 60), "no open PRs")
}

func TestTitleWidth(t *testing.T) {
	assert.Equal(t, 60, titleWidth(0))
	assert.Equal(t, 30, titleWidth(40))
	assert.Equal(t, 10, titleWidth(5))
	assert.Equal(t, 60, titleWidth(200))
}

func TestModel_Update(t *testing.T) {
	p := &staticProvider{snap: sampleSnapshot()}
	m := NewModel(p, time.Second)
	require.Equal(t, 1, p.calls)

	next, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, p.calls)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, 3, p.calls)

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
