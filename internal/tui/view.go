package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/marcin-skalski/pr-status/internal/signal"
	"github.com/marcin-skalski/pr-status/internal/status"
)

const maxTitleWidth = 60

func renderView(snap Snapshot, width int) string {
	var b strings.Builder

	header := fmt.Sprintf("pr-status │ %s │ %d PRs │ cycle %d", snap.Mode, len(snap.Results), snap.Cycles)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("⌨ Keys"))
	b.WriteString("\n")
	b.WriteString(renderKeys(snap.Signal.Points))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("🔀 Pull Requests"))
	b.WriteString("\n")
	if snap.Err != "" {
		b.WriteString(errorStyle.Render("  " + snap.Signal.Message + ": " + snap.Err))
		b.WriteString("\n")
	} else {
		b.WriteString(renderResults(snap.Results, titleWidth(width)))
	}

	footer := "waiting for first poll │ q:quit r:refresh"
	if !snap.Timestamp.IsZero() {
		footer = fmt.Sprintf("Last updated: %s │ q:quit r:refresh", snap.Timestamp.Format("15:04:05"))
	}
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

func renderKeys(points []signal.Point) string {
	if len(points) == 0 {
		return emptyStyle.Render("  (no keys)")
	}
	keys := make([]string, 0, len(points))
	for i, p := range points {
		keys = append(keys, keyStyle(p).Render(fmt.Sprintf("%d %s", i+1, effectGlyph(p.Effect))))
	}
	return "  " + strings.Join(keys, " ")
}

func renderResults(results []status.Result, maxTitle int) string {
	if len(results) == 0 {
		return emptyStyle.Render("  (no open PRs)") + "\n"
	}

	var b strings.Builder
	for i, r := range results {
		prefix := "├─"
		if i == len(results)-1 {
			prefix = "└─"
		}

		title := r.Title
		if title == "" {
			title = r.Message
		}
		if runewidth.StringWidth(title) > maxTitle {
			title = runewidth.Truncate(title, maxTitle-3, "...")
		}

		line := fmt.Sprintf("%s %d. %s", prefix, i+1, title)
		b.WriteString(prStyle.Render(line))
		b.WriteString("\n")

		childPrefix := "│ "
		if i == len(results)-1 {
			childPrefix = "  "
		}
		state := fmt.Sprintf("%s   %s %s", childPrefix, statusIcon(r.Status), r.Status)
		if r.Error != "" {
			state += " (" + r.Error + ")"
		}
		b.WriteString(statusStyle(r.Status).Render(state))
		b.WriteString("\n")

		if r.Link != "" {
			b.WriteString(childPrefix + "   " + linkStyle.Render(r.Link))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func titleWidth(width int) int {
	if width <= 0 {
		return maxTitleWidth
	}
	w := width - 10
	if w < 10 {
		w = 10
	}
	if w > maxTitleWidth {
		w = maxTitleWidth
	}
	return w
}
