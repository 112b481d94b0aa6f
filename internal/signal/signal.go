// Package signal turns classified PR statuses into key colors and effects.
package signal

import (
	"context"
	"log/slog"

	"github.com/marcin-skalski/pr-status/internal/status"
)

type Effect string

const (
	SetColor Effect = "SET_COLOR"
	Breathe  Effect = "BREATHE"
	Blink    Effect = "BLINK"
)

const (
	ColorRed    = "#FF0000"
	ColorOrange = "#DE4816"
	ColorYellow = "#FFFF00"
	ColorGreen  = "#00FF00"
	ColorWhite  = "#FFFFFF"

	defaultLink = "https://github.com"
)

// Point is the instruction for a single key.
type Point struct {
	Color  string `json:"color"`
	Effect Effect `json:"effect"`
}

type Link struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

type Signal struct {
	Name    string   `json:"name"`
	Message string   `json:"message"`
	Points  []Point  `json:"points"`
	Link    *Link    `json:"link,omitempty"`
	Action  string   `json:"action,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	IsMuted bool     `json:"isMuted"`
}

// Failed reports whether the signal stands for a failed cycle.
func (s Signal) Failed() bool {
	return s.Action == "ERROR"
}

func PointFor(s status.Status) Point {
	switch s {
	case status.Error:
		return Point{Color: ColorRed, Effect: SetColor}
	case status.NeedsWork:
		return Point{Color: ColorOrange, Effect: SetColor}
	case status.NeedsReview:
		return Point{Color: ColorYellow, Effect: SetColor}
	case status.Pending:
		return Point{Color: ColorYellow, Effect: Breathe}
	case status.Ready:
		return Point{Color: ColorGreen, Effect: SetColor}
	default:
		return Point{Color: ColorWhite, Effect: SetColor}
	}
}

// FromResults builds a signal with exactly keys points; slots without a
// result render as unknown.
func FromResults(results []status.Result, keys int) Signal {
	points := make([]Point, keys)
	for i := range points {
		s := status.Unknown
		if i < len(results) {
			s = results[i].Status
		}
		points[i] = PointFor(s)
	}

	link := defaultLink
	if len(results) > 0 && results[0].Link != "" {
		link = results[0].Link
	}

	return Signal{
		Name:    "GitHub PRs",
		Message: "PR statuses",
		Points:  points,
		Link:    &Link{URL: link, Label: "See on GitHub"},
		IsMuted: true,
	}
}

// FromError builds the signal rendered when a whole cycle fails.
func FromError(err error, keys int) Signal {
	points := make([]Point, keys)
	for i := range points {
		points[i] = Point{Color: ColorRed, Effect: Blink}
	}
	var errs []string
	if err != nil {
		errs = []string{err.Error()}
	}
	return Signal{
		Name:    "GitHub PRs",
		Message: "Error getting PRs",
		Points:  points,
		Action:  "ERROR",
		Errors:  errs,
	}
}

type Sink interface {
	Publish(ctx context.Context, s Signal) error
}

// LogSink writes every signal to the logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Publish(_ context.Context, s Signal) error {
	colors := make([]string, 0, len(s.Points))
	for _, p := range s.Points {
		colors = append(colors, p.Color+"/"+string(p.Effect))
	}
	if s.Failed() {
		l.logger.Warn("signal", "message", s.Message, "points", colors, "errors", s.Errors)
		return nil
	}
	url := ""
	if s.Link != nil {
		url = s.Link.URL
	}
	l.logger.Info("signal", "message", s.Message, "points", colors, "link", url)
	return nil
}
