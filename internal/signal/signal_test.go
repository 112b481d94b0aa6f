package signal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcin-skalski/pr-status/internal/status"
)

func TestPointFor(t *testing.T) {
	tests := []struct {
		status status.Status
		want   Point
	}{
		{status.Error, Point{"#FF0000", SetColor}},
		{status.NeedsWork, Point{"#DE4816", SetColor}},
		{status.NeedsReview, Point{"#FFFF00", SetColor}},
		{status.Pending, Point{"#FFFF00", Breathe}},
		{status.Ready, Point{"#00FF00", SetColor}},
		{status.Unknown, Point{"#FFFFFF", SetColor}},
		{status.Status("SOMETHING_ELSE"), Point{"#FFFFFF", SetColor}},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, PointFor(tt.status))
		})
	}
}

func TestFromResults_PadsMissingSlots(t *testing.T) {
	results := []status.Result{
		{Status: status.Ready, Link: "https://github.com/octo/a/pull/1"},
		{Status: status.Pending, Link: "https://github.com/octo/a/pull/2"},
	}

	s := FromResults(results, 5)

	require.Len(t, s.Points, 5)
	assert.Equal(t, PointFor(status.Ready), s.Points[0])
	assert.Equal(t, PointFor(status.Pending), s.Points[1])
	for _, p := range s.Points[2:] {
		assert.Equal(t, Point{ColorWhite, SetColor}, p)
	}
	assert.Equal(t, "https://github.com/octo/a/pull/1", s.Link.URL)
	assert.True(t, s.IsMuted)
	assert.False(t, s.Failed())
}

func TestFromResults_Empty(t *testing.T) {
	s := FromResults(nil, 3)

	assert.Len(t, s.Points, 3)
	assert.Equal(t, "https://github.com", s.Link.URL)
}

func TestFromError(t *testing.T) {
	s := FromError(errors.New("status 502"), 5)

	require.Len(t, s.Points, 5)
	for _, p := range s.Points {
		assert.Equal(t, Point{ColorRed, Blink}, p)
	}
	assert.Equal(t, "Error getting PRs", s.Message)
	assert.Equal(t, []string{"status 502"}, s.Errors)
	assert.True(t, s.Failed())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, sink.Publish(context.Background(), FromResults([]status.Result{{Status: status.Ready}}, 1)))
	assert.Contains(t, buf.String(), "#00FF00/SET_COLOR")

	buf.Reset()
	require.NoError(t, sink.Publish(context.Background(), FromError(errors.New("down"), 1)))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "down")
}
