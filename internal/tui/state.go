package tui

import (
	"time"

	"github.com/marcin-skalski/pr-status/internal/signal"
	"github.com/marcin-skalski/pr-status/internal/status"
)

// Snapshot is the state of the most recent poll cycle.
type Snapshot struct {
	Timestamp time.Time
	CycleID   string
	Cycles    int
	Mode      string // "top N" or "index N"
	Results   []status.Result
	Signal    signal.Signal
	Err       string // cycle-level failure, empty on success
}
