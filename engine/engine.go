package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/models"
)

// EventSink is the persistence collaborator the engine writes events
// through. The engine does not care about the storage technology; the
// production sink is gorm-backed, tests use an in-memory one.
type EventSink interface {
	SaveCrossing(*models.Crossing) error
	CreateWaitingEvent(*models.WaitingEvent) error
	UpdateWaitingEvent(*models.WaitingEvent) error
}

// Engine wires the crossing detector and the waiting-zone tracker over a
// shared sink. All detection constants come from the immutable config
// captured at construction.
type Engine struct {
	detector *CrossingDetector
	tracker  *ZoneTracker
	sink     EventSink
}

func New(cfg config.Engine, sink EventSink) *Engine {
	return &Engine{
		detector: NewCrossingDetector(cfg),
		tracker:  NewZoneTracker(cfg, sink),
		sink:     sink,
	}
}

// Restore seeds waiting-zone state from persisted open events before a run.
func (e *Engine) Restore(open []models.WaitingEvent) {
	e.tracker.Restore(open)
}

// ProcessTrack folds one vessel's ordered position stream through the
// crossing detector and the zone tracker. Duplicate timestamps are skipped;
// both detectors handle staleness gaps themselves. Returns the number of
// crossings detected.
func (e *Engine) ProcessTrack(positions []models.Position) (int, error) {
	crossings := 0
	var prev *models.Position
	for i := range positions {
		curr := &positions[i]
		if prev != nil && !curr.Timestamp.After(prev.Timestamp) {
			continue
		}

		if c := e.detector.Detect(prev, curr); c != nil {
			if err := e.sink.SaveCrossing(c); err != nil {
				return crossings, fmt.Errorf("save crossing for %d: %w", curr.MMSI, err)
			}
			crossings++
		}
		if err := e.tracker.Observe(*curr); err != nil {
			return crossings, fmt.Errorf("zone tracking for %d: %w", curr.MMSI, err)
		}
		prev = curr
	}
	return crossings, nil
}

// Run processes many vessels' tracks in parallel. Zone state is keyed by
// MMSI, so vessels never touch each other's state. One failed vessel fails
// the run but does not undo events already written for others.
func (e *Engine) Run(ctx context.Context, tracks map[int64][]models.Position, parallelism int) error {
	if parallelism < 1 {
		parallelism = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for mmsi := range tracks {
		track := tracks[mmsi]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := e.ProcessTrack(track)
			return err
		})
	}
	return g.Wait()
}
