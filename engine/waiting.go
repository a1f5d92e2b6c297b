package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/models"
)

type trackerPhase int

const (
	phaseOutside trackerPhase = iota
	phaseCandidate
	phaseWaiting
)

// zoneCircle is a waiting zone with its center pre-converted.
type zoneCircle struct {
	id     models.ZoneID
	center Point
	radius float64
}

// vesselState is the ephemeral per-vessel accumulator. It is owned
// exclusively by the tracker and is re-derivable: Waiting state restores
// from the persisted open event, Candidate state rebuilds from the position
// window the next run re-processes.
type vesselState struct {
	phase      trackerPhase
	zone       models.ZoneID
	entryTime  time.Time
	lastSeen   time.Time // last qualifying report
	speedSum   float64
	speedCount int
	event      *models.WaitingEvent // non-nil while phaseWaiting
}

func (st *vesselState) avgSpeed() float64 {
	if st.speedCount == 0 {
		return 0
	}
	return st.speedSum / float64(st.speedCount)
}

// ZoneTracker runs the per-vessel waiting-zone state machine:
// Outside -> Candidate (in zone, slow) -> Waiting (dwell threshold met).
// A waiting event only materializes once the vessel has dwelt the full
// threshold, with start_time backdated to zone entry; vessels merely
// transiting a zone slowly never produce partial events. Weather is never
// consulted here - waiting is proven behaviorally (slow + in zone + long),
// wind is correlated after the fact.
type ZoneTracker struct {
	speedThreshold float64
	dwellThreshold time.Duration
	staleGap       time.Duration
	zones          []zoneCircle
	sink           EventSink

	mu     sync.Mutex
	states map[int64]*vesselState
}

// NewZoneTracker builds a tracker from the immutable engine config.
func NewZoneTracker(cfg config.Engine, sink EventSink) *ZoneTracker {
	zones := make([]zoneCircle, 0, len(cfg.Zones))
	for _, z := range cfg.Zones {
		zones = append(zones, zoneCircle{
			id:     z.ID,
			center: Point{Lat: z.Center.Lat, Lon: z.Center.Lon},
			radius: z.Radius,
		})
	}
	return &ZoneTracker{
		speedThreshold: cfg.SpeedThreshold,
		dwellThreshold: cfg.DurationThreshold,
		staleGap:       cfg.StaleGap,
		zones:          zones,
		sink:           sink,
		states:         make(map[int64]*vesselState),
	}
}

// Restore seeds tracker state from persisted open waiting events, so an
// aborted or completed run resumes instead of losing or double-counting
// dwell time.
func (t *ZoneTracker) Restore(open []models.WaitingEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range open {
		ev := open[i]
		t.states[ev.MMSI] = &vesselState{
			phase:      phaseWaiting,
			zone:       ev.Zone,
			entryTime:  ev.StartTime,
			lastSeen:   ev.EndTime,
			speedSum:   ev.AvgSpeed * float64(ev.SampleCount),
			speedCount: ev.SampleCount,
			event:      &ev,
		}
	}
}

func (t *ZoneTracker) state(mmsi int64) *vesselState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[mmsi]
	if !ok {
		st = &vesselState{phase: phaseOutside}
		t.states[mmsi] = st
	}
	return st
}

func (t *ZoneTracker) zoneAt(p Point) *zoneCircle {
	for i := range t.zones {
		if PointInCircle(p, t.zones[i].center, t.zones[i].radius) {
			return &t.zones[i]
		}
	}
	return nil
}

// Observe advances the state machine with one position report. Reports must
// arrive in timestamp order per vessel; duplicates and replays of already
// seen timestamps are ignored.
func (t *ZoneTracker) Observe(pos models.Position) error {
	st := t.state(pos.MMSI)

	if st.phase != phaseOutside && !pos.Timestamp.After(st.lastSeen) {
		return nil
	}

	// A silent vessel is not evidence of continued waiting: close or
	// discard at the last qualifying report rather than bridging the gap.
	if st.phase != phaseOutside && pos.Timestamp.Sub(st.lastSeen) > t.staleGap {
		if err := t.leave(st); err != nil {
			return err
		}
	}

	zone := t.zoneAt(Point{Lat: pos.Latitude, Lon: pos.Longitude})
	// Missing SOG cannot disqualify a dwell; it is simply excluded from
	// the running average.
	slow := pos.SOG == nil || *pos.SOG < t.speedThreshold
	qualifies := zone != nil && slow

	switch st.phase {
	case phaseOutside:
		if qualifies {
			t.enter(st, zone.id, pos)
		}

	case phaseCandidate:
		if !qualifies {
			*st = vesselState{phase: phaseOutside}
			return nil
		}
		if zone.id != st.zone {
			// Changing zones restarts the accumulator; dwell in two
			// different zones never sums.
			t.enter(st, zone.id, pos)
			return nil
		}
		t.accumulate(st, pos)
		if pos.Timestamp.Sub(st.entryTime) >= t.dwellThreshold {
			return t.materialize(st, pos.MMSI)
		}

	case phaseWaiting:
		if !qualifies || zone.id != st.zone {
			if err := t.leave(st); err != nil {
				return err
			}
			if qualifies {
				t.enter(st, zone.id, pos)
			}
			return nil
		}
		t.accumulate(st, pos)
		st.event.EndTime = pos.Timestamp
		st.event.DurationMinutes = int(st.event.Duration().Minutes())
		st.event.AvgSpeed = st.avgSpeed()
		st.event.SampleCount = st.speedCount
		return t.sink.UpdateWaitingEvent(st.event)
	}
	return nil
}

func (t *ZoneTracker) enter(st *vesselState, zone models.ZoneID, pos models.Position) {
	*st = vesselState{
		phase:     phaseCandidate,
		zone:      zone,
		entryTime: pos.Timestamp,
	}
	t.accumulate(st, pos)
}

func (t *ZoneTracker) accumulate(st *vesselState, pos models.Position) {
	st.lastSeen = pos.Timestamp
	if pos.SOG != nil {
		st.speedSum += *pos.SOG
		st.speedCount++
	}
}

// materialize turns a Candidate that met the dwell threshold into a
// persisted open waiting event, backdated to zone entry.
func (t *ZoneTracker) materialize(st *vesselState, mmsi int64) error {
	ev := &models.WaitingEvent{
		MMSI:        mmsi,
		Zone:        st.zone,
		StartTime:   st.entryTime,
		EndTime:     st.lastSeen,
		AvgSpeed:    st.avgSpeed(),
		SampleCount: st.speedCount,
		Open:        true,
	}
	ev.DurationMinutes = int(ev.Duration().Minutes())
	if err := t.sink.CreateWaitingEvent(ev); err != nil {
		return fmt.Errorf("materialize waiting event: %w", err)
	}
	st.phase = phaseWaiting
	st.event = ev
	return nil
}

// leave exits the current zone: a Waiting event closes at the last
// qualifying report, a Candidate accumulator is discarded without a trace.
func (t *ZoneTracker) leave(st *vesselState) error {
	if st.phase == phaseWaiting && st.event != nil {
		st.event.Open = false
		st.event.EndTime = st.lastSeen
		st.event.DurationMinutes = int(st.event.Duration().Minutes())
		st.event.AvgSpeed = st.avgSpeed()
		st.event.SampleCount = st.speedCount
		if err := t.sink.UpdateWaitingEvent(st.event); err != nil {
			return fmt.Errorf("close waiting event: %w", err)
		}
	}
	*st = vesselState{phase: phaseOutside}
	return nil
}
