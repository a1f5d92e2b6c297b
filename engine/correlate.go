package engine

import (
	"time"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/models"
)

// Correlator links closed waiting events to the crossing that followed, if
// any. The zone-to-direction expectation (east zone waits for a westbound
// crossing and vice versa) is taken from configuration rather than
// hard-coded.
type Correlator struct {
	expected map[models.ZoneID]models.Direction
	window   time.Duration
}

func NewCorrelator(cfg config.Engine) *Correlator {
	return &Correlator{
		expected: cfg.ExpectedDirection,
		window:   cfg.LookaheadWindow,
	}
}

// Window returns the look-ahead horizon after an event's end time.
func (c *Correlator) Window() time.Duration {
	return c.window
}

// Resolve applies the look-ahead rule to a closed waiting event given the
// vessel's subsequent crossings (ordered by time). The first crossing inside
// (end_time, end_time+window] whose direction matches the zone's expectation
// wins. If none has appeared and the window has elapsed by now, the verdict
// is a final crossed=false; otherwise the event stays unresolved for the
// next run. Returns true when a verdict was reached and the event mutated.
func (c *Correlator) Resolve(ev *models.WaitingEvent, crossings []models.Crossing, now time.Time) bool {
	want := c.expected[ev.Zone]
	deadline := ev.EndTime.Add(c.window)

	for i := range crossings {
		cr := &crossings[i]
		if !cr.CrossingTime.After(ev.EndTime) || cr.CrossingTime.After(deadline) {
			continue
		}
		if cr.Direction != want {
			continue
		}
		when := cr.CrossingTime
		ev.Crossed = true
		ev.CrossingTime = &when
		ev.Resolved = true
		return true
	}

	if now.After(deadline) {
		ev.Crossed = false
		ev.CrossingTime = nil
		ev.Resolved = true
		return true
	}
	return false
}
