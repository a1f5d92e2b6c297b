package engine

import (
	"sort"
	"time"

	"github.com/straitwatch/backend/models"
)

const dateLayout = "2006-01-02"

// AggregateDaily folds crossings, waiting events and weather samples into
// one DailyStat per UTC calendar date. It is a pure function: re-aggregating
// the same inputs yields identical rows, and callers replace rows wholesale
// rather than accumulating. Dates appearing in any input get a row; weather
// fields stay nil on days without samples, never zero.
func AggregateDaily(crossings []models.Crossing, waits []models.WaitingEvent, weather []models.WeatherObservation) []models.DailyStat {
	type dayAcc struct {
		crossings    int
		waits        int
		waitMinutes  float64
		windSum      float64
		windCount    int
		maxGust      *float64
	}
	days := make(map[string]*dayAcc)

	day := func(t time.Time) *dayAcc {
		key := t.UTC().Format(dateLayout)
		acc, ok := days[key]
		if !ok {
			acc = &dayAcc{}
			days[key] = acc
		}
		return acc
	}

	for i := range crossings {
		day(crossings[i].CrossingTime).crossings++
	}
	for i := range waits {
		acc := day(waits[i].StartTime)
		acc.waits++
		acc.waitMinutes += waits[i].Duration().Minutes()
	}
	for i := range weather {
		acc := day(weather[i].Timestamp)
		if ws := weather[i].WindSpeed; ws != nil {
			acc.windSum += *ws
			acc.windCount++
		}
		if g := weather[i].WindGust; g != nil {
			if acc.maxGust == nil || *g > *acc.maxGust {
				v := *g
				acc.maxGust = &v
			}
		}
	}

	stats := make([]models.DailyStat, 0, len(days))
	for key, acc := range days {
		stat := models.DailyStat{
			Date:           key,
			TotalCrossings: acc.crossings,
			WaitingEvents:  acc.waits,
			MaxWindGust:    acc.maxGust,
		}
		if acc.windCount > 0 {
			avg := acc.windSum / float64(acc.windCount)
			stat.AvgWindSpeed = &avg
		}
		if acc.waits > 0 {
			avg := acc.waitMinutes / float64(acc.waits)
			stat.AvgWaitingTime = &avg
		}
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })
	return stats
}
