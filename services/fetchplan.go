package services

import (
	"log"
	"time"
)

// recentWindow is how far back a normal collection run reaches. Tracks are
// re-fetched over the whole window; storage dedup makes the overlap free and
// it lets an interrupted run recover on the next invocation.
const recentWindow = 48 * time.Hour

// FetchWindow is the time range one collection run covers.
type FetchWindow struct {
	From     time.Time
	To       time.Time
	Backfill bool
}

// PlanFetchWindow decides what to fetch: normally the recent window, but when
// a date inside the retention horizon has no data at all (a missed cron run,
// an outage), that gap is backfilled first. existingDates holds the UTC dates
// (YYYY-MM-DD) that already have positions. Gaps younger than the recent
// window are ignored because the normal fetch covers them anyway.
func PlanFetchWindow(now time.Time, existingDates map[string]bool, retentionDays int) FetchWindow {
	now = now.UTC()
	horizon := now.AddDate(0, 0, -retentionDays)

	for day := horizon.Truncate(24 * time.Hour); day.Before(now.Add(-recentWindow)); day = day.AddDate(0, 0, 1) {
		if existingDates[day.Format("2006-01-02")] {
			continue
		}
		log.Printf("⏪ Backfilling missing data for %s (48h window)", day.Format("2006-01-02"))
		return FetchWindow{From: day, To: day.Add(recentWindow), Backfill: true}
	}

	log.Println("📅 Fetching recent 48 hours")
	return FetchWindow{From: now.Add(-recentWindow), To: now}
}
