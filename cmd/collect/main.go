package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/engine"
	"github.com/straitwatch/backend/models"
	"github.com/straitwatch/backend/services"
)

const trackParallelism = 4

// publishingSink wraps the database store and mirrors newly created events
// onto the NATS bus for the live dashboard. With no NATS connection it
// degrades to plain persistence.
type publishingSink struct {
	store *database.Store
	nc    *nats.Conn
}

func (s *publishingSink) SaveCrossing(c *models.Crossing) error {
	if err := s.store.SaveCrossing(c); err != nil {
		return err
	}
	// ID stays zero when the insert hit the dedup conflict; only genuinely
	// new crossings go on the bus.
	if c.ID != 0 {
		s.publish(services.SubjectCrossing, c)
	}
	return nil
}

func (s *publishingSink) CreateWaitingEvent(w *models.WaitingEvent) error {
	if err := s.store.CreateWaitingEvent(w); err != nil {
		return err
	}
	s.publish(services.SubjectWaiting, w)
	return nil
}

func (s *publishingSink) UpdateWaitingEvent(w *models.WaitingEvent) error {
	if err := s.store.UpdateWaitingEvent(w); err != nil {
		return err
	}
	if !w.Open {
		s.publish(services.SubjectWaiting, w)
	}
	return nil
}

func (s *publishingSink) publish(subject string, v interface{}) {
	if s.nc == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.nc.Publish(subject, data); err != nil {
		log.Printf("⚠️ Failed to publish %s event: %v", subject, err)
	}
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := database.Connect(cfg.Database); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	store := database.NewStore(database.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	// Event bus is best-effort: the collector must keep working when the
	// API server (and its embedded NATS) is down.
	nc, err := nats.Connect(cfg.NATS.URL, nats.Timeout(2*time.Second))
	if err != nil {
		log.Printf("⚠️ NATS unavailable, events will not be published live: %v", err)
		nc = nil
	} else {
		defer nc.Close()
	}
	sink := &publishingSink{store: store, nc: nc}

	bw := services.NewBarentswatchClient(cfg.Barentswatch)
	if err := bw.Authenticate(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}

	// Decide the fetch window: recent data, or a backfill of the oldest
	// gap inside the retention horizon.
	existing, err := store.DatesWithPositions(now.AddDate(0, 0, -cfg.Engine.RetentionDays))
	if err != nil {
		log.Fatalf("❌ Failed to inspect existing data: %v", err)
	}
	window := services.PlanFetchWindow(now, existing, cfg.Engine.RetentionDays)

	mmsis, err := bw.MMSIInArea(ctx, window.From, window.To)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Printf("🚢 Fetching tracks for %d vessels (this may take a while)...", len(mmsis))

	lookup := services.NewShipLookup()
	tracks := make(map[int64][]models.Position, len(mmsis))
	fetched := 0

	for i, mmsi := range mmsis {
		points, err := bw.FetchTrack(ctx, mmsi, window.From, window.To)
		if err != nil {
			log.Printf("⚠️ [%d/%d] MMSI %d: %v", i+1, len(mmsis), mmsi, err)
			continue
		}
		if len(points) == 0 {
			log.Printf("[%d/%d] MMSI %d - no data in window", i+1, len(mmsis), mmsi)
			continue
		}

		positions := services.TrackToPositions(mmsi, points)
		if len(positions) == 0 {
			continue
		}

		ship := services.ShipFromTrack(mmsi, points)
		if err := enrichShip(ctx, store, lookup, &ship); err != nil {
			log.Printf("⚠️ Ship upsert for %d: %v", mmsi, err)
			continue
		}

		if err := store.SavePositions(services.FilterForStorage(positions, cfg.Engine)); err != nil {
			log.Printf("⚠️ Position store for %d: %v", mmsi, err)
			continue
		}

		tracks[mmsi] = positions
		fetched++
		log.Printf("[%d/%d] %s (%s) - %d positions", i+1, len(mmsis), ship.Name, ship.ShipTypeName, len(positions))
	}

	log.Printf("✓ Fetched %d/%d vessel tracks", fetched, len(mmsis))

	// Detection: resume open waiting events, then fold every track through
	// the crossing detector and zone tracker.
	eng := engine.New(cfg.Engine, sink)
	open, err := store.OpenWaitingEvents()
	if err != nil {
		log.Fatalf("❌ Failed to load open waiting events: %v", err)
	}
	eng.Restore(open)

	if err := eng.Run(ctx, tracks, trackParallelism); err != nil {
		log.Fatalf("❌ Detection failed: %v", err)
	}

	// Weather for the same window.
	weather := services.NewWeatherClient(cfg.Weather)
	if obs, err := weather.FetchObservations(ctx, window.From, window.To); err != nil {
		log.Printf("⚠️ Weather fetch failed: %v", err)
	} else {
		if err := store.SaveWeather(obs); err != nil {
			log.Printf("⚠️ Weather store failed: %v", err)
		} else {
			log.Printf("✓ Stored %d weather observations", len(obs))
		}
	}

	// Correlate closed waiting events with subsequent crossings.
	if err := correlate(store, cfg.Engine, now); err != nil {
		log.Fatalf("❌ Correlation failed: %v", err)
	}

	// Re-aggregate daily statistics over the retention horizon.
	if err := aggregate(store, cfg.Engine, now); err != nil {
		log.Fatalf("❌ Aggregation failed: %v", err)
	}

	printSummary(store)
}

// enrichShip upserts the vessel, consulting the registry once per vessel for
// static data the AIS feed does not carry.
func enrichShip(ctx context.Context, store *database.Store, lookup *services.ShipLookup, ship *models.Ship) error {
	existing, err := store.GetShip(ship.MMSI)
	if err != nil {
		return err
	}

	if (existing == nil || existing.InfoFetchedAt == nil) && lookup.Enabled() {
		if profile := lookup.Profile(ctx, ship.MMSI); profile != nil {
			ship.Length = profile.Length
			ship.Width = profile.Width
			ship.Callsign = profile.Callsign
		}
		fetchedAt := time.Now().UTC()
		ship.InfoFetchedAt = &fetchedAt
	}

	return store.UpsertShip(ship)
}

// correlate resolves waiting events whose look-ahead window has either
// produced a matching crossing or elapsed.
func correlate(store *database.Store, cfg config.Engine, now time.Time) error {
	correlator := engine.NewCorrelator(cfg)
	pending, err := store.UnresolvedWaitingEvents()
	if err != nil {
		return err
	}

	resolved := 0
	for i := range pending {
		ev := &pending[i]
		crossings, err := store.CrossingsAfter(ev.MMSI, ev.EndTime, ev.EndTime.Add(correlator.Window()))
		if err != nil {
			return err
		}
		if correlator.Resolve(ev, crossings, now) {
			if err := store.UpdateWaitingEvent(ev); err != nil {
				return err
			}
			resolved++
		}
	}
	log.Printf("✓ Resolved %d/%d pending waiting events", resolved, len(pending))
	return nil
}

// aggregate recomputes and upserts the daily statistics over the retention
// horizon. Recomputing the whole horizon keeps the rows consistent after
// backfills.
func aggregate(store *database.Store, cfg config.Engine, now time.Time) error {
	from := now.AddDate(0, 0, -cfg.RetentionDays).Truncate(24 * time.Hour)
	crossings, waits, weather, err := store.EventsBetween(from, now)
	if err != nil {
		return err
	}

	stats := engine.AggregateDaily(crossings, waits, weather)
	for i := range stats {
		if err := store.UpsertDailyStat(&stats[i]); err != nil {
			return err
		}
	}
	log.Printf("✓ Daily statistics updated for %d dates", len(stats))
	return nil
}

func printSummary(store *database.Store) {
	summary, err := store.Summary()
	if err != nil {
		log.Printf("⚠️ Failed to load summary: %v", err)
		return
	}

	log.Println("=== SUMMARY ===")
	log.Printf("Ships with track data: %d", summary.ShipsWithData)
	log.Printf("Ships that crossed: %d", summary.ShipsCrossed)
	log.Printf("Total crossings: %d", summary.TotalCrossings)
	log.Printf("Waiting events detected: %d", summary.WaitingEvents)
	if summary.WaitingEvents > 0 {
		log.Printf("Average waiting time: %.1f minutes", summary.AvgWaitingMinutes)
	}
}
