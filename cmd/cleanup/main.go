package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.Database); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Engine.RetentionDays)
	fmt.Printf("Start cleanup (retaining data since %s)...\n", cutoff.Format("2006-01-02"))

	// Prune raw position reports beyond retention. Crossings, waiting
	// events and daily stats are derived summaries and are kept.
	res := database.DB.Where("timestamp < ?", cutoff).Delete(&models.Position{})
	if res.Error != nil {
		log.Fatalf("Failed to delete old positions: %v", res.Error)
	}
	fmt.Printf("✅ Deleted %d old positions\n", res.RowsAffected)

	res = database.DB.Where("timestamp < ?", cutoff).Delete(&models.WeatherObservation{})
	if res.Error != nil {
		log.Fatalf("Failed to delete old weather observations: %v", res.Error)
	}
	fmt.Printf("✅ Deleted %d old weather observations\n", res.RowsAffected)

	// Open waiting events older than the retention window can no longer be
	// resumed once their positions are gone; close them at their last
	// report so the correlator can still pass a verdict.
	res = database.DB.Model(&models.WaitingEvent{}).
		Where("open = ? AND end_time < ?", true, cutoff).
		Update("open", false)
	if res.Error != nil {
		log.Fatalf("Failed to close stale waiting events: %v", res.Error)
	}
	fmt.Printf("✅ Closed %d stale open waiting events\n", res.RowsAffected)

	fmt.Println("Cleanup complete")
}
