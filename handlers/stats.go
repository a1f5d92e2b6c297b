package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/models"
	"github.com/straitwatch/backend/services"
)

// Cache is the shared response cache, set by main at startup. Nil disables
// caching.
var Cache *services.CacheService

const statsCacheKey = "api:stats"
const statsCacheTTL = 60 * time.Second

// TopShip is one entry in the crossing leaderboard.
type TopShip struct {
	MMSI      int64  `json:"mmsi"`
	Name      string `json:"name"`
	ShipType  string `json:"shipType"`
	Crossings int    `json:"crossings"`
}

// StatsResponse is the dashboard summary payload.
type StatsResponse struct {
	TotalShips          int64      `json:"totalShips"`
	TotalCrossings      int64      `json:"totalCrossings"`
	TotalWaitingEvents  int64      `json:"totalWaitingEvents"`
	AvgWaitingMinutes   float64    `json:"avgWaitingMinutes"`
	TotalPositions      int64      `json:"totalPositions"`
	RecentCrossings24h  int64      `json:"recentCrossings24h"`
	LastDataCollection  *time.Time `json:"lastDataCollection"`
	TopShipsByCrossings []TopShip  `json:"topShipsByCrossings"`
}

// GetStats handles GET /api/stats - dashboard summary, cached for a minute
// since it aggregates over every table.
func GetStats(c *gin.Context) {
	if Cache != nil {
		var cached StatsResponse
		if Cache.Get(c.Request.Context(), statsCacheKey, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	var resp StatsResponse

	if err := database.DB.Model(&models.Ship{}).Count(&resp.TotalShips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	database.DB.Model(&models.Crossing{}).Count(&resp.TotalCrossings)
	database.DB.Model(&models.WaitingEvent{}).Count(&resp.TotalWaitingEvents)
	database.DB.Model(&models.Position{}).Count(&resp.TotalPositions)

	var avgWait *float64
	database.DB.Model(&models.WaitingEvent{}).
		Select("AVG(duration_minutes)").
		Scan(&avgWait)
	if avgWait != nil {
		resp.AvgWaitingMinutes = *avgWait
	}

	database.DB.Model(&models.Crossing{}).
		Where("crossing_time > ?", time.Now().Add(-24*time.Hour)).
		Count(&resp.RecentCrossings24h)

	var lastData *time.Time
	database.DB.Model(&models.Position{}).
		Select("MAX(timestamp)").
		Scan(&lastData)
	resp.LastDataCollection = lastData

	rows := []struct {
		MMSI         int64
		Name         string
		ShipTypeName string
		Count        int
	}{}
	database.DB.Model(&models.Crossing{}).
		Select("crossings.mmsi, ships.name, ships.ship_type_name, COUNT(*) as count").
		Joins("JOIN ships ON ships.mmsi = crossings.mmsi").
		Group("crossings.mmsi, ships.name, ships.ship_type_name").
		Order("count DESC").
		Limit(10).
		Scan(&rows)
	for _, row := range rows {
		resp.TopShipsByCrossings = append(resp.TopShipsByCrossings, TopShip{
			MMSI:      row.MMSI,
			Name:      displayName(row.Name, row.MMSI),
			ShipType:  row.ShipTypeName,
			Crossings: row.Count,
		})
	}

	if Cache != nil {
		Cache.Set(c.Request.Context(), statsCacheKey, resp, statsCacheTTL)
	}
	c.JSON(http.StatusOK, resp)
}
