package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/models"
)

// ActiveShip is a vessel seen in the last 48 hours with its latest position
// and last known crossing.
type ActiveShip struct {
	MMSI             int64             `json:"mmsi"`
	Name             string            `json:"name"`
	ShipTypeName     string            `json:"shipTypeName"`
	Destination      *string           `json:"destination,omitempty"`
	Callsign         *string           `json:"callsign,omitempty"`
	Length           *float64          `json:"length,omitempty"`
	Width            *float64          `json:"width,omitempty"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
	SOG              *float64          `json:"sog,omitempty"`
	COG              *float64          `json:"cog,omitempty"`
	Heading          *int              `json:"heading,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	LastCrossingTime *time.Time        `json:"lastCrossingTime,omitempty"`
	LastDirection    *models.Direction `json:"lastDirection,omitempty"`
}

// GetActiveShips handles GET /api/vessels/active - latest position per vessel
// seen within the last 48 hours.
func GetActiveShips(c *gin.Context) {
	since := time.Now().Add(-48 * time.Hour)

	var positions []models.Position
	// DISTINCT ON gives the newest row per vessel in one pass.
	if err := database.DB.Raw(`
		SELECT DISTINCT ON (mmsi) *
		FROM positions
		WHERE timestamp > ?
		ORDER BY mmsi, timestamp DESC
	`, since).Scan(&positions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load active vessels"})
		return
	}

	resp := make([]ActiveShip, 0, len(positions))
	for i := range positions {
		pos := &positions[i]

		entry := ActiveShip{
			MMSI:      pos.MMSI,
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
			SOG:       pos.SOG,
			COG:       pos.COG,
			Heading:   pos.Heading,
			Timestamp: pos.Timestamp,
		}

		var ship models.Ship
		if err := database.DB.First(&ship, "mmsi = ?", pos.MMSI).Error; err == nil {
			entry.Name, entry.ShipTypeName = shipLabels(&ship, pos.MMSI)
			entry.Destination = ship.Destination
			entry.Callsign = ship.Callsign
			entry.Length = ship.Length
			entry.Width = ship.Width
		} else {
			entry.Name, entry.ShipTypeName = shipLabels(nil, pos.MMSI)
		}

		var lastCrossing models.Crossing
		if err := database.DB.Where("mmsi = ?", pos.MMSI).
			Order("crossing_time DESC").
			First(&lastCrossing).Error; err == nil {
			entry.LastCrossingTime = &lastCrossing.CrossingTime
			entry.LastDirection = &lastCrossing.Direction
		}

		resp = append(resp, entry)
	}
	c.JSON(http.StatusOK, resp)
}

// TrackResponse is a vessel plus its position history.
type TrackResponse struct {
	Ship      *models.Ship      `json:"ship"`
	Positions []models.Position `json:"positions"`
}

// GetVesselTrack handles GET /api/vessels/:mmsi/track
func GetVesselTrack(c *gin.Context) {
	mmsi, err := strconv.ParseInt(c.Param("mmsi"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid MMSI"})
		return
	}

	var ship models.Ship
	var shipPtr *models.Ship
	if err := database.DB.First(&ship, "mmsi = ?", mmsi).Error; err == nil {
		shipPtr = &ship
	}

	var positions []models.Position
	if err := database.DB.Where("mmsi = ?", mmsi).
		Order("timestamp ASC").
		Limit(5000).
		Find(&positions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load track"})
		return
	}

	c.JSON(http.StatusOK, TrackResponse{Ship: shipPtr, Positions: positions})
}
