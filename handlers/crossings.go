package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/models"
)

// CrossingResponse is a crossing joined with its vessel's static data.
type CrossingResponse struct {
	MMSI         int64            `json:"mmsi"`
	Name         string           `json:"name"`
	ShipTypeName string           `json:"shipTypeName"`
	CrossingTime time.Time        `json:"crossingTime"`
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	Direction    models.Direction `json:"direction"`
}

// GetCrossings handles GET /api/crossings - recent crossings, newest first
func GetCrossings(c *gin.Context) {
	var crossings []models.Crossing
	if err := database.DB.Preload("Ship").
		Order("crossing_time DESC").
		Limit(1000).
		Find(&crossings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load crossings"})
		return
	}

	resp := make([]CrossingResponse, 0, len(crossings))
	for i := range crossings {
		cr := &crossings[i]
		name, typeName := shipLabels(cr.Ship, cr.MMSI)
		resp = append(resp, CrossingResponse{
			MMSI:         cr.MMSI,
			Name:         name,
			ShipTypeName: typeName,
			CrossingTime: cr.CrossingTime,
			Latitude:     cr.Latitude,
			Longitude:    cr.Longitude,
			Direction:    cr.Direction,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// displayName substitutes a readable fallback for blank AIS names.
func displayName(name string, mmsi int64) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("Unknown (%d)", mmsi)
	}
	return name
}

func shipLabels(ship *models.Ship, mmsi int64) (name, typeName string) {
	name = fmt.Sprintf("Unknown (%d)", mmsi)
	typeName = "Unknown"
	if ship != nil {
		name = displayName(ship.Name, mmsi)
		if ship.ShipTypeName != "" {
			typeName = ship.ShipTypeName
		}
	}
	return name, typeName
}
