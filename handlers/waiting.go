package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/models"
)

// WaitingEventResponse is a waiting event joined with vessel static data.
type WaitingEventResponse struct {
	MMSI            int64         `json:"mmsi"`
	Name            string        `json:"name"`
	ShipTypeName    string        `json:"shipTypeName"`
	Zone            models.ZoneID `json:"zone"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         time.Time     `json:"endTime"`
	DurationMinutes int           `json:"durationMinutes"`
	AvgSpeed        float64       `json:"avgSpeed"`
	Open            bool          `json:"open"`
	Crossed         bool          `json:"crossed"`
	Resolved        bool          `json:"resolved"`
	CrossingTime    *time.Time    `json:"crossingTime,omitempty"`
}

// GetWaitingEvents handles GET /api/waiting - waiting events, newest first
func GetWaitingEvents(c *gin.Context) {
	var events []models.WaitingEvent
	if err := database.DB.Preload("Ship").
		Order("start_time DESC").
		Limit(1000).
		Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load waiting events"})
		return
	}

	resp := make([]WaitingEventResponse, 0, len(events))
	for i := range events {
		ev := &events[i]
		name, typeName := shipLabels(ev.Ship, ev.MMSI)
		resp = append(resp, WaitingEventResponse{
			MMSI:            ev.MMSI,
			Name:            name,
			ShipTypeName:    typeName,
			Zone:            ev.Zone,
			StartTime:       ev.StartTime,
			EndTime:         ev.EndTime,
			DurationMinutes: ev.DurationMinutes,
			AvgSpeed:        ev.AvgSpeed,
			Open:            ev.Open,
			Crossed:         ev.Crossed,
			Resolved:        ev.Resolved,
			CrossingTime:    ev.CrossingTime,
		})
	}
	c.JSON(http.StatusOK, resp)
}
