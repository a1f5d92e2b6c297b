package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/models"
)

// GetWeather handles GET /api/weather - recent observations in chronological
// order.
func GetWeather(c *gin.Context) {
	var observations []models.WeatherObservation
	if err := database.DB.Order("timestamp DESC").Limit(1000).Find(&observations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load weather"})
		return
	}

	for i, j := 0, len(observations)-1; i < j; i, j = i+1, j-1 {
		observations[i], observations[j] = observations[j], observations[i]
	}
	c.JSON(http.StatusOK, observations)
}
