package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/straitwatch/backend/database"
	"github.com/straitwatch/backend/models"
)

// GetDailyStats handles GET /api/daily-stats - the last 90 aggregated days in
// chronological order for charting.
func GetDailyStats(c *gin.Context) {
	var stats []models.DailyStat
	if err := database.DB.Order("date DESC").Limit(90).Find(&stats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load daily stats"})
		return
	}

	// Flip to chronological order for charts.
	for i, j := 0, len(stats)-1; i < j; i, j = i+1, j-1 {
		stats[i], stats[j] = stats[j], stats[i]
	}
	c.JSON(http.StatusOK, stats)
}
