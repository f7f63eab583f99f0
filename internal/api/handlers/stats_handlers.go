package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"itemvault/internal/store"
)

func GetDashboardStatsHandler(statsStore store.StatsStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		durationStr := c.Query("duration")
		if durationStr == "" {
			durationStr = "30d"
		}

		since, err := ParseWindowDuration(durationStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration format. Use '30m', '12h', '7d', '2w', '1mo' or '1y'"})
			return
		}

		stats, err := statsStore.GetDashboardStats(ctx, &since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dashboard stats"})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
