package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"itemvault/internal/models"
	"itemvault/internal/store"
)

// ListAuditLogsHandler handles GET /admin/logs
func ListAuditLogsHandler(auditStore store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := c.Query("action")
		entityType := c.Query("entity_type")
		pagination := ParsePaginationParams(c)

		logs, totalCount, err := auditStore.ListAuditLogs(c.Request.Context(), action, entityType, pagination)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit logs"})
			return
		}

		if logs == nil {
			logs = []models.AuditLog{}
		}

		c.JSON(http.StatusOK, models.ListResponse[models.AuditLog]{
			Data:  logs,
			Count: totalCount,
		})
	}
}
