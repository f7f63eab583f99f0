package service

import (
	"context"
	"log/slog"

	"itemvault/internal/models"
	"itemvault/internal/store"
)

// AsyncLogAction records an audit entry without blocking the request.
func AsyncLogAction(ctx context.Context, auditStore store.AuditStore, entry *models.AuditLog) {
	slog.Info("Audit Action",
		"action", entry.Action,
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
		"actor_id", entry.ActorID,
	)

	go func() {
		if err := auditStore.CreateAuditLog(context.Background(), entry); err != nil {
			slog.Error("Failed to create audit log", "error", err, "action", entry.Action)
		}
	}()
}
