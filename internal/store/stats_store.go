package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"itemvault/internal/models"
)

type StatsStore interface {
	GetDashboardStats(ctx context.Context, since *time.Time) (*models.DashboardStats, error)
}

type PostgresStatsStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStatsStore(db *pgxpool.Pool) *PostgresStatsStore {
	return &PostgresStatsStore{DB: db}
}

func (s *PostgresStatsStore) GetDashboardStats(ctx context.Context, since *time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	if err := s.DB.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if err := s.DB.QueryRow(ctx, `SELECT count(*) FROM users WHERE is_active`).Scan(&stats.ActiveUsers); err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	if err := s.DB.QueryRow(ctx, `SELECT count(*) FROM items`).Scan(&stats.TotalItems); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	newItemsQuery := `SELECT count(*) FROM items`
	newItemsArgs := []interface{}{}
	if since != nil {
		newItemsQuery += ` WHERE created_at >= $1`
		newItemsArgs = append(newItemsArgs, since)
	}
	if err := s.DB.QueryRow(ctx, newItemsQuery, newItemsArgs...).Scan(&stats.NewItems); err != nil {
		return nil, fmt.Errorf("failed to count new items: %w", err)
	}

	auditQuery := `SELECT count(*) FROM audit_logs`
	auditArgs := []interface{}{}
	if since != nil {
		auditQuery += ` WHERE created_at >= $1`
		auditArgs = append(auditArgs, since)
	}
	if err := s.DB.QueryRow(ctx, auditQuery, auditArgs...).Scan(&stats.TotalAuditActions); err != nil {
		return nil, fmt.Errorf("failed to count audit actions: %w", err)
	}

	recentQuery := `
		SELECT id, action, entity_type, entity_id, actor_id, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT 5`
	rows, err := s.DB.Query(ctx, recentQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent audit logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var log models.AuditLog
		var detailsJSON []byte
		if err := rows.Scan(&log.ID, &log.Action, &log.EntityType, &log.EntityID, &log.ActorID, &detailsJSON, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &log.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		stats.RecentAuditLogs = append(stats.RecentAuditLogs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stats, nil
}
