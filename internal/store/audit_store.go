package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"itemvault/internal/models"
)

type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListAuditLogs(ctx context.Context, action, entityType string, pagination models.PaginationParams) ([]models.AuditLog, int, error)
}

type PostgresAuditStore struct {
	DB *pgxpool.Pool
}

func NewPostgresAuditStore(db *pgxpool.Pool) *PostgresAuditStore {
	return &PostgresAuditStore{DB: db}
}

func (s *PostgresAuditStore) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (action, entity_type, entity_id, actor_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	return s.DB.QueryRow(
		ctx,
		query,
		log.Action,
		log.EntityType,
		log.EntityID,
		log.ActorID,
		detailsJSON,
	).Scan(&log.ID, &log.CreatedAt)
}

func (s *PostgresAuditStore) ListAuditLogs(ctx context.Context, action, entityType string, pagination models.PaginationParams) ([]models.AuditLog, int, error) {
	query := `
		SELECT id, action, entity_type, entity_id, actor_id, details, created_at
		FROM audit_logs`
	countQuery := `SELECT count(*) FROM audit_logs`

	args := []interface{}{}
	where := ""
	if action != "" {
		where = fmt.Sprintf(" WHERE action = $%d", len(args)+1)
		args = append(args, action)
	}
	if entityType != "" {
		clause := fmt.Sprintf("entity_type = $%d", len(args)+1)
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, entityType)
	}

	query += where + ` ORDER BY created_at DESC`
	countQuery += where

	limit := pagination.Limit
	if limit <= 0 {
		limit = 100
	}
	skip := pagination.Skip
	if skip < 0 {
		skip = 0
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	var totalCount int
	err := s.DB.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total count of audit logs: %w", err)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var log models.AuditLog
		var detailsJSON []byte
		if err := rows.Scan(&log.ID, &log.Action, &log.EntityType, &log.EntityID, &log.ActorID, &detailsJSON, &log.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &log.Details); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return logs, totalCount, nil
}
