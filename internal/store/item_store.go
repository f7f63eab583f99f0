package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"itemvault/internal/models"
)

type ItemStore interface {
	ListItems(ctx context.Context, ownerID *uuid.UUID, q string, pagination models.PaginationParams) ([]models.Item, int, error)
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id string) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsByOwner(ctx context.Context, ownerID uuid.UUID) error
}

type PostgresItemStore struct {
	DB *pgxpool.Pool
}

func NewPostgresItemStore(db *pgxpool.Pool) *PostgresItemStore {
	return &PostgresItemStore{DB: db}
}

// ListItems returns one page of items plus the total count of matches.
// The count ignores pagination so clients can render "N results" headers.
func (s *PostgresItemStore) ListItems(ctx context.Context, ownerID *uuid.UUID, q string, pagination models.PaginationParams) ([]models.Item, int, error) {
	query := `
		SELECT id, owner_id, title, COALESCE(description, ''), created_at, updated_at
		FROM items
	`
	countQuery := `SELECT count(*) FROM items`

	args := []interface{}{}
	where := ""
	if ownerID != nil {
		where = fmt.Sprintf(" WHERE owner_id = $%d", len(args)+1)
		args = append(args, *ownerID)
	}
	if q != "" {
		clause := fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1)
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, "%"+q+"%")
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
		return nil, 0, fmt.Errorf("failed to get total count of items: %w", err)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return items, totalCount, nil
}

func (s *PostgresItemStore) CreateItem(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, owner_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.DB.Exec(ctx, query, item.ID, item.OwnerID, item.Title, item.Description, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (s *PostgresItemStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	query := `
		SELECT id, owner_id, title, COALESCE(description, ''), created_at, updated_at
		FROM items
		WHERE id = $1
	`
	var it models.Item
	err := s.DB.QueryRow(ctx, query, id).Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

func (s *PostgresItemStore) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	tag, err := s.DB.Exec(ctx, query, item.Title, item.Description, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresItemStore) DeleteItem(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = $1`
	tag, err := s.DB.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresItemStore) DeleteItemsByOwner(ctx context.Context, ownerID uuid.UUID) error {
	query := `DELETE FROM items WHERE owner_id = $1`
	if _, err := s.DB.Exec(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to delete items by owner: %w", err)
	}
	return nil
}
