package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

type SubscriberRepo struct{ db *sql.DB }

func NewSubscriberRepo(db *sql.DB) repository.SubscriberRepository {
	return &SubscriberRepo{db: db}
}

// Create inserts the subscriber and fills in its generated ID.
// A unique-constraint hit on the email maps to entity.ErrAlreadyExists
// so the classification layer sees the benign conflict, not a raw
// driver error.
func (repo *SubscriberRepo) Create(ctx context.Context, subscriber *entity.Subscriber) error {
	const query = `
INSERT INTO subscribers (email, subscribed_at, active)
VALUES ($1, $2, $3)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		subscriber.Email, subscriber.SubscribedAt, subscriber.Active,
	).Scan(&subscriber.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create subscriber %s: %w", subscriber.Email, entity.ErrAlreadyExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	const query = `
SELECT id, email, subscribed_at, active
FROM subscribers
WHERE email = $1
LIMIT 1`
	var subscriber entity.Subscriber
	err := repo.db.QueryRowContext(ctx, query, email).Scan(
		&subscriber.ID, &subscriber.Email, &subscriber.SubscribedAt, &subscriber.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscriber %s: %w", email, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return &subscriber, nil
}

func (repo *SubscriberRepo) ListActive(ctx context.Context) ([]*entity.Subscriber, error) {
	const query = `
SELECT id, email, subscribed_at, active
FROM subscribers
WHERE active = TRUE
ORDER BY subscribed_at ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subscribers := make([]*entity.Subscriber, 0, 50)
	for rows.Next() {
		var subscriber entity.Subscriber
		if err := rows.Scan(
			&subscriber.ID, &subscriber.Email, &subscriber.SubscribedAt, &subscriber.Active,
		); err != nil {
			return nil, fmt.Errorf("ListActive: %w", err)
		}
		subscribers = append(subscribers, &subscriber)
	}
	return subscribers, rows.Err()
}

// Deactivate is a soft delete: the row stays for audit, active flips off.
func (repo *SubscriberRepo) Deactivate(ctx context.Context, email string) error {
	const query = `
UPDATE subscribers
SET active = FALSE
WHERE email = $1 AND active = TRUE`
	result, err := repo.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("subscriber %s: %w", email, entity.ErrNotFound)
	}
	return nil
}

func (repo *SubscriberRepo) CountActive(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM subscribers WHERE active = TRUE`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountActive: %w", err)
	}
	return count, nil
}
