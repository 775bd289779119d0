package messagerepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/twilight-hud/internal/domain/messaging"
)

// PostgresRepository persists scheduled messages in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save inserts a new message row.
func (r *PostgresRepository) Save(ctx context.Context, msg messaging.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO scheduled_messages (id, body, recipient, send_at, status, sid, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, msg.ID, msg.Body, msg.To, msg.SendAt, string(msg.Status), msg.SID, msg.Error, msg.CreatedAt, msg.UpdatedAt)
	return err
}

// Update stores the delivery outcome.
func (r *PostgresRepository) Update(ctx context.Context, msg messaging.Message) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE scheduled_messages
		SET status = $2, sid = $3, error = $4, updated_at = $5
		WHERE id = $1
	`, msg.ID, string(msg.Status), msg.SID, msg.Error, msg.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("message %s not found", msg.ID)
	}
	return nil
}

// ListPending returns pending messages ordered by send time.
func (r *PostgresRepository) ListPending(ctx context.Context) ([]messaging.Message, error) {
	return r.query(ctx, `
		SELECT id, body, recipient, send_at, status, sid, error, created_at, updated_at
		FROM scheduled_messages
		WHERE status = 'pending'
		ORDER BY send_at ASC
	`)
}

// List returns the newest messages first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]messaging.Message, error) {
	return r.query(ctx, `
		SELECT id, body, recipient, send_at, status, sid, error, created_at, updated_at
		FROM scheduled_messages
		ORDER BY created_at DESC, id ASC
		LIMIT $1
	`, limit)
}

func (r *PostgresRepository) query(ctx context.Context, sql string, args ...any) ([]messaging.Message, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []messaging.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (messaging.Message, error) {
	var (
		msg                      messaging.Message
		status                   string
		sendAt, created, updated time.Time
	)
	if err := row.Scan(&msg.ID, &msg.Body, &msg.To, &sendAt, &status, &msg.SID, &msg.Error, &created, &updated); err != nil {
		return messaging.Message{}, err
	}
	msg.Status = messaging.Status(status)
	msg.SendAt = sendAt.UTC()
	msg.CreatedAt = created.UTC()
	msg.UpdatedAt = updated.UTC()
	return msg, nil
}

var _ messaging.Repository = (*PostgresRepository)(nil)
