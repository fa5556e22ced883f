package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// FollowerIDs returns the ids of every user following ownerID.
func (s *PostgresStore) FollowerIDs(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT follower_id FROM followers WHERE user_id=$1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan follower: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate followers: %w", err)
	}
	return ids, nil
}

// RewriteTimestamp stamps t onto a content row. Used at case approval so
// approval time, not submission time, drives ordering.
func (s *PostgresStore) RewriteTimestamp(ctx context.Context, contentID string, t time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE contents SET created_at=$2 WHERE id=$1`, contentID, t); err != nil {
		return fmt.Errorf("rewrite timestamp: %w", err)
	}
	return nil
}

// InsertNotification inserts a notification record and returns the
// generated row key. The public id field starts empty and is patched in a
// second step once the key is known.
func (s *PostgresStore) InsertNotification(ctx context.Context, n Notification) (int64, error) {
	var rowID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notifications (id, content_id, kind, uid, created_at)
		VALUES ('', $1, $2, $3, NOW())
		RETURNING row_id
	`, n.ContentID, n.Kind, n.UID).Scan(&rowID)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return rowID, nil
}

// PatchNotificationID writes the public id back into an inserted record.
func (s *PostgresStore) PatchNotificationID(ctx context.Context, rowID int64, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET id=$2 WHERE row_id=$1`, rowID, id); err != nil {
		return fmt.Errorf("patch notification id: %w", err)
	}
	return nil
}

// NotificationRowsForContent scans a user's notification collection for
// records referencing contentID. Notifications are not keyed by content
// id, so this is a scan of the owner's collection, not a direct lookup.
func (s *PostgresStore) NotificationRowsForContent(ctx context.Context, uid, contentID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT row_id FROM notifications WHERE uid=$1 AND content_id=$2`, uid, contentID)
	if err != nil {
		return nil, fmt.Errorf("scan notifications: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return ids, nil
}

// DeleteNotificationRows deletes the given records in one commit.
func (s *PostgresStore) DeleteNotificationRows(ctx context.Context, rowIDs []int64) error {
	if len(rowIDs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notification delete: %w", err)
	}
	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE row_id=$1`, rowID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete notification %d: %w", rowID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notification delete: %w", err)
	}
	return nil
}
