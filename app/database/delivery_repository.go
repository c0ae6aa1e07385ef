package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// DeliveryLog stores what was sent to which chat
type DeliveryLog struct {
	db *DB
}

func NewDeliveryLog(db *DB) *DeliveryLog {
	return &DeliveryLog{db: db}
}

func (r *DeliveryLog) Record(ctx context.Context, d Delivery) error {
	if d.ChatID == 0 {
		return errors.New("chat id is required")
	}
	if d.Link == "" {
		return errors.New("link is required")
	}

	if d.ContentHash == "" {
		d.ContentHash = ContentHash(d.Title, d.Link)
	}
	if d.SentAt.IsZero() {
		d.SentAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliveries (chat_id, kind, category, language, title, link, content_hash, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ChatID, d.Kind, d.Category, d.Language, d.Title, d.Link, d.ContentHash, d.SentAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

// Recent returns the latest deliveries of a chat, newest first
func (r *DeliveryLog) Recent(ctx context.Context, chatID int64, limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat_id, kind, category, language, title, link, content_hash, sent_at
		FROM deliveries
		WHERE chat_id = ?
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		var sentAt int64
		if err := rows.Scan(&d.ID, &d.ChatID, &d.Kind, &d.Category, &d.Language, &d.Title, &d.Link, &d.ContentHash, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		d.SentAt = time.UnixMilli(sentAt)
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deliveries: %w", err)
	}

	return deliveries, nil
}

func (r *DeliveryLog) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var lastSentAt sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT chat_id), MAX(sent_at)
		FROM deliveries
	`).Scan(&stats.Total, &stats.Chats, &lastSentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery totals: %w", err)
	}

	if lastSentAt.Valid {
		t := time.UnixMilli(lastSentAt.Int64)
		stats.LastSentAt = &t
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM deliveries
		GROUP BY kind
		ORDER BY COUNT(*) DESC, kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery kinds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan delivery kind: %w", err)
		}
		stats.ByKind = append(stats.ByKind, kc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delivery kinds: %w", err)
	}

	return stats, nil
}

// ContentHash identifies an item by title and link
func ContentHash(title, link string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", title, link)))
	return hex.EncodeToString(hash[:])
}
