package data

import (
	"fmt"
	"time"

	"github.com/alexherrero/tradecore/models"
)

// NotificationStore provides persistence for notifications.
type NotificationStore interface {
	SaveNotification(n models.Notification) error
	GetNotifications(limit, offset int) ([]models.Notification, error)
	MarkAsRead(id string) error
	MarkAllAsRead() error
	DeleteOlderThan(d time.Duration) error
}

// SQLNotificationStore implements NotificationStore using SQLite.
type SQLNotificationStore struct {
	db *DB
}

// NewNotificationStore creates a new SQL-based notification store.
func NewNotificationStore(db *DB) *SQLNotificationStore {
	return &SQLNotificationStore{db: db}
}

// SaveNotification persists a notification.
func (s *SQLNotificationStore) SaveNotification(n models.Notification) error {
	// Serialize metadata
	if err := n.PrepareForSave(); err != nil {
		return fmt.Errorf("metadata serialization failed: %w", err)
	}

	query := `
		INSERT INTO notifications (id, type, title, message, created_at, is_read, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, n.ID, n.Type, n.Title, n.Message, n.CreatedAt, n.IsRead, n.MetadataJSON)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// GetNotifications returns recent notifications ordered by time descending.
func (s *SQLNotificationStore) GetNotifications(limit, offset int) ([]models.Notification, error) {

	// Use simple scan logic or distinct struct for reading
	// Re-using Notify struct with customized PostLoad logic is tricky with sqlx struct scan if db tag mismatches
	// Let's rely on standard struct scan.
	// models.Notification has MetadataJSON tagged `db:"metadata"`

	var notifications []models.Notification
	query := `
		SELECT id, type, title, message, created_at, is_read, metadata
		FROM notifications
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	err := s.db.Select(&notifications, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	// Deserialize metadata
	for i := range notifications {
		if err := notifications[i].PostLoad(); err != nil {
			// Log error but continue? Or fail? Let's log if logging available, otherwise just use empty metadata.
			// Since we don't have logger here, we could return error, but it feels harsh for metadata parsing.
			// Let's assume PostLoad handles empty string fine (it does).
		}
	}

	return notifications, nil
}

// MarkAsRead marks a single notification as read.
func (s *SQLNotificationStore) MarkAsRead(id string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = ?`
	_, err := s.db.Exec(query, id)
	return err
}

// MarkAllAsRead marks all notifications as read.
func (s *SQLNotificationStore) MarkAllAsRead() error {
	query := `UPDATE notifications SET is_read = TRUE WHERE is_read = FALSE`
	_, err := s.db.Exec(query)
	return err
}

// DeleteOlderThan deletes notifications older than duration.
func (s *SQLNotificationStore) DeleteOlderThan(d time.Duration) error {
	cutoff := time.Now().Add(-d)
	query := `DELETE FROM notifications WHERE created_at < ?`
	_, err := s.db.Exec(query, cutoff)
	return err
}
