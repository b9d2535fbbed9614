package repository

import (
	"context"
	"time"

	"auctionhouse/internal/domain/notification"

	"github.com/google/uuid"
)

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds the queue repository on a raw connection.
// The queue is append-mostly and shared with the websocket process, so it
// stays on plain SQL rather than the ORM.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Queue(ctx context.Context, n *notification.Notification) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO notifications (id, user_id, item_id, notification_type, event_id, payload, delivered, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (event_id, user_id) DO NOTHING
    `,
		n.ID,
		n.UserID,
		n.ItemID,
		n.Type,
		n.EventID,
		n.Payload,
		n.Delivered,
		n.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *notificationRepository) GetPending(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, item_id, notification_type, event_id, payload, delivered, created_at, delivered_at
        FROM notifications
        WHERE user_id = $1 AND delivered = FALSE
        ORDER BY created_at ASC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.ItemID,
			&n.Type,
			&n.EventID,
			&n.Payload,
			&n.Delivered,
			&n.CreatedAt,
			&n.DeliveredAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now())
	for _, id := range ids {
		args = append(args, id)
	}
	query := `
        UPDATE notifications
        SET delivered = TRUE, delivered_at = $1
        WHERE id IN (` + buildPlaceholders(2, len(ids)) + `)`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *notificationRepository) CleanupDelivered(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        DELETE FROM notifications
        WHERE delivered = TRUE AND delivered_at < $1
    `, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
