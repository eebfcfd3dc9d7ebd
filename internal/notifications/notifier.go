// Package notifications persists notification rows and publishes them to
// Redis channels so interested consumers can pick them up in real time.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Event is the payload published to Redis when a notification is created.
type Event struct {
	ID         uint   `json:"id"`
	UserID     uint   `json:"user_id"`
	ActorID    *uint  `json:"actor_id,omitempty"`
	Verb       string `json:"verb"`
	TargetType string `json:"target_type,omitempty"`
	TargetID   *uint  `json:"target_id,omitempty"`
}

// Notifier writes notifications through the repository and mirrors them to
// per-user Redis channels. A nil Redis client degrades to store-only.
type Notifier struct {
	repo repository.NotificationRepository
	rdb  *redis.Client
}

func NewNotifier(repo repository.NotificationRepository, rdb *redis.Client) *Notifier {
	return &Notifier{repo: repo, rdb: rdb}
}

// UserChannel returns the Redis pub/sub channel for a user's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Notify stores the notification and publishes it. Notifications a user
// would send to themselves are dropped.
func (n *Notifier) Notify(ctx context.Context, notification *models.Notification) error {
	if notification.ActorID != nil && *notification.ActorID == notification.UserID {
		return nil
	}
	if err := n.repo.Create(ctx, notification); err != nil {
		return err
	}
	middleware.NotificationsCreated.WithLabelValues(notification.Verb).Inc()
	n.publish(ctx, notification)
	return nil
}

func (n *Notifier) publish(ctx context.Context, notification *models.Notification) {
	if n.rdb == nil {
		return
	}
	event := Event{
		ID:         notification.ID,
		UserID:     notification.UserID,
		ActorID:    notification.ActorID,
		Verb:       notification.Verb,
		TargetType: notification.TargetType,
		TargetID:   notification.TargetID,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := n.rdb.Publish(ctx, UserChannel(notification.UserID), payload).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "notification publish failed",
			"channel", UserChannel(notification.UserID), "error", err)
	}
}
