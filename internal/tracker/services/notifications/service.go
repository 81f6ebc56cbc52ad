package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/notification"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// Service manages per-user notifications.
type Service struct {
	users storage.UserStore
	store storage.NotificationStore
	log   *logger.Logger
}

// New constructs a notification service.
func New(users storage.UserStore, store storage.NotificationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("notifications")
	}
	return &Service{users: users, store: store, log: log}
}

// Notify delivers a message to an existing user.
func (s *Service) Notify(ctx context.Context, userID int64, message string) (notification.Notification, error) {
	if strings.TrimSpace(message) == "" {
		return notification.Notification{}, fmt.Errorf("message is required")
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return notification.Notification{}, err
	}

	created, err := s.store.CreateNotification(ctx, notification.Notification{UserID: userID, Message: message})
	if err != nil {
		return notification.Notification{}, err
	}
	s.log.WithField("notification_id", created.ID).WithField("user_id", userID).Info("notification created")
	return created, nil
}

// ForUser returns the user's notifications, newest first.
func (s *Service) ForUser(ctx context.Context, userID int64) ([]notification.Notification, error) {
	return s.store.ListNotificationsByUser(ctx, userID)
}

// MarkRead flags a notification as read. Marking an unknown or already-read
// notification is a no-op.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if n.Read {
		return nil
	}
	n.Read = true
	_, err = s.store.UpdateNotification(ctx, n)
	return err
}
