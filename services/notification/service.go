package notification

import (
	"context"
	"fmt"
	"time"

	"meetmydesigners/models"
	"meetmydesigners/services/realtime"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatch stores the notification, then publishes it on user:<id> and pushes
// it to the user's device. Only the insert can fail the call.
func (s *DefaultNotificationService) Dispatch(ctx context.Context, userID, kind, title, message string, data map[string]string) error {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	realtime.PublishSafe(ctx, s.Publisher, realtime.UserChannel(userID), "notification", n)
	s.push(ctx, n)
	return nil
}

func (s *DefaultNotificationService) push(ctx context.Context, n *models.Notification) {
	if s.Pusher == nil || s.Profiles == nil {
		return
	}
	logger := utils.GetLogger()

	profile, err := s.Profiles.GetByID(ctx, n.UserID)
	if err != nil {
		logger.Warn("notification: profile lookup for push failed",
			zap.String("userID", n.UserID), zap.Error(err))
		return
	}
	if profile.FCMToken == "" {
		return
	}

	data := map[string]string{"type": n.Type, "notification_id": n.ID, "role": string(profile.Role)}
	for k, v := range n.Data {
		data[k] = v
	}
	if err := s.Pusher.Push(ctx, profile.FCMToken, n.Title, n.Message, data); err != nil {
		logger.Warn("notification: push failed",
			zap.String("userID", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *DefaultNotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return s.Repo.ListByUser(ctx, userID, unreadOnly, 100)
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.Repo.MarkRead(ctx, userID, id)
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.Repo.MarkAllRead(ctx, userID)
}

// Send is a fire-and-forget Dispatch for callers whose own operation has
// already succeeded.
func Send(ctx context.Context, n Notifier, userID, kind, title, message string, data map[string]string) {
	if n == nil {
		return
	}
	if err := n.Dispatch(ctx, userID, kind, title, message, data); err != nil {
		utils.GetLogger().Warn("notification: dispatch failed",
			zap.String("userID", userID), zap.String("type", kind), zap.Error(err))
	}
}
