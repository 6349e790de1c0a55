package service

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/taragold/taraerp-backend/internal/app/model"
	"github.com/taragold/taraerp-backend/internal/app/repository"
	"github.com/taragold/taraerp-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Pusher delivers a realtime payload to a connected user. The websocket
// hub implements it; a nil pusher disables realtime delivery.
type Pusher interface {
	SendToUser(userID uint, payload interface{})
}

type NotificationService interface {
	NotifyOrderEvent(userID uint, notifType model.NotificationType, order *model.Order, message string)
	NotifyKYCChanged(userID uint, partner *model.BusinessPartner, message string)
	GetUserNotifications(userID uint, unreadOnly bool) ([]model.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkAsRead(id uint, userID uint) error
	MarkAllAsRead(userID uint) error
	Delete(id uint, userID uint) error
	GetSettings(userID uint) (*model.NotificationSettings, error)
	UpdateSettings(userID uint, input UpdateSettingsInput) (*model.NotificationSettings, error)
}

type UpdateSettingsInput struct {
	OrderNotification *bool
	KYCNotification   *bool
	MutedTypes        []string
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	pusher           Pusher
}

func NewNotificationService(notificationRepo repository.NotificationRepository, pusher Pusher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

// muted reports whether the user's settings suppress this notification.
// Missing settings rows and lookup failures both mean "deliver".
func (s *notificationService) muted(userID uint, notifType model.NotificationType) bool {
	settings, err := s.notificationRepo.FindSettings(userID)
	if err != nil || settings == nil {
		return false
	}

	if notifType == model.NotificationTypeKYCChanged {
		if !settings.KYCNotification {
			return true
		}
	} else if !settings.OrderNotification {
		return true
	}

	for _, muted := range settings.MutedTypes {
		if muted == string(notifType) {
			return true
		}
	}
	return false
}

// NotifyOrderEvent records an order notification and pushes it when the
// user has a live connection. Failures are logged, never propagated:
// notification delivery must not fail the underlying transition.
func (s *notificationService) NotifyOrderEvent(userID uint, notifType model.NotificationType, order *model.Order, message string) {
	if s.muted(userID, notifType) {
		return
	}

	notification := &model.Notification{
		UserID:         userID,
		Type:           notifType,
		Title:          fmt.Sprintf("Order %s", order.OrderNo),
		Content:        message,
		Link:           fmt.Sprintf("/orders/%s", order.OrderNo),
		RelatedOrderID: &order.ID,
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		logger.Error("Failed to record order notification", err, map[string]interface{}{
			"user_id":  userID,
			"order_no": order.OrderNo,
			"type":     notifType,
		})
		return
	}

	if s.pusher != nil {
		s.pusher.SendToUser(userID, notification)
	}

	logger.Debug("Order notification delivered", map[string]interface{}{
		"user_id":  userID,
		"order_no": order.OrderNo,
		"type":     notifType,
	})
}

func (s *notificationService) NotifyKYCChanged(userID uint, partner *model.BusinessPartner, message string) {
	if s.muted(userID, model.NotificationTypeKYCChanged) {
		return
	}

	notification := &model.Notification{
		UserID:           userID,
		Type:             model.NotificationTypeKYCChanged,
		Title:            fmt.Sprintf("KYC update for %s", partner.BPCode),
		Content:          message,
		Link:             fmt.Sprintf("/partners/%s/kyc", partner.BPCode),
		RelatedPartnerID: &partner.ID,
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		logger.Error("Failed to record KYC notification", err, map[string]interface{}{
			"user_id": userID,
			"bp_code": partner.BPCode,
		})
		return
	}

	if s.pusher != nil {
		s.pusher.SendToUser(userID, notification)
	}
}

func (s *notificationService) GetUserNotifications(userID uint, unreadOnly bool) ([]model.Notification, error) {
	return s.notificationRepo.FindByUserID(userID, unreadOnly)
}

func (s *notificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

func (s *notificationService) MarkAsRead(id uint, userID uint) error {
	err := s.notificationRepo.MarkAsRead(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllAsRead(userID uint) error {
	return s.notificationRepo.MarkAllAsRead(userID)
}

func (s *notificationService) Delete(id uint, userID uint) error {
	err := s.notificationRepo.Delete(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// GetSettings returns the user's delivery preferences, creating nothing.
// Users without a saved row get the defaults.
func (s *notificationService) GetSettings(userID uint) (*model.NotificationSettings, error) {
	settings, err := s.notificationRepo.FindSettings(userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &model.NotificationSettings{
			UserID:            userID,
			OrderNotification: true,
			KYCNotification:   true,
			MutedTypes:        pq.StringArray{},
		}, nil
	}
	return settings, nil
}

func (s *notificationService) UpdateSettings(userID uint, input UpdateSettingsInput) (*model.NotificationSettings, error) {
	settings, err := s.notificationRepo.FindSettings(userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &model.NotificationSettings{
			UserID:            userID,
			OrderNotification: true,
			KYCNotification:   true,
			MutedTypes:        pq.StringArray{},
		}
	}

	if input.OrderNotification != nil {
		settings.OrderNotification = *input.OrderNotification
	}
	if input.KYCNotification != nil {
		settings.KYCNotification = *input.KYCNotification
	}
	if input.MutedTypes != nil {
		settings.MutedTypes = pq.StringArray(input.MutedTypes)
	}

	if err := s.notificationRepo.SaveSettings(settings); err != nil {
		return nil, err
	}

	logger.Info("Notification settings updated", map[string]interface{}{
		"user_id": userID,
	})
	return settings, nil
}
