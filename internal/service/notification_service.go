package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/push"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrNoPushToken = errors.New("no_push_token")

type NotificationService interface {
	// Notify is best-effort: it records an in-app notification and, when the
	// recipient has a device token, pushes it. Failures are logged only so
	// they can never roll back the state change that produced them.
	Notify(ctx context.Context, recipientUID, typ, title, body string, orderID, productID, convID *uint64)
	SendPush(ctx context.Context, recipientUID, title, body string, data map[string]string) error
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userUID string) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	sender   push.Sender
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, sender push.Sender) NotificationService {
	if sender == nil {
		sender = push.Disabled{}
	}
	return &notificationService{repo: repo, userRepo: userRepo, sender: sender}
}

func (s *notificationService) Notify(ctx context.Context, recipientUID, typ, title, body string, orderID, productID, convID *uint64) {
	if recipientUID == "" || typ == "" {
		return
	}
	ctx, cancel := withShortDeadline(ctx)
	defer cancel()

	n := &model.Notification{
		UserUID:        recipientUID,
		Type:           typ,
		Title:          title,
		Body:           body,
		OrderID:        orderID,
		ProductID:      productID,
		ConversationID: convID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("notify: create notification for %s failed: %v", recipientUID, err)
	}

	user, err := s.userRepo.FindByUID(ctx, recipientUID)
	if err != nil || user.FCMToken == "" {
		return
	}
	data := map[string]string{"type": typ}
	if orderID != nil {
		data["orderId"] = strconv.FormatUint(*orderID, 10)
	}
	if err := s.sender.Send(ctx, user.FCMToken, title, body, data); err != nil {
		log.Printf("notify: push to %s failed: %v", recipientUID, err)
	}
}

func (s *notificationService) SendPush(ctx context.Context, recipientUID, title, body string, data map[string]string) error {
	user, err := s.userRepo.FindByUID(ctx, recipientUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.FCMToken == "" {
		return ErrNoPushToken
	}
	return s.sender.Send(ctx, user.FCMToken, title, body, data)
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}

// withShortDeadline keeps best-effort work from blocking the main flow.
func withShortDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 2*time.Second)
}
