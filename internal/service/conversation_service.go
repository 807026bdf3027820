package service

import (
	"context"
	"errors"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"gorm.io/gorm"
)

type ConversationService interface {
	CreateOrGet(ctx context.Context, productID uint64, buyerUID string) (*model.Conversation, error)
	Get(ctx context.Context, convID uint64, uid string) (*model.Conversation, error)
	ListByUser(ctx context.Context, uid string) ([]model.Conversation, error)
	ListMessages(ctx context.Context, convID uint64, uid string) ([]model.Message, error)
	CreateMessage(ctx context.Context, convID uint64, uid, senderName, body string) error
}

type conversationService struct {
	convRepo    repository.ConversationRepository
	productRepo repository.ProductRepository
	notify      NotificationService
}

func NewConversationService(convRepo repository.ConversationRepository, productRepo repository.ProductRepository, notify NotificationService) ConversationService {
	return &conversationService{convRepo: convRepo, productRepo: productRepo, notify: notify}
}

func (s *conversationService) CreateOrGet(ctx context.Context, productID uint64, buyerUID string) (*model.Conversation, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.SellerUID == "" {
		return nil, errors.New("product has no seller")
	}
	if p.SellerUID == buyerUID {
		return nil, errors.New("cannot chat with yourself")
	}
	return s.convRepo.FindOrCreate(ctx, productID, p.SellerUID, buyerUID)
}

func (s *conversationService) Get(ctx context.Context, convID uint64, uid string) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cv.BuyerUID != uid && cv.SellerUID != uid {
		return nil, ErrForbidden
	}
	return cv, nil
}

func (s *conversationService) ListByUser(ctx context.Context, uid string) ([]model.Conversation, error) {
	return s.convRepo.FindByUser(ctx, uid)
}

func (s *conversationService) ListMessages(ctx context.Context, convID uint64, uid string) ([]model.Message, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cv.BuyerUID != uid && cv.SellerUID != uid {
		return nil, ErrForbidden
	}
	return s.convRepo.ListMessages(ctx, convID)
}

func (s *conversationService) CreateMessage(ctx context.Context, convID uint64, uid, senderName, body string) error {
	if body == "" {
		return errors.New("body is required")
	}
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if cv.BuyerUID != uid && cv.SellerUID != uid {
		return ErrForbidden
	}
	msg := &model.Message{
		ConversationID: convID,
		SenderUID:      uid,
		SenderName:     senderName,
		Body:           body,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return err
	}
	recipient := cv.BuyerUID
	if uid == cv.BuyerUID {
		recipient = cv.SellerUID
	}
	s.notify.Notify(ctx, recipient, "new_message", "New Message",
		truncateBody(body), nil, &cv.ProductID, &cv.ID)
	return nil
}

func truncateBody(body string) string {
	if len(body) > 80 {
		return body[:80] + "..."
	}
	return body
}
