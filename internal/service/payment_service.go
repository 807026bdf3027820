package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ethioshop/ethioshop-backend/internal/chapa"
	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"gorm.io/gorm"
)

// ErrPaymentNotPending means the order cannot take a checkout session:
// already paid, cancelled, or claimed by a session that is no longer
// reusable.
var ErrPaymentNotPending = errors.New("payment_not_pending")

var ErrGateway = errors.New("gateway_error")

// PaymentGateway is the slice of the Chapa client the payment workflow needs.
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req chapa.InitializeRequest) (*chapa.InitializeResponse, error)
	Transfer(ctx context.Context, req chapa.TransferRequest) (*chapa.TransferResponse, error)
}

type CheckoutSession struct {
	CheckoutURL string
	TxRef       string
}

type PaymentService interface {
	CreateSession(ctx context.Context, orderID uint64, buyerUID, buyerEmail, returnURL string) (*CheckoutSession, error)
	// ConfirmCharge applies a verified charge.success event exactly once.
	// A nil return for an already-processed reference lets the webhook
	// answer 200 to redeliveries without touching state again.
	ConfirmCharge(ctx context.Context, txRef, transactionID string, providerMeta []byte) error
}

type paymentService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	gateway     PaymentGateway
	notify      NotificationService
	callbackURL string
	returnURL   string
	now         func() time.Time
}

func NewPaymentService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, gateway PaymentGateway, notify NotificationService, callbackURL, defaultReturnURL string) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		notify:      notify,
		callbackURL: callbackURL,
		returnURL:   defaultReturnURL,
		now:         time.Now,
	}
}

func (s *paymentService) CreateSession(ctx context.Context, orderID uint64, buyerUID, buyerEmail, returnURL string) (*CheckoutSession, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if o.Status == model.OrderStatusCancelled {
		return nil, ErrPaymentNotPending
	}

	// Claiming pending->initiated up front closes the double-session window:
	// a concurrent second call loses this update and never opens a second
	// gateway session.
	rows, err := s.orderRepo.CASPaymentStatus(ctx, o.ID, model.PaymentStatusPending, model.PaymentStatusInitiated)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// A session is already open. Hand back its stored checkout URL so an
		// abandoned hosted page never locks the order out of payment.
		if session, ok := s.reuseOpenSession(ctx, o.ID); ok {
			return session, nil
		}
		return nil, ErrPaymentNotPending
	}

	txRef := fmt.Sprintf("order-%d-%d", o.ID, s.now().UnixMilli())
	firstName, lastName := splitName(o.BuyerName)
	if buyerEmail == "" {
		buyerEmail = "customer@example.com"
	}
	if returnURL == "" {
		returnURL = s.returnURL
	}

	resp, err := s.gateway.InitializeTransaction(ctx, chapa.InitializeRequest{
		Amount:      o.TotalAmount,
		Currency:    "ETB",
		Email:       buyerEmail,
		FirstName:   firstName,
		LastName:    lastName,
		TxRef:       txRef,
		CallbackURL: s.callbackURL,
		ReturnURL:   returnURL,
		Title:       "EthioShop Payment",
		Description: fmt.Sprintf("Order #%d", o.ID),
	})
	if err != nil {
		s.resetToPending(ctx, o.ID)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	p := &model.Payment{
		TxRef:       txRef,
		OrderID:     o.ID,
		BuyerUID:    o.BuyerUID,
		Provider:    "chapa",
		Status:      model.PaymentRecordStatusPending,
		Amount:      o.TotalAmount,
		Currency:    "ETB",
		CheckoutURL: resp.CheckoutURL,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		s.resetToPending(ctx, o.ID)
		return nil, err
	}
	if err := s.orderRepo.SetSessionRef(ctx, o.ID, txRef); err != nil {
		s.resetToPending(ctx, o.ID)
		return nil, err
	}

	return &CheckoutSession{CheckoutURL: resp.CheckoutURL, TxRef: txRef}, nil
}

// reuseOpenSession recovers the checkout URL of the session that claimed the
// order, so a buyer who closed the hosted page can get back to it.
func (s *paymentService) reuseOpenSession(ctx context.Context, orderID uint64) (*CheckoutSession, bool) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil || o.PaymentStatus != model.PaymentStatusInitiated || o.SessionRef == "" {
		return nil, false
	}
	p, err := s.paymentRepo.FindByTxRef(ctx, o.SessionRef)
	if err != nil || p.Status != model.PaymentRecordStatusPending || p.CheckoutURL == "" {
		return nil, false
	}
	return &CheckoutSession{CheckoutURL: p.CheckoutURL, TxRef: p.TxRef}, true
}

func (s *paymentService) ConfirmCharge(ctx context.Context, txRef, transactionID string, providerMeta []byte) error {
	p, err := s.paymentRepo.FindByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.Status != model.PaymentRecordStatusPending {
		return nil
	}

	// Order first: if this write fails the gateway retries the whole event,
	// and the payment guard below has not been consumed yet.
	if err := s.orderRepo.MarkPaid(ctx, p.OrderID, transactionID); err != nil {
		return err
	}
	rows, err := s.paymentRepo.MarkSucceededIfPending(ctx, txRef, transactionID, string(providerMeta))
	if err != nil {
		return err
	}
	if rows == 0 {
		// A concurrent delivery won the guard; nothing left to do.
		return nil
	}

	s.notify.Notify(ctx, p.BuyerUID, "payment_success", "Payment Successful",
		fmt.Sprintf("Your payment of %s ETB has been received", p.Amount.StringFixed(2)),
		&p.OrderID, nil, nil)
	return nil
}

func (s *paymentService) resetToPending(ctx context.Context, orderID uint64) {
	if _, err := s.orderRepo.CASPaymentStatus(ctx, orderID, model.PaymentStatusInitiated, model.PaymentStatusPending); err != nil {
		log.Printf("payment: reset order %d to pending failed: %v", orderID, err)
	}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "Customer", " "
	}
	first = parts[0]
	last = strings.Join(parts[1:], " ")
	if last == "" {
		last = " "
	}
	return first, last
}
