package service

import (
	"context"
	"fmt"
	"log"

	"github.com/ethioshop/ethioshop-backend/internal/chapa"
	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
)

// EscrowService pays the held funds out to the seller once an order is both
// delivered and paid. Release is fire-and-forget: every failure is logged and
// leaves escrow_released false, so a later qualifying call can try again.
type EscrowService interface {
	Release(ctx context.Context, orderID uint64)
}

type escrowService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	gateway     PaymentGateway
	notify      NotificationService
}

func NewEscrowService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, userRepo repository.UserRepository, gateway PaymentGateway, notify NotificationService) EscrowService {
	return &escrowService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		notify:      notify,
	}
}

func (s *escrowService) Release(ctx context.Context, orderID uint64) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		log.Printf("escrow: load order %d failed: %v", orderID, err)
		return
	}
	if o.Status != model.OrderStatusDelivered || o.PaymentStatus != model.PaymentStatusPaid || o.EscrowReleased {
		return
	}
	if !o.HasSellerPayoutDetails() {
		// The intake snapshot can be empty when the seller filled in bank
		// details after the sale. Fall back to the current profile and
		// backfill the snapshot so the payout is not held forever.
		seller, err := s.userRepo.FindByUID(ctx, o.SellerUID)
		if err != nil || !seller.HasPayoutProfile() {
			log.Printf("escrow: order %d seller has no payout profile; holding funds", orderID)
			return
		}
		o.SellerBankAccountName = seller.BankAccountName
		o.SellerBankAccountNumber = seller.BankAccountNumber
		o.SellerBankCode = seller.BankCode
		if err := s.orderRepo.Update(ctx, o); err != nil {
			log.Printf("escrow: backfill payout snapshot for order %d failed: %v", orderID, err)
			return
		}
	}

	payment, err := s.paymentRepo.FindSuccessfulByOrder(ctx, orderID)
	if err != nil {
		log.Printf("escrow: no successful payment for order %d: %v", orderID, err)
		return
	}

	resp, err := s.gateway.Transfer(ctx, chapa.TransferRequest{
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		AccountName:   o.SellerBankAccountName,
		AccountNumber: o.SellerBankAccountNumber,
		BankCode:      o.SellerBankCode,
		Reference:     fmt.Sprintf("escrow-release-%d", orderID),
	})
	if err != nil {
		log.Printf("escrow: transfer for order %d failed: %v", orderID, err)
		return
	}

	rows, err := s.orderRepo.MarkEscrowReleasedIfDue(ctx, orderID, resp.TransferID)
	if err != nil {
		log.Printf("escrow: mark order %d released failed: %v", orderID, err)
		return
	}
	if rows == 0 {
		log.Printf("escrow: order %d was released concurrently", orderID)
		return
	}

	s.notify.Notify(ctx, o.SellerUID, "escrow_released", "Funds Released",
		fmt.Sprintf("Payment of %s ETB has been released to your account", payment.Amount.StringFixed(2)),
		&orderID, nil, nil)
}
