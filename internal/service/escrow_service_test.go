package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEscrowFixture() (*fakeOrderRepo, *fakePaymentRepo, *fakeUserRepo, *fakeGateway, *recordingNotifier, EscrowService) {
	orders := newFakeOrderRepo()
	payments := newFakePaymentRepo()
	users := newFakeUserRepo()
	gateway := newFakeGateway()
	notifier := &recordingNotifier{}
	svc := NewEscrowService(orders, payments, users, gateway, notifier)
	return orders, payments, users, gateway, notifier, svc
}

func seedReleasableOrder(t *testing.T, orders *fakeOrderRepo, payments *fakePaymentRepo) *model.Order {
	t.Helper()
	o := &model.Order{
		BuyerUID:                "buyer-1",
		SellerUID:               "seller-1",
		TotalAmount:             decimal.NewFromInt(2000),
		Status:                  model.OrderStatusDelivered,
		PaymentStatus:           model.PaymentStatusPaid,
		SellerBankAccountName:   "Abebe Kebede",
		SellerBankAccountNumber: "1000123456789",
		SellerBankCode:          "946",
	}
	require.NoError(t, orders.Create(context.Background(), o))
	require.NoError(t, payments.Create(context.Background(), &model.Payment{
		TxRef:    "order-1-1",
		OrderID:  o.ID,
		BuyerUID: "buyer-1",
		Status:   model.PaymentRecordStatusSuccess,
		Amount:   decimal.NewFromInt(2000),
		Currency: "ETB",
	}))
	return o
}

func TestReleaseTransfersToSeller(t *testing.T) {
	orders, payments, _, gateway, notifier, svc := newEscrowFixture()
	o := seedReleasableOrder(t, orders, payments)

	svc.Release(context.Background(), o.ID)

	require.Len(t, gateway.transferCalls, 1)
	call := gateway.transferCalls[0]
	assert.Equal(t, "2000", call.Amount.String())
	assert.Equal(t, "ETB", call.Currency)
	assert.Equal(t, "1000123456789", call.AccountNumber)
	assert.Equal(t, "946", call.BankCode)
	assert.Equal(t, "escrow-release-1", call.Reference)

	stored, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.EscrowReleased)
	assert.Equal(t, "tr_123", stored.TransferID)

	assert.Equal(t, []string{"escrow_released"}, notifier.typesFor("seller-1"))
}

func TestReleaseIsIdempotent(t *testing.T) {
	orders, payments, _, gateway, _, svc := newEscrowFixture()
	o := seedReleasableOrder(t, orders, payments)

	svc.Release(context.Background(), o.ID)
	svc.Release(context.Background(), o.ID)

	assert.Len(t, gateway.transferCalls, 1)
}

func TestReleaseSkipsWhenNotDue(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *model.Order)
	}{
		{"not delivered", func(o *model.Order) { o.Status = model.OrderStatusShipped }},
		{"not paid", func(o *model.Order) { o.PaymentStatus = model.PaymentStatusPending }},
		{"already released", func(o *model.Order) { o.EscrowReleased = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, payments, _, gateway, _, svc := newEscrowFixture()
			o := seedReleasableOrder(t, orders, payments)
			tt.mutate(o)
			require.NoError(t, orders.Update(context.Background(), o))

			svc.Release(context.Background(), o.ID)
			assert.Empty(t, gateway.transferCalls)
		})
	}
}

func TestReleaseHoldsWithoutPayoutProfile(t *testing.T) {
	orders, payments, _, gateway, _, svc := newEscrowFixture()
	o := seedReleasableOrder(t, orders, payments)
	o.SellerBankAccountNumber = ""
	require.NoError(t, orders.Update(context.Background(), o))

	svc.Release(context.Background(), o.ID)

	assert.Empty(t, gateway.transferCalls)
	stored, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, stored.EscrowReleased)
}

func TestReleaseFallsBackToCurrentPayoutProfile(t *testing.T) {
	orders, payments, users, gateway, notifier, svc := newEscrowFixture()
	o := seedReleasableOrder(t, orders, payments)

	// first-sale flow: snapshot empty at intake, profile completed later
	o.SellerBankAccountName = ""
	o.SellerBankAccountNumber = ""
	o.SellerBankCode = ""
	require.NoError(t, orders.Update(context.Background(), o))
	require.NoError(t, users.Upsert(context.Background(), &model.User{
		UID:               "seller-1",
		BankAccountName:   "Abebe Kebede",
		BankAccountNumber: "1000123456789",
		BankCode:          "946",
	}))

	svc.Release(context.Background(), o.ID)

	require.Len(t, gateway.transferCalls, 1)
	assert.Equal(t, "1000123456789", gateway.transferCalls[0].AccountNumber)

	stored, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.EscrowReleased)
	// snapshot backfilled for any later read
	assert.Equal(t, "1000123456789", stored.SellerBankAccountNumber)
	assert.Equal(t, "946", stored.SellerBankCode)

	assert.Equal(t, []string{"escrow_released"}, notifier.typesFor("seller-1"))
}

func TestReleaseHoldsWhenCurrentProfileIncomplete(t *testing.T) {
	orders, payments, users, gateway, _, svc := newEscrowFixture()
	o := seedReleasableOrder(t, orders, payments)
	o.SellerBankAccountName = ""
	o.SellerBankAccountNumber = ""
	o.SellerBankCode = ""
	require.NoError(t, orders.Update(context.Background(), o))
	require.NoError(t, users.Upsert(context.Background(), &model.User{
		UID:             "seller-1",
		BankAccountName: "Abebe Kebede", // number and code still missing
	}))

	svc.Release(context.Background(), o.ID)

	assert.Empty(t, gateway.transferCalls)
	stored, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, stored.EscrowReleased)
}

func TestReleaseTransferFailureLeavesOrderUnreleased(t *testing.T) {
	orders, payments, _, gateway, notifier, svc := newEscrowFixture()
	o := seedReleasableOrder(t, orders, payments)
	gateway.transferErr = errors.New("bank rejected transfer")

	svc.Release(context.Background(), o.ID)

	stored, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, stored.EscrowReleased)
	assert.Empty(t, notifier.typesFor("seller-1"))

	// a later qualifying call retries successfully
	gateway.transferErr = nil
	svc.Release(context.Background(), o.ID)
	stored, err = orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.EscrowReleased)
}

func TestReleaseRequiresSuccessfulPayment(t *testing.T) {
	orders, _, _, gateway, _, svc := newEscrowFixture()
	o := &model.Order{
		BuyerUID:                "buyer-1",
		SellerUID:               "seller-1",
		TotalAmount:             decimal.NewFromInt(2000),
		Status:                  model.OrderStatusDelivered,
		PaymentStatus:           model.PaymentStatusPaid,
		SellerBankAccountName:   "Abebe Kebede",
		SellerBankAccountNumber: "1000123456789",
		SellerBankCode:          "946",
	}
	require.NoError(t, orders.Create(context.Background(), o))

	svc.Release(context.Background(), o.ID)
	assert.Empty(t, gateway.transferCalls)
}
