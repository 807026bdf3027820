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

func strPtr(s string) *string { return &s }

func newOrderFixture() (*fakeOrderRepo, *fakeProductRepo, *fakeUserRepo, *recordingEscrow, *recordingNotifier, OrderService) {
	orders := newFakeOrderRepo()
	products := newFakeProductRepo()
	users := newFakeUserRepo()
	escrow := &recordingEscrow{}
	notifier := &recordingNotifier{}
	svc := NewOrderService(orders, products, users, escrow, notifier, decimal.NewFromInt(100))
	return orders, products, users, escrow, notifier, svc
}

func seedProduct(t *testing.T, products *fakeProductRepo, id uint64, seller string, price int64) {
	t.Helper()
	err := products.Create(context.Background(), &model.Product{
		ID:        id,
		SellerUID: seller,
		Title:     "Test Product",
		Price:     decimal.NewFromInt(price),
		Status:    model.ProductStatusActive,
		ImageURL:  strPtr("https://example.com/p.jpg"),
	})
	require.NoError(t, err)
}

func TestCreateOrderComputesTotals(t *testing.T) {
	_, products, users, _, notifier, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	seedProduct(t, products, 2, "seller-1", 1000)
	require.NoError(t, users.Upsert(context.Background(), &model.User{
		UID:               "seller-1",
		DisplayName:       "Abebe Kebede",
		BankAccountName:   "Abebe Kebede",
		BankAccountNumber: "1000123456789",
		BankCode:          "946",
	}))

	o, err := svc.Create(context.Background(), "buyer-1", "Sara Tesfaye", CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)

	assert.Equal(t, "2000", o.TotalAmount.String())
	assert.True(t, o.ShippingCost.IsZero())
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, "seller-1", o.SellerUID)
	assert.Len(t, o.Items, 2)

	// seller payout profile snapshotted at intake
	assert.Equal(t, "1000123456789", o.SellerBankAccountNumber)
	assert.Equal(t, "946", o.SellerBankCode)

	assert.Equal(t, []string{"new_order"}, notifier.typesFor("seller-1"))
}

func TestCreateOrderAddsFlatShipping(t *testing.T) {
	_, products, _, _, _, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)

	o, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodShipping,
		Address:        "Bole, Addis Ababa",
	})
	require.NoError(t, err)
	assert.Equal(t, "600", o.TotalAmount.String())
	assert.Equal(t, "100", o.ShippingCost.String())
}

func TestCreateOrderValidation(t *testing.T) {
	_, products, _, _, _, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	seedProduct(t, products, 2, "seller-2", 300)
	require.NoError(t, products.Create(context.Background(), &model.Product{
		ID:        3,
		SellerUID: "seller-1",
		Title:     "Sold Out",
		Price:     decimal.NewFromInt(200),
		Status:    model.ProductStatusSold,
	}))

	tests := []struct {
		name  string
		buyer string
		in    CreateOrderInput
	}{
		{
			name:  "no items",
			buyer: "buyer-1",
			in:    CreateOrderInput{DeliveryMethod: model.DeliveryMethodPickup},
		},
		{
			name:  "zero quantity",
			buyer: "buyer-1",
			in: CreateOrderInput{
				Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 0}},
				DeliveryMethod: model.DeliveryMethodPickup,
			},
		},
		{
			name:  "shipping without address",
			buyer: "buyer-1",
			in: CreateOrderInput{
				Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
				DeliveryMethod: model.DeliveryMethodShipping,
			},
		},
		{
			name:  "mixed sellers",
			buyer: "buyer-1",
			in: CreateOrderInput{
				Items: []CreateOrderItemInput{
					{ProductID: 1, Quantity: 1},
					{ProductID: 2, Quantity: 1},
				},
				DeliveryMethod: model.DeliveryMethodPickup,
			},
		},
		{
			name:  "inactive product",
			buyer: "buyer-1",
			in: CreateOrderInput{
				Items:          []CreateOrderItemInput{{ProductID: 3, Quantity: 1}},
				DeliveryMethod: model.DeliveryMethodPickup,
			},
		},
		{
			name:  "own product",
			buyer: "seller-1",
			in: CreateOrderInput{
				Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
				DeliveryMethod: model.DeliveryMethodPickup,
			},
		},
		{
			name:  "invalid delivery method",
			buyer: "buyer-1",
			in: CreateOrderInput{
				Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
				DeliveryMethod: model.DeliveryMethod("drone"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.buyer, "Sara", tt.in)
			assert.Error(t, err)
		})
	}
}

func TestCreateOrderSellerLookupFailureIsPropagated(t *testing.T) {
	_, products, users, _, _, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	users.findErr = errors.New("connection lost")

	// a transient lookup failure must not quietly produce an order with an
	// empty payout snapshot
	_, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	// no profile row at all is fine: the order is created without a snapshot
	users.findErr = nil
	o, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)
	assert.False(t, o.HasSellerPayoutDetails())
}

func TestMarkShippedTransitions(t *testing.T) {
	orders, products, _, _, notifier, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	o, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)

	// not paid yet
	_, err = svc.MarkShipped(context.Background(), o.ID, "seller-1")
	assert.Error(t, err)

	require.NoError(t, orders.MarkPaid(context.Background(), o.ID, "txn-1"))

	// wrong seller
	_, err = svc.MarkShipped(context.Background(), o.ID, "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)

	shipped, err := svc.MarkShipped(context.Background(), o.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, shipped.Status)
	require.NotNil(t, shipped.ShippedAt)

	// idempotent
	again, err := svc.MarkShipped(context.Background(), o.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, again.Status)

	assert.Contains(t, notifier.typesFor("buyer-1"), "order_shipped")
}

func TestMarkDeliveredTriggersEscrowWhenPaid(t *testing.T) {
	orders, products, _, escrow, _, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	o, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)

	require.NoError(t, orders.MarkPaid(context.Background(), o.ID, "txn-1"))
	_, err = svc.MarkShipped(context.Background(), o.ID, "seller-1")
	require.NoError(t, err)

	delivered, err := svc.MarkDelivered(context.Background(), o.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, []uint64{o.ID}, escrow.released)
}

func TestMarkDeliveredRequiresShipped(t *testing.T) {
	orders, products, _, escrow, _, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	o, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)
	require.NoError(t, orders.MarkPaid(context.Background(), o.ID, "txn-1"))

	_, err = svc.MarkDelivered(context.Background(), o.ID, "buyer-1")
	assert.Error(t, err)
	assert.Empty(t, escrow.released)
}

func TestCancelOnlyBeforePayment(t *testing.T) {
	orders, products, _, _, notifier, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	o, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), o.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Contains(t, notifier.typesFor("seller-1"), "order_cancelled")

	// second order, paid: cancel refused
	o2, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)
	require.NoError(t, orders.MarkPaid(context.Background(), o2.ID, "txn-2"))
	_, err = svc.Cancel(context.Background(), o2.ID, "buyer-1")
	assert.Error(t, err)
}

func TestGetOrderRestrictedToParticipants(t *testing.T) {
	_, products, _, _, _, svc := newOrderFixture()
	seedProduct(t, products, 1, "seller-1", 500)
	o, err := svc.Create(context.Background(), "buyer-1", "Sara", CreateOrderInput{
		Items:          []CreateOrderItemInput{{ProductID: 1, Quantity: 1}},
		DeliveryMethod: model.DeliveryMethodPickup,
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), o.ID, "buyer-1")
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), o.ID, "seller-1")
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), o.ID, "stranger")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), 9999, "buyer-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
