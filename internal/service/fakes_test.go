package service

import (
	"context"
	"errors"
	"sync"

	"github.com/ethioshop/ethioshop-backend/internal/chapa"
	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"gorm.io/gorm"
)

// In-memory repositories backing the service tests. They reproduce the
// guard semantics of the SQL layer (conditional updates reporting rows
// affected) so race-sensitive paths can be tested without a database.

type fakeOrderRepo struct {
	mu            sync.Mutex
	nextID        uint64
	orders        map[uint64]*model.Order
	sessionRefErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: map[uint64]*model.Order{}}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if o.BuyerUID == buyerUID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if o.SellerUID == sellerUID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CASPaymentStatus(ctx context.Context, id uint64, from, to model.PaymentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.PaymentStatus != from {
		return 0, nil
	}
	o.PaymentStatus = to
	return 1, nil
}

func (r *fakeOrderRepo) SetSessionRef(ctx context.Context, id uint64, sessionRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionRefErr != nil {
		return r.sessionRefErr
	}
	if o, ok := r.orders[id]; ok {
		o.SessionRef = sessionRef
	}
	return nil
}

func (r *fakeOrderRepo) MarkPaid(ctx context.Context, id uint64, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.PaymentStatus = model.PaymentStatusPaid
	o.Status = model.OrderStatusConfirmed
	o.TransactionID = transactionID
	return nil
}

func (r *fakeOrderRepo) MarkEscrowReleasedIfDue(ctx context.Context, id uint64, transferID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != model.OrderStatusDelivered || o.PaymentStatus != model.PaymentStatusPaid || o.EscrowReleased {
		return 0, nil
	}
	o.EscrowReleased = true
	o.TransferID = transferID
	return 1, nil
}

func (r *fakeOrderRepo) SetDB(db *gorm.DB) {}

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   uint64
	products map[uint64]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{nextID: 1, products: map[uint64]*model.Product{}}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]model.Product, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (r *fakeProductRepo) AddImage(ctx context.Context, img *model.ProductImage) error {
	return nil
}

func (r *fakeProductRepo) ListImages(ctx context.Context, productID uint64) ([]model.ProductImage, error) {
	return nil, nil
}

func (r *fakeProductRepo) SetDB(db *gorm.DB) {}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*model.User
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.UID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) SetFCMToken(ctx context.Context, uid, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.FCMToken = token
	return nil
}

func (r *fakeUserRepo) SetDB(db *gorm.DB) {}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*model.Payment{}}
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.TxRef] = &cp
	return nil
}

func (r *fakePaymentRepo) FindByTxRef(ctx context.Context, txRef string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[txRef]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) FindSuccessfulByOrder(ctx context.Context, orderID uint64) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.OrderID == orderID && p.Status == model.PaymentRecordStatusSuccess {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) MarkSucceededIfPending(ctx context.Context, txRef, transactionID, providerMeta string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[txRef]
	if !ok || p.Status != model.PaymentRecordStatusPending {
		return 0, nil
	}
	p.Status = model.PaymentRecordStatusSuccess
	p.TransactionID = transactionID
	p.ProviderMeta = providerMeta
	return 1, nil
}

func (r *fakePaymentRepo) SetDB(db *gorm.DB) {}

// fakeGateway records calls and can be programmed to fail.
type fakeGateway struct {
	mu            sync.Mutex
	initCalls     []chapa.InitializeRequest
	transferCalls []chapa.TransferRequest
	initErr       error
	transferErr   error
	checkoutURL   string
	transferID    string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{checkoutURL: "https://checkout.chapa.co/c/abc", transferID: "tr_123"}
}

func (g *fakeGateway) InitializeTransaction(ctx context.Context, req chapa.InitializeRequest) (*chapa.InitializeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls = append(g.initCalls, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &chapa.InitializeResponse{CheckoutURL: g.checkoutURL}, nil
}

func (g *fakeGateway) Transfer(ctx context.Context, req chapa.TransferRequest) (*chapa.TransferResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transferCalls = append(g.transferCalls, req)
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	return &chapa.TransferResponse{TransferID: g.transferID}, nil
}

// recordingNotifier captures Notify calls so tests can assert on them.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	RecipientUID string
	Type         string
	Title        string
	Body         string
}

func (n *recordingNotifier) Notify(ctx context.Context, recipientUID, typ, title, body string, orderID, productID, convID *uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{RecipientUID: recipientUID, Type: typ, Title: title, Body: body})
}

func (n *recordingNotifier) SendPush(ctx context.Context, recipientUID, title, body string, data map[string]string) error {
	return nil
}

func (n *recordingNotifier) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	return nil, 0, nil
}

func (n *recordingNotifier) MarkAllRead(ctx context.Context, userUID string) error {
	return nil
}

func (n *recordingNotifier) typesFor(uid string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, c := range n.calls {
		if c.RecipientUID == uid {
			out = append(out, c.Type)
		}
	}
	return out
}

// recordingEscrow counts Release calls without doing anything.
type recordingEscrow struct {
	mu       sync.Mutex
	released []uint64
}

func (e *recordingEscrow) Release(ctx context.Context, orderID uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.released = append(e.released, orderID)
}
