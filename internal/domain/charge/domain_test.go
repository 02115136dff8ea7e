package charge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	"github.com/houi19lb/Gstore-theme-sub001/internal/port/outbound"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// --- Mock Implementations ---

type MockOrderDatabasePort struct {
	mock.Mock
}

func (m *MockOrderDatabasePort) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderDatabasePort) TransitionStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus, from []model.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, to, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderDatabasePort) MarkPaid(ctx context.Context, id uuid.UUID, paymentRef string, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, paymentRef, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderDatabasePort) UpdateBilling(ctx context.Context, id uuid.UUID, billing model.BillingDetails, meta map[string]string) error {
	args := m.Called(ctx, id, billing, meta)
	return args.Error(0)
}

type MockOrderNotePort struct {
	mock.Mock
}

func (m *MockOrderNotePort) AddNote(ctx context.Context, orderID uuid.UUID, body string) error {
	args := m.Called(ctx, orderID, body)
	return args.Error(0)
}

type MockChargeArtifactDatabasePort struct {
	mock.Mock
}

func (m *MockChargeArtifactDatabasePort) Upsert(ctx context.Context, artifact *model.ChargeArtifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *MockChargeArtifactDatabasePort) Update(ctx context.Context, artifact *model.ChargeArtifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *MockChargeArtifactDatabasePort) FindByOrder(ctx context.Context, orderID uuid.UUID, kind model.GatewayKind) (*model.ChargeArtifact, error) {
	args := m.Called(ctx, orderID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChargeArtifact), args.Error(1)
}

func (m *MockChargeArtifactDatabasePort) FindByProviderRef(ctx context.Context, kind model.GatewayKind, ref string) (*model.ChargeArtifact, error) {
	args := m.Called(ctx, kind, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChargeArtifact), args.Error(1)
}

func (m *MockChargeArtifactDatabasePort) FindBySecondaryRef(ctx context.Context, kind model.GatewayKind, ref string) (*model.ChargeArtifact, error) {
	args := m.Called(ctx, kind, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChargeArtifact), args.Error(1)
}

func (m *MockChargeArtifactDatabasePort) ListPollable(ctx context.Context, kind model.GatewayKind, since time.Time, limit int) ([]*model.ChargeArtifact, error) {
	args := m.Called(ctx, kind, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ChargeArtifact), args.Error(1)
}

type MockWebhookEventDatabasePort struct {
	mock.Mock
}

func (m *MockWebhookEventDatabasePort) Create(ctx context.Context, event *model.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockWebhookEventDatabasePort) MarkProcessed(ctx context.Context, id uuid.UUID, orderID *uuid.UUID, processErr error) error {
	args := m.Called(ctx, id, orderID, processErr)
	return args.Error(0)
}

type MockCommercePort struct {
	mock.Mock
}

func (m *MockCommercePort) ReduceStock(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockCommercePort) ClearCart(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockChargeGatewayPort struct {
	mock.Mock
	kind model.GatewayKind
}

func (m *MockChargeGatewayPort) Kind() model.GatewayKind {
	return m.kind
}

func (m *MockChargeGatewayPort) Create(ctx context.Context, payload map[string]any) (*model.ChargeSnapshot, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChargeSnapshot), args.Error(1)
}

func (m *MockChargeGatewayPort) Consult(ctx context.Context, ref string) (*model.ChargeSnapshot, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChargeSnapshot), args.Error(1)
}

func (m *MockChargeGatewayPort) ParseNotification(body []byte) (*model.ChargeSnapshot, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChargeSnapshot), args.Error(1)
}

type MockEventPublisherPort struct {
	mock.Mock
}

func (m *MockEventPublisherPort) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockSweepLockPort struct {
	mock.Mock
}

func (m *MockSweepLockPort) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSweepLockPort) Unlock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockPayloadArchivePort struct {
	mock.Mock
}

func (m *MockPayloadArchivePort) Archive(ctx context.Context, kind model.GatewayKind, ref string, body []byte) error {
	args := m.Called(ctx, kind, ref, body)
	return args.Error(0)
}

// staticSettings implements outbound.GatewaySettingsPort from a map.
type staticSettings map[model.GatewayKind]model.GatewaySettings

func (s staticSettings) Settings(kind model.GatewayKind) model.GatewaySettings {
	return s[kind]
}

// --- Test helpers ---

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	orders    *MockOrderDatabasePort
	notes     *MockOrderNotePort
	artifacts *MockChargeArtifactDatabasePort
	webhooks  *MockWebhookEventDatabasePort
	commerce  *MockCommercePort
	link      *MockChargeGatewayPort
	pix       *MockChargeGatewayPort
	publisher *MockEventPublisherPort
	lock      *MockSweepLockPort
	// archive is wired into the domain only when non-nil.
	archive  *MockPayloadArchivePort
	settings staticSettings
}

func newTestDeps() *testDeps {
	return &testDeps{
		orders:    new(MockOrderDatabasePort),
		notes:     new(MockOrderNotePort),
		artifacts: new(MockChargeArtifactDatabasePort),
		webhooks:  new(MockWebhookEventDatabasePort),
		commerce:  new(MockCommercePort),
		link:      &MockChargeGatewayPort{kind: model.GatewayLinkCheckout},
		pix:       &MockChargeGatewayPort{kind: model.GatewayPix},
		publisher: new(MockEventPublisherPort),
		lock:      new(MockSweepLockPort),
		settings: staticSettings{
			model.GatewayLinkCheckout: {Token: "link-token", MaxInstallments: 3},
			model.GatewayPix:          {Token: "pix-token", PixExpiration: 30 * time.Minute},
		},
	}
}

func (td *testDeps) domain(withLock bool) *chargeDomain {
	var lock outbound.SweepLockPort
	if withLock {
		lock = td.lock
	}
	var archive outbound.PayloadArchivePort
	if td.archive != nil {
		archive = td.archive
	}
	d := NewChargeDomain(
		td.orders,
		td.notes,
		td.artifacts,
		td.webhooks,
		td.commerce,
		[]outbound.ChargeGatewayPort{td.link, td.pix},
		td.settings,
		td.publisher,
		archive,
		lock,
		&Config{
			StoreName:       "Gstore",
			ConfirmationURL: "https://shop.example/order-received/{order}",
			PublicURL:       "https://pay.example",
			PollWindow:      24 * time.Hour,
			PollBatchSize:   50,
			PollLockTTL:     time.Minute,
		},
		zap.NewNop(),
	).(*chargeDomain)
	d.now = func() time.Time { return testNow }
	return d
}

func newTestOrder(status model.OrderStatus) *model.Order {
	return &model.Order{
		ID:       uuid.New(),
		Number:   "1042",
		Status:   status,
		Currency: "BRL",
		Total:    decimal.RequireFromString("150.00"),
		Billing: model.BillingDetails{
			FirstName: "Ana",
			LastName:  "Souza",
			Email:     "ana@example.com",
			Phone:     "+55 (62) 91234-5678",
			Address1:  "Rua das Flores",
			Number:    "100",
			City:      "Goiania",
			State:     "GO",
			Postcode:  "74000-000",
			Country:   "BR",
		},
		BillingMeta: map[string]string{"billing_cpf": "123.456.789-09"},
		CreatedAt:   testNow.Add(-time.Hour),
	}
}

func newTestArtifact(orderID uuid.UUID, kind model.GatewayKind, state model.ChargeState) *model.ChargeArtifact {
	return &model.ChargeArtifact{
		ID:          uuid.New(),
		OrderID:     orderID,
		Kind:        kind,
		ProviderRef: "ref-123",
		State:       state,
		CreatedAt:   testNow.Add(-time.Hour),
	}
}
