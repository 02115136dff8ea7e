package charge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
	apperrors "github.com/houi19lb/Gstore-theme-sub001/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func noteContaining(substr string) interface{} {
	return mock.MatchedBy(func(body string) bool { return strings.Contains(body, substr) })
}

func TestChargeDomain_CreateCharge_LinkCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusCreated)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.link.On("Create", mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
			return p["amount"] == "150.00" &&
				p["reference"] == "1042" &&
				p["notification_url"] == "https://pay.example/webhooks/linkcheckout" &&
				p["redirect_url"] == "https://shop.example/order-received/1042"
		})).Return(&model.ChargeSnapshot{
			Kind:             model.GatewayLinkCheckout,
			ProviderRef:      "lnk_1",
			Status:           "active",
			LinkURL:          "https://pay.linkcheckout.example/lnk_1",
			SmartCheckoutURL: "https://smart.linkcheckout.example/lnk_1",
		}, nil)
		td.artifacts.On("FindByOrder", mock.Anything, order.ID, model.GatewayLinkCheckout).Return(nil, nil)
		td.artifacts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *model.ChargeArtifact) bool {
			return a.ProviderRef == "lnk_1" && a.State == model.ChargeStatePending && a.OrderID == order.ID
		})).Return(nil)
		td.notes.On("AddNote", mock.Anything, order.ID, "LinkCheckout: payment link created (link lnk_1).").Return(nil)
		td.commerce.On("ReduceStock", mock.Anything, order).Return(nil)
		td.commerce.On("ClearCart", mock.Anything, order).Return(nil)
		td.orders.On("TransitionStatus", mock.Anything, order.ID, model.OrderStatusPending,
			model.StatusesAllowingTransitionTo(model.OrderStatusPending)).Return(true, nil)

		result, err := d.CreateCharge(ctx, order.ID, model.GatewayLinkCheckout)

		require.NoError(t, err)
		assert.Equal(t, "https://smart.linkcheckout.example/lnk_1", result.RedirectURL)
		assert.Equal(t, "lnk_1", result.Artifact.ProviderRef)
		td.orders.AssertExpectations(t)
		td.artifacts.AssertExpectations(t)
		td.notes.AssertExpectations(t)
		td.commerce.AssertExpectations(t)
	})

	t.Run("failed order reuses existing artifact", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusFailed)
		existing := newTestArtifact(order.ID, model.GatewayLinkCheckout, model.ChargeStatePending)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.link.On("Create", mock.Anything, mock.Anything).Return(&model.ChargeSnapshot{
			Kind:        model.GatewayLinkCheckout,
			ProviderRef: "lnk_2",
			LinkURL:     "https://pay.linkcheckout.example/lnk_2",
		}, nil)
		td.artifacts.On("FindByOrder", mock.Anything, order.ID, model.GatewayLinkCheckout).Return(existing, nil)
		td.artifacts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *model.ChargeArtifact) bool {
			return a.ID == existing.ID && a.ProviderRef == "lnk_2"
		})).Return(nil)
		td.notes.On("AddNote", mock.Anything, order.ID, mock.Anything).Return(nil)
		td.commerce.On("ReduceStock", mock.Anything, order).Return(nil)
		td.commerce.On("ClearCart", mock.Anything, order).Return(nil)
		td.orders.On("TransitionStatus", mock.Anything, order.ID, model.OrderStatusPending,
			model.StatusesAllowingTransitionTo(model.OrderStatusPending)).Return(true, nil)

		result, err := d.CreateCharge(ctx, order.ID, model.GatewayLinkCheckout)

		require.NoError(t, err)
		assert.Equal(t, "https://pay.linkcheckout.example/lnk_2", result.RedirectURL)
		td.artifacts.AssertExpectations(t)
		td.orders.AssertExpectations(t)
	})

	t.Run("pending order with a charge is not payable", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusPending)
		existing := newTestArtifact(order.ID, model.GatewayLinkCheckout, model.ChargeStatePending)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.artifacts.On("FindByOrder", mock.Anything, order.ID, model.GatewayLinkCheckout).Return(existing, nil)

		result, err := d.CreateCharge(ctx, order.ID, model.GatewayLinkCheckout)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrOrderNotPayable)
		td.link.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		td.artifacts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		td.commerce.AssertNotCalled(t, "ReduceStock", mock.Anything, mock.Anything)
	})

	t.Run("missing token", func(t *testing.T) {
		td := newTestDeps()
		td.settings[model.GatewayLinkCheckout] = model.GatewaySettings{}
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusCreated)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.notes.On("AddNote", mock.Anything, order.ID, noteContaining("API token is not configured")).Return(nil)

		result, err := d.CreateCharge(ctx, order.ID, model.GatewayLinkCheckout)

		assert.Nil(t, result)
		var cfgErr *apperrors.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "linkcheckout", cfgErr.Gateway)
		td.link.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		td.artifacts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		td.notes.AssertExpectations(t)
	})

	t.Run("provider error", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusCreated)

		providerErr := &apperrors.DomainError{StatusCode: 422, Message: "invalid document"}
		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.link.On("Create", mock.Anything, mock.Anything).Return(nil, providerErr)
		td.notes.On("AddNote", mock.Anything, order.ID,
			"LinkCheckout: payment creation failed: invalid document (status 422)").Return(nil)

		_, err := d.CreateCharge(ctx, order.ID, model.GatewayLinkCheckout)

		assert.ErrorIs(t, err, apperrors.ErrProviderDomain)
		assert.Equal(t, "invalid document", apperrors.CustomerMessage(err))
		td.artifacts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		td.orders.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		td.commerce.AssertNotCalled(t, "ReduceStock", mock.Anything, mock.Anything)
		td.notes.AssertExpectations(t)
	})

	t.Run("response without url", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusCreated)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.link.On("Create", mock.Anything, mock.Anything).Return(&model.ChargeSnapshot{
			Kind:        model.GatewayLinkCheckout,
			ProviderRef: "lnk_1",
		}, nil)
		td.notes.On("AddNote", mock.Anything, order.ID, noteContaining("no checkout URL")).Return(nil)

		_, err := d.CreateCharge(ctx, order.ID, model.GatewayLinkCheckout)

		assert.ErrorIs(t, err, ErrMissingDisplayData)
		td.artifacts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("stock failure does not fail the charge", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusCreated)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.link.On("Create", mock.Anything, mock.Anything).Return(&model.ChargeSnapshot{
			Kind:        model.GatewayLinkCheckout,
			ProviderRef: "lnk_1",
			LinkURL:     "https://pay.linkcheckout.example/lnk_1",
		}, nil)
		td.artifacts.On("FindByOrder", mock.Anything, order.ID, model.GatewayLinkCheckout).Return(nil, nil)
		td.artifacts.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		td.notes.On("AddNote", mock.Anything, order.ID, mock.Anything).Return(nil)
		td.commerce.On("ReduceStock", mock.Anything, order).Return(errors.New("product 7 locked"))
		td.commerce.On("ClearCart", mock.Anything, order).Return(nil)
		td.orders.On("TransitionStatus", mock.Anything, order.ID, model.OrderStatusPending, mock.Anything).Return(true, nil)

		result, err := d.CreateCharge(ctx, order.ID, model.GatewayLinkCheckout)

		require.NoError(t, err)
		assert.NotEmpty(t, result.RedirectURL)
		td.notes.AssertCalled(t, "AddNote", mock.Anything, order.ID, noteContaining("Stock could not be reduced"))
	})
}

func TestChargeDomain_CreateCharge_Pix(t *testing.T) {
	ctx := context.Background()

	t.Run("follow-up consult fills display data", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusCreated)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.pix.On("Create", mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
			return p["value"] == "150.00" && p["expires_at"] == "2026-03-10T12:30:00Z"
		})).Return(&model.ChargeSnapshot{Kind: model.GatewayPix, ProviderRef: "tx_1"}, nil)
		td.pix.On("Consult", mock.Anything, "tx_1").Return(&model.ChargeSnapshot{
			Kind:        model.GatewayPix,
			ProviderRef: "tx_1",
			Status:      "pending",
			QRCodeImage: "data:image/png;base64,AAAA",
			EMV:         "00020126580014br.gov.bcb.pix",
		}, nil)
		td.artifacts.On("FindByOrder", mock.Anything, order.ID, model.GatewayPix).Return(nil, nil)
		td.artifacts.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		td.notes.On("AddNote", mock.Anything, order.ID, "Pix: charge created (transaction tx_1).").Return(nil)
		td.commerce.On("ReduceStock", mock.Anything, order).Return(nil)
		td.commerce.On("ClearCart", mock.Anything, order).Return(nil)
		td.orders.On("TransitionStatus", mock.Anything, order.ID, model.OrderStatusPending, mock.Anything).Return(true, nil)

		result, err := d.CreateCharge(ctx, order.ID, model.GatewayPix)

		require.NoError(t, err)
		assert.Equal(t, "https://shop.example/order-received/1042", result.RedirectURL)
		assert.Equal(t, "00020126580014br.gov.bcb.pix", result.Artifact.EMV)
		assert.Equal(t, "pending", result.Artifact.ProviderStatus)
		td.pix.AssertExpectations(t)
		td.notes.AssertExpectations(t)
	})

	t.Run("response without reference", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusCreated)

		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		td.pix.On("Create", mock.Anything, mock.Anything).Return(&model.ChargeSnapshot{Kind: model.GatewayPix}, nil)
		td.notes.On("AddNote", mock.Anything, order.ID, noteContaining("no charge reference")).Return(nil)

		_, err := d.CreateCharge(ctx, order.ID, model.GatewayPix)

		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "invalid response", domainErr.Message)
		td.pix.AssertNotCalled(t, "Consult", mock.Anything, mock.Anything)
	})
}

func TestChargeDomain_CreateCharge_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("order not found", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		id := uuid.New()
		td.orders.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := d.CreateCharge(ctx, id, model.GatewayPix)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("paid order is not payable", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)
		order := newTestOrder(model.OrderStatusPaid)
		td.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := d.CreateCharge(ctx, order.ID, model.GatewayPix)

		assert.ErrorIs(t, err, ErrOrderNotPayable)
		td.pix.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown gateway", func(t *testing.T) {
		td := newTestDeps()
		d := td.domain(false)

		_, err := d.CreateCharge(ctx, uuid.New(), model.GatewayKind("boleto"))

		assert.ErrorIs(t, err, ErrGatewayNotAvailable)
		td.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
