package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	internalpayments "github.com/angelmondragon/storefront-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubPaymentService struct {
	create func(context.Context, internalpayments.CreateIntentInput) (*internalpayments.IntentResult, error)
}

func (s stubPaymentService) CreatePaymentIntent(ctx context.Context, input internalpayments.CreateIntentInput) (*internalpayments.IntentResult, error) {
	return s.create(ctx, input)
}

func TestCreateIntentReturnsClientSecret(t *testing.T) {
	var captured internalpayments.CreateIntentInput
	svc := stubPaymentService{create: func(_ context.Context, input internalpayments.CreateIntentInput) (*internalpayments.IntentResult, error) {
		captured = input
		return &internalpayments.IntentResult{ClientSecret: "pi_123_secret"}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(`{"totalCost":19.99,"customerEmail":"a@x.com"}`))
	req.Header.Set("Idempotency-Key", "  key-1 ")
	req = req.WithContext(middleware.WithCustomerEmail(req.Context(), "a@x.com"))
	rec := httptest.NewRecorder()
	CreateIntent(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"clientSecret":"pi_123_secret"}}`, rec.Body.String())
	require.Equal(t, "19.99", captured.TotalCost.String())
	require.Equal(t, "a@x.com", captured.CustomerEmail)
	require.Equal(t, "a@x.com", captured.CallerEmail)
	require.Equal(t, "key-1", captured.IdempotencyKey)
}

func TestCreateIntentRequiresTotalCost(t *testing.T) {
	svc := stubPaymentService{create: func(context.Context, internalpayments.CreateIntentInput) (*internalpayments.IntentResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	for _, body := range []string{`{}`, `{"totalCost":"abc"}`, `not json`} {
		rec := httptest.NewRecorder()
		CreateIntent(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCreateIntentMapsServiceErrors(t *testing.T) {
	tests := []struct {
		code   pkgerrors.Code
		status int
	}{
		{pkgerrors.CodeDependency, http.StatusServiceUnavailable},
		{pkgerrors.CodeProcessor, http.StatusBadGateway},
		{pkgerrors.CodeStateConflict, http.StatusUnprocessableEntity},
		{pkgerrors.CodeForbidden, http.StatusForbidden},
	}
	for _, tt := range tests {
		svc := stubPaymentService{create: func(context.Context, internalpayments.CreateIntentInput) (*internalpayments.IntentResult, error) {
			return nil, pkgerrors.New(tt.code, "failed")
		}}
		rec := httptest.NewRecorder()
		CreateIntent(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(`{"totalCost":"5"}`)))
		require.Equal(t, tt.status, rec.Code, string(tt.code))
	}
}
