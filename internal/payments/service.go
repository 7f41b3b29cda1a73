package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// Processor creates payment intents with an external payment provider.
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// OrderTotals exposes the stored per-customer total used for reconciliation.
type OrderTotals interface {
	CustomerTotalCents(ctx context.Context, email string) (int64, error)
}

// IntentRequest is what the processor receives. Amount is in minor units.
type IntentRequest struct {
	AmountCents    int64
	Currency       string
	PaymentMethods []string
	IdempotencyKey string
	Metadata       map[string]string
}

// Intent is the processor's answer.
type Intent struct {
	ID           string
	ClientSecret string
}

// CreateIntentInput carries the client cart total plus the optional identity used to
// reconcile it against the ledger.
type CreateIntentInput struct {
	TotalCost      decimal.Decimal
	CustomerEmail  string
	CallerEmail    string
	IdempotencyKey string
}

// IntentResult is returned to the client. Only the secret leaves the server.
type IntentResult struct {
	ClientSecret string `json:"clientSecret"`
}

// DefaultMaxAmountCents is Stripe's eight-digit ceiling for a single charge (999,999.99).
const DefaultMaxAmountCents int64 = 99_999_999

// Settings are the processor parameters taken from configuration.
type Settings struct {
	Currency       string
	PaymentMethods []string
	// MaxAmountCents caps a single intent. Zero means DefaultMaxAmountCents.
	MaxAmountCents int64
}

type Service interface {
	CreatePaymentIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error)
}

type service struct {
	processor Processor
	totals    OrderTotals
	settings  Settings
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// NewService builds the payment intent bridge. metrics and logg may be nil.
func NewService(processor Processor, totals OrderTotals, settings Settings, m *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if processor == nil {
		return nil, fmt.Errorf("payment processor required")
	}
	if totals == nil {
		return nil, fmt.Errorf("order totals required")
	}
	settings.Currency = strings.ToLower(strings.TrimSpace(settings.Currency))
	if settings.Currency == "" {
		settings.Currency = "usd"
	}
	methods := make([]string, 0, len(settings.PaymentMethods))
	for _, m := range settings.PaymentMethods {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			methods = append(methods, trimmed)
		}
	}
	if len(methods) == 0 {
		methods = []string{"card"}
	}
	settings.PaymentMethods = methods
	if settings.MaxAmountCents <= 0 {
		settings.MaxAmountCents = DefaultMaxAmountCents
	}

	return &service{
		processor: processor,
		totals:    totals,
		settings:  settings,
		metrics:   m,
		logg:      logg,
	}, nil
}

func (s *service) CreatePaymentIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error) {
	if !input.TotalCost.IsPositive() {
		s.metrics.IncPaymentIntent("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "totalCost must be greater than zero")
	}
	amount, err := money.ToCents(input.TotalCost)
	if err != nil {
		s.metrics.IncPaymentIntent("rejected")
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "totalCost is out of range").
			WithDetails(map[string]any{"field": "totalCost", "max": money.Format(s.settings.MaxAmountCents)})
	}
	if amount <= 0 {
		s.metrics.IncPaymentIntent("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "totalCost rounds to zero")
	}
	if amount > s.settings.MaxAmountCents {
		s.metrics.IncPaymentIntent("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "totalCost exceeds the maximum charge").
			WithDetails(map[string]any{"field": "totalCost", "max": money.Format(s.settings.MaxAmountCents)})
	}

	metadata := map[string]string{}
	if email := auth.NormalizeEmail(input.CustomerEmail); email != "" {
		if err := s.reconcile(ctx, email, input.CallerEmail, amount); err != nil {
			return nil, err
		}
		metadata["customer_email"] = email
	}

	intent, err := s.processor.CreateIntent(ctx, IntentRequest{
		AmountCents:    amount,
		Currency:       s.settings.Currency,
		PaymentMethods: s.settings.PaymentMethods,
		IdempotencyKey: strings.TrimSpace(input.IdempotencyKey),
		Metadata:       metadata,
	})
	if err != nil {
		s.metrics.IncPaymentIntent("failed")
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "amount_cents", amount), "payment intent creation failed", err)
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	s.metrics.IncPaymentIntent("created")
	return &IntentResult{ClientSecret: intent.ClientSecret}, nil
}

func (s *service) reconcile(ctx context.Context, email, callerEmail string, amount int64) error {
	if auth.NormalizeEmail(callerEmail) == "" {
		s.metrics.IncPaymentIntent("rejected")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "credential required to reconcile a customer total")
	}
	if !auth.SameIdentity(email, callerEmail) {
		s.metrics.IncPaymentIntent("rejected")
		return pkgerrors.New(pkgerrors.CodeForbidden, "credential does not match requested customer")
	}

	stored, err := s.totals.CustomerTotalCents(ctx, email)
	if err != nil {
		s.metrics.IncPaymentIntent("failed")
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer total")
	}
	if stored != amount {
		s.metrics.IncPaymentIntent("mismatch")
		return pkgerrors.New(pkgerrors.CodeStateConflict, "totalCost does not match stored orders").
			WithDetails(map[string]any{
				"requested": money.Format(amount),
				"stored":    money.Format(stored),
			})
	}
	return nil
}
