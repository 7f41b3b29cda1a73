package payments

import (
	"context"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
)

type intentCreator func(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)

type stripeProcessor struct {
	create intentCreator
}

// NewStripeProcessor returns a Processor backed by the PaymentIntents service of
// the given client. Requests carry that client's key, never a package-level one.
func NewStripeProcessor(api *pkgstripe.Client) Processor {
	sc := api.API()
	if sc == nil {
		return nil
	}
	return newStripeProcessor(sc)
}

func newStripeProcessor(sc *stripe.Client) *stripeProcessor {
	return &stripeProcessor{create: func(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
		return sc.V1PaymentIntents.Create(ctx, params)
	}}
}

func (p *stripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	pi, err := p.create(ctx, buildIntentParams(req))
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func buildIntentParams(req IntentRequest) *stripe.PaymentIntentCreateParams {
	params := &stripe.PaymentIntentCreateParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice(req.PaymentMethods),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	return params
}

// 4xx answers mean Stripe refused this request; anything else is an outage.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		details := map[string]any{"type": string(stripeErr.Type)}
		if stripeErr.Code != "" {
			details["code"] = string(stripeErr.Code)
		}
		if stripeErr.HTTPStatusCode >= http.StatusBadRequest && stripeErr.HTTPStatusCode < http.StatusInternalServerError &&
			stripeErr.HTTPStatusCode != http.StatusTooManyRequests {
			return pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "payment processor rejected the request").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment processor unavailable").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment processor unavailable")
}

type disabledProcessor struct {
	reason string
}

// NewDisabledProcessor returns a Processor that refuses every intent with a
// dependency error. It stands in when no processor credentials are configured.
func NewDisabledProcessor(reason string) Processor {
	return disabledProcessor{reason: reason}
}

func (p disabledProcessor) CreateIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment processor unavailable").
		WithDetails(map[string]any{"reason": p.reason})
}
