package middleware

import "context"

type contextKey string

const ctxCustomerEmail contextKey = "customer_email"

// CustomerEmailFromContext returns the authenticated customer identity, if any.
func CustomerEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCustomerEmail).(string); ok {
		return v
	}
	return ""
}

// WithCustomerEmail injects the authenticated customer identity into the context.
func WithCustomerEmail(ctx context.Context, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomerEmail, email)
}
