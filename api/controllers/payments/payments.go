package payments

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	internalpayments "github.com/angelmondragon/storefront-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const maxIdempotencyKeyLength = 255

type createIntentRequest struct {
	TotalCost     *decimal.Decimal `json:"totalCost" validate:"required"`
	CustomerEmail string           `json:"customerEmail"`
}

// CreateIntent opens a processor payment intent for the cart total and returns its client secret.
func CreateIntent(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePaymentIntent(r.Context(), internalpayments.CreateIntentInput{
			TotalCost:      *payload.TotalCost,
			CustomerEmail:  strings.TrimSpace(payload.CustomerEmail),
			CallerEmail:    middleware.CustomerEmailFromContext(r.Context()),
			IdempotencyKey: validators.SanitizeString(r.Header.Get("Idempotency-Key"), maxIdempotencyKeyLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
