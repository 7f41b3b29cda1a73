package orders

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	internalorders "github.com/angelmondragon/storefront-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// submitOrderRequest is the wire shape of an order line. Quantity is kept raw so
// both 2 and "2" are accepted while 1.5 or "abc" become a validation error.
type submitOrderRequest struct {
	OrderID       string           `json:"orderId" validate:"required"`
	CustomerEmail string           `json:"customerEmail"`
	ProductName   string           `json:"productName"`
	UnitPrice     *decimal.Decimal `json:"unitPrice"`
	ImageRef      string           `json:"imageRef"`
	Quantity      json.RawMessage  `json:"quantity"`
	LineTotal     *decimal.Decimal `json:"lineTotal"`
}

func (p submitOrderRequest) toInput() (internalorders.SubmitInput, error) {
	quantity, err := internalorders.ParseQuantity(p.Quantity)
	if err != nil {
		return internalorders.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arithmetic error").
			WithDetails(map[string]any{"field": "quantity", "error": err.Error()})
	}
	unitPrice, err := centsOrZero("unitPrice", p.UnitPrice)
	if err != nil {
		return internalorders.SubmitInput{}, err
	}
	lineTotal, err := centsOrZero("lineTotal", p.LineTotal)
	if err != nil {
		return internalorders.SubmitInput{}, err
	}
	return internalorders.SubmitInput{
		OrderID:        p.OrderID,
		CustomerEmail:  p.CustomerEmail,
		ProductName:    p.ProductName,
		UnitPriceCents: unitPrice,
		ImageRef:       p.ImageRef,
		Quantity:       quantity,
		LineTotalCents: lineTotal,
	}, nil
}

func centsOrZero(field string, amount *decimal.Decimal) (int64, error) {
	if amount == nil {
		return 0, nil
	}
	cents, err := money.ToCents(*amount)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arithmetic error").
			WithDetails(map[string]any{"field": field, "error": err.Error()})
	}
	return cents, nil
}

// Upsert merges the submitted quantity delta into the order keyed by orderId.
func Upsert(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return submit(svc, logg, func(svc internalorders.Service, r *http.Request, input internalorders.SubmitInput) (*internalorders.WriteResult, error) {
		return svc.UpsertOrder(r.Context(), input)
	})
}

// Replace overwrites the order keyed by orderId, quantity included.
func Replace(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return submit(svc, logg, func(svc internalorders.Service, r *http.Request, input internalorders.SubmitInput) (*internalorders.WriteResult, error) {
		return svc.ReplaceOrder(r.Context(), input)
	})
}

type writeFunc func(internalorders.Service, *http.Request, internalorders.SubmitInput) (*internalorders.WriteResult, error)

func submit(svc internalorders.Service, logg *logger.Logger, write writeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !serviceReady(w, r, svc, logg) {
			return
		}

		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, input.OrderID)
		}
		result, err := write(svc, r.WithContext(ctx), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// List returns a page of every order in the ledger.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !serviceReady(w, r, svc, logg) {
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListOrders(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Count(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !serviceReady(w, r, svc, logg) {
			return
		}
		count, err := svc.CountOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"count": count})
	}
}

// Delete removes an order by its storage key, not by orderId.
func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !serviceReady(w, r, svc, logg) {
			return
		}
		result, err := svc.DeleteOrder(r.Context(), chi.URLParam(r, "storageKey"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CustomerOrders returns the caller's own orders with count and exact total.
func CustomerOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !serviceReady(w, r, svc, logg) {
			return
		}
		caller := middleware.CustomerEmailFromContext(r.Context())
		if caller == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		email, err := url.PathUnescape(chi.URLParam(r, "email"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid email"))
			return
		}
		aggregate, err := svc.CustomerOrders(r.Context(), email, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, aggregate)
	}
}

func serviceReady(w http.ResponseWriter, r *http.Request, svc internalorders.Service, logg *logger.Logger) bool {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
		return false
	}
	return true
}
