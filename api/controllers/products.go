package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type productRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=4000"`
	Category    string           `json:"category" validate:"required,max=100"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	ImageRef    string           `json:"imageRef" validate:"max=2048"`
	Stock       int64            `json:"stock" validate:"min=0"`
}

func (p productRequest) toInput() (product.ProductInput, error) {
	if p.Price.IsNegative() {
		return product.ProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	priceCents, err := money.ToCents(*p.Price)
	if err != nil {
		return product.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price is out of range")
	}
	return product.ProductInput{
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Category:    strings.TrimSpace(p.Category),
		PriceCents:  priceCents,
		ImageRef:    strings.TrimSpace(p.ImageRef),
		Stock:       p.Stock,
	}, nil
}

func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !productServiceReady(w, r, svc, logg) {
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ListProductsByCategory(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !productServiceReady(w, r, svc, logg) {
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListByCategory(r.Context(), chi.URLParam(r, "category"), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func CountProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !productServiceReady(w, r, svc, logg) {
			return
		}
		count, err := svc.CountProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"count": count})
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !productServiceReady(w, r, svc, logg) {
			return
		}
		dto, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !productServiceReady(w, r, svc, logg) {
			return
		}
		input, err := decodeProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpsertProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !productServiceReady(w, r, svc, logg) {
			return
		}
		input, err := decodeProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.UpsertProduct(r.Context(), chi.URLParam(r, "productId"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !productServiceReady(w, r, svc, logg) {
			return
		}
		deleted, err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"deletedCount": deleted})
	}
}

func decodeProduct(r *http.Request) (product.ProductInput, error) {
	var payload productRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return product.ProductInput{}, err
	}
	return payload.toInput()
}

func productServiceReady(w http.ResponseWriter, r *http.Request, svc product.Service, logg *logger.Logger) bool {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
		return false
	}
	return true
}
