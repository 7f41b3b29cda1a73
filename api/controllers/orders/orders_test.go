package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	internalorders "github.com/angelmondragon/storefront-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubService struct {
	upsert    func(context.Context, internalorders.SubmitInput) (*internalorders.WriteResult, error)
	replace   func(context.Context, internalorders.SubmitInput) (*internalorders.WriteResult, error)
	customer  func(context.Context, string, string) (*internalorders.CustomerOrders, error)
	list      func(context.Context, pagination.Params) (*internalorders.OrderList, error)
	count     func(context.Context) (int64, error)
	deleteKey func(context.Context, string) (*internalorders.DeleteResult, error)
}

func (s *stubService) UpsertOrder(ctx context.Context, input internalorders.SubmitInput) (*internalorders.WriteResult, error) {
	return s.upsert(ctx, input)
}

func (s *stubService) ReplaceOrder(ctx context.Context, input internalorders.SubmitInput) (*internalorders.WriteResult, error) {
	return s.replace(ctx, input)
}

func (s *stubService) CustomerOrders(ctx context.Context, email, caller string) (*internalorders.CustomerOrders, error) {
	return s.customer(ctx, email, caller)
}

func (s *stubService) CustomerTotalCents(context.Context, string) (int64, error) {
	return 0, nil
}

func (s *stubService) ListOrders(ctx context.Context, params pagination.Params) (*internalorders.OrderList, error) {
	return s.list(ctx, params)
}

func (s *stubService) CountOrders(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s *stubService) DeleteOrder(ctx context.Context, key string) (*internalorders.DeleteResult, error) {
	return s.deleteKey(ctx, key)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestUpsertParsesQuantityAndMoney(t *testing.T) {
	var captured internalorders.SubmitInput
	svc := &stubService{upsert: func(_ context.Context, input internalorders.SubmitInput) (*internalorders.WriteResult, error) {
		captured = input
		return &internalorders.WriteResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}}

	body := `{"orderId":"A","customerEmail":"a@x.com","productName":"Mug","unitPrice":"3.50","imageRef":"mug.png","quantity":"2","lineTotal":7}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Upsert(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "A", captured.OrderID)
	require.Equal(t, int64(2), captured.Quantity)
	require.Equal(t, int64(350), captured.UnitPriceCents)
	require.Equal(t, int64(700), captured.LineTotalCents)
	require.Contains(t, rec.Body.String(), `"matchedCount":1`)
}

func TestUpsertRejectsNonIntegerQuantity(t *testing.T) {
	svc := &stubService{upsert: func(context.Context, internalorders.SubmitInput) (*internalorders.WriteResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	for _, quantity := range []string{`1.5`, `"abc"`, `null`} {
		body := `{"orderId":"A","quantity":` + quantity + `}`
		rec := httptest.NewRecorder()
		Upsert(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/orders", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, "quantity %s", quantity)
		require.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, rec))
	}
}

func TestUpsertRejectsMoneyBeyondCentsRange(t *testing.T) {
	svc := &stubService{upsert: func(context.Context, internalorders.SubmitInput) (*internalorders.WriteResult, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	for _, field := range []string{"unitPrice", "lineTotal"} {
		body := `{"orderId":"A","quantity":1,"` + field + `":"1e30"}`
		rec := httptest.NewRecorder()
		Upsert(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/orders", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, field)
		require.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, rec))
		require.Contains(t, rec.Body.String(), field)
	}
}

func TestUpsertRejectsMissingOrderID(t *testing.T) {
	svc := &stubService{}
	rec := httptest.NewRecorder()
	Upsert(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/orders", strings.NewReader(`{"quantity":1}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpsertPropagatesDependencyError(t *testing.T) {
	svc := &stubService{upsert: func(context.Context, internalorders.SubmitInput) (*internalorders.WriteResult, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "write order")
	}}
	rec := httptest.NewRecorder()
	Upsert(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/orders", strings.NewReader(`{"orderId":"A","quantity":1}`)))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReplaceUsesReplaceSemantics(t *testing.T) {
	called := false
	svc := &stubService{replace: func(_ context.Context, input internalorders.SubmitInput) (*internalorders.WriteResult, error) {
		called = true
		require.Equal(t, int64(5), input.Quantity)
		return &internalorders.WriteResult{}, nil
	}}
	rec := httptest.NewRecorder()
	Replace(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/orders/replace", strings.NewReader(`{"orderId":"A","quantity":5}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
}

func TestCustomerOrdersRequiresIdentity(t *testing.T) {
	svc := &stubService{customer: func(_ context.Context, email, caller string) (*internalorders.CustomerOrders, error) {
		require.Equal(t, "a@x.com", email)
		require.Equal(t, "a@x.com", caller)
		return &internalorders.CustomerOrders{Orders: []internalorders.OrderView{}, Count: 0, Total: "0.00"}, nil
	}}

	router := chi.NewRouter()
	router.Get("/api/v1/customers/{email}/orders", CustomerOrders(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers/a@x.com/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/a@x.com/orders", nil)
	req = req.WithContext(middleware.WithCustomerEmail(req.Context(), "a@x.com"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"orders":[],"count":0,"total":"0.00","totalCents":0}}`, rec.Body.String())
}

func TestListParsesPaging(t *testing.T) {
	svc := &stubService{list: func(_ context.Context, params pagination.Params) (*internalorders.OrderList, error) {
		require.Equal(t, 2, params.Page)
		require.Equal(t, 5, params.Size)
		return &internalorders.OrderList{Orders: []internalorders.OrderView{}, Page: 2, Size: 5}, nil
	}}
	rec := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=2&size=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	List(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?size=1000", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountAndDelete(t *testing.T) {
	key := uuid.New()
	svc := &stubService{
		count: func(context.Context) (int64, error) { return 3, nil },
		deleteKey: func(_ context.Context, raw string) (*internalorders.DeleteResult, error) {
			require.Equal(t, key.String(), raw)
			return &internalorders.DeleteResult{DeletedCount: 1}, nil
		},
	}

	router := chi.NewRouter()
	router.Get("/api/v1/orders/count", Count(svc, nil))
	router.Delete("/api/v1/orders/{storageKey}", Delete(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/count", nil))
	require.JSONEq(t, `{"data":{"count":3}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/orders/"+key.String(), nil))
	require.JSONEq(t, `{"data":{"deletedCount":1}}`, rec.Body.String())
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	Count(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/count", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
