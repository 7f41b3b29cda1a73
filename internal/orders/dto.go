package orders

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxOrderIDLength = 128

// SubmitInput is one order line submission. Quantity is a delta for merges and an
// absolute value for replacements.
type SubmitInput struct {
	OrderID        string
	CustomerEmail  string
	ProductName    string
	UnitPriceCents int64
	ImageRef       string
	Quantity       int64
	LineTotalCents int64
}

// OrderView is the API representation of a stored order line.
type OrderView struct {
	StorageKey     uuid.UUID `json:"storageKey"`
	OrderID        string    `json:"orderId"`
	CustomerEmail  string    `json:"customerEmail"`
	ProductName    string    `json:"productName"`
	UnitPrice      string    `json:"unitPrice"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	ImageRef       string    `json:"imageRef"`
	Quantity       int64     `json:"quantity"`
	LineTotal      string    `json:"lineTotal"`
	LineTotalCents int64     `json:"lineTotalCents"`
	Revision       int64     `json:"revision"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// WriteResult reports what an upsert did to the ledger.
type WriteResult struct {
	MatchedCount  int64      `json:"matchedCount"`
	ModifiedCount int64      `json:"modifiedCount"`
	UpsertedCount int64      `json:"upsertedCount"`
	UpsertedID    *uuid.UUID `json:"upsertedId"`
	Order         OrderView  `json:"order"`
}

// CustomerOrders is the per-customer aggregate computed at read time.
type CustomerOrders struct {
	Orders     []OrderView `json:"orders"`
	Count      int         `json:"count"`
	Total      string      `json:"total"`
	TotalCents int64       `json:"totalCents"`
}

// DeleteResult reports how many rows a delete removed.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// OrderList is a page of ledger rows plus the overall row count.
type OrderList struct {
	Orders []OrderView `json:"orders"`
	Page   int         `json:"page"`
	Size   int         `json:"size"`
	Total  int64       `json:"total"`
}

func toView(order models.CustomerOrder) OrderView {
	return OrderView{
		StorageKey:     order.ID,
		OrderID:        order.OrderID,
		CustomerEmail:  order.CustomerEmail,
		ProductName:    order.ProductName,
		UnitPrice:      money.Format(order.UnitPriceCents),
		UnitPriceCents: order.UnitPriceCents,
		ImageRef:       order.ImageRef,
		Quantity:       order.Quantity,
		LineTotal:      money.Format(order.LineTotalCents),
		LineTotalCents: order.LineTotalCents,
		Revision:       order.Revision,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func toViews(rows []models.CustomerOrder) []OrderView {
	views := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return views
}

func writeResultFor(order models.CustomerOrder) *WriteResult {
	result := &WriteResult{Order: toView(order)}
	if order.Inserted() {
		id := order.ID
		result.UpsertedCount = 1
		result.UpsertedID = &id
		return result
	}
	result.MatchedCount = 1
	result.ModifiedCount = 1
	return result
}

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// ParseQuantity accepts a JSON number or a numeric string and requires an integer value.
// "2", 2 and 2.0 are all 2; 1.5, "abc" and a missing value are rejected.
func ParseQuantity(raw json.RawMessage) (int64, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, fmt.Errorf("quantity is required")
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("quantity is not a number")
		}
		text = strings.TrimSpace(s)
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not a number", text)
	}
	if !value.IsInteger() {
		return 0, fmt.Errorf("quantity %s is not an integer", value.String())
	}
	if value.GreaterThan(maxInt64) || value.LessThan(minInt64) {
		return 0, fmt.Errorf("quantity %s is out of range", value.String())
	}
	return value.IntPart(), nil
}
