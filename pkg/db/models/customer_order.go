package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerOrder is one merged order line keyed by the caller-supplied order_id.
type CustomerOrder struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        string    `gorm:"column:order_id;not null;uniqueIndex:customer_orders_order_id_key"`
	CustomerEmail  string    `gorm:"column:customer_email;not null;index"`
	ProductName    string    `gorm:"column:product_name;not null;default:''"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null;default:0"`
	ImageRef       string    `gorm:"column:image_ref;not null;default:''"`
	Quantity       int64     `gorm:"column:quantity;not null;default:0"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null;default:0"`
	Revision       int64     `gorm:"column:revision;not null;default:1"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CustomerOrder) TableName() string { return "customer_orders" }

// BeforeCreate assigns the storage key when the caller did not.
func (o *CustomerOrder) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Inserted reports whether the row was created by the write that returned it.
func (o CustomerOrder) Inserted() bool {
	return o.Revision == 1
}
