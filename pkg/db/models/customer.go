package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is created or refreshed whenever a credential is issued for an email.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:customers_email_key"`
	Name      string    `gorm:"column:name;not null;default:''"`
	PhotoRef  string    `gorm:"column:photo_ref;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// All lists every model managed by the storefront schema, in dependency order.
func All() []any {
	return []any{&Customer{}, &Product{}, &CustomerOrder{}}
}
