package orders

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the customer_orders ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MergeUpsert(ctx context.Context, order *models.CustomerOrder) (*models.CustomerOrder, error)
	ReplaceUpsert(ctx context.Context, order *models.CustomerOrder) (*models.CustomerOrder, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.CustomerOrder, error)
	ListByEmail(ctx context.Context, email string) ([]models.CustomerOrder, error)
	List(ctx context.Context, params pagination.Params) ([]models.CustomerOrder, error)
	Count(ctx context.Context) (int64, error)
	DeleteByStorageKey(ctx context.Context, id uuid.UUID) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EventPublisher delivers serialized order events. pkg/pubsub.TopicPublisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}
