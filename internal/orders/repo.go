package orders

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The quantity increment happens inside the statement, so concurrent merges on the
// same order_id serialize on the row and never lose an update. The WHERE guard skips
// the update when the sum would exceed the bound passed as the last argument.
const mergeUpsertSQL = `
INSERT INTO customer_orders (
  id, order_id, customer_email, product_name, unit_price_cents, image_ref,
  quantity, line_total_cents, revision, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (order_id) DO UPDATE SET
  customer_email = excluded.customer_email,
  product_name = excluded.product_name,
  unit_price_cents = excluded.unit_price_cents,
  image_ref = excluded.image_ref,
  quantity = customer_orders.quantity + excluded.quantity,
  line_total_cents = excluded.line_total_cents,
  revision = customer_orders.revision + 1,
  updated_at = excluded.updated_at
WHERE customer_orders.quantity <= ? - excluded.quantity`

const replaceUpsertSQL = `
INSERT INTO customer_orders (
  id, order_id, customer_email, product_name, unit_price_cents, image_ref,
  quantity, line_total_cents, revision, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (order_id) DO UPDATE SET
  customer_email = excluded.customer_email,
  product_name = excluded.product_name,
  unit_price_cents = excluded.unit_price_cents,
  image_ref = excluded.image_ref,
  quantity = excluded.quantity,
  line_total_cents = excluded.line_total_cents,
  revision = customer_orders.revision + 1,
  updated_at = excluded.updated_at`

// ErrQuantityOverflow reports a merge whose summed quantity would not fit in int64.
// The stored row is left unchanged.
var ErrQuantityOverflow = errors.New("merged quantity out of range")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// MergeUpsert inserts the order or adds its quantity to the existing row, then
// returns the row as written. Call it inside a transaction so the read-back sees
// exactly this write.
func (r *repository) MergeUpsert(ctx context.Context, order *models.CustomerOrder) (*models.CustomerOrder, error) {
	return r.upsert(ctx, mergeUpsertSQL, order, int64(math.MaxInt64))
}

// ReplaceUpsert is MergeUpsert with absolute quantity semantics.
func (r *repository) ReplaceUpsert(ctx context.Context, order *models.CustomerOrder) (*models.CustomerOrder, error) {
	return r.upsert(ctx, replaceUpsertSQL, order)
}

func (r *repository) upsert(ctx context.Context, stmt string, order *models.CustomerOrder, extra ...any) (*models.CustomerOrder, error) {
	if order == nil {
		return nil, errors.New("order required")
	}
	id := order.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()

	args := []any{
		id,
		order.OrderID,
		order.CustomerEmail,
		order.ProductName,
		order.UnitPriceCents,
		order.ImageRef,
		order.Quantity,
		order.LineTotalCents,
		now,
		now,
	}
	res := r.db.WithContext(ctx).Exec(stmt, append(args, extra...)...)
	if res.Error != nil {
		return nil, res.Error
	}
	// Both the insert and the update touch one row; zero means the merge guard held.
	if res.RowsAffected == 0 {
		return nil, ErrQuantityOverflow
	}
	return r.FindByOrderID(ctx, order.OrderID)
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.CustomerOrder, error) {
	var order models.CustomerOrder
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByEmail(ctx context.Context, email string) ([]models.CustomerOrder, error) {
	var rows []models.CustomerOrder
	err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("created_at ASC").
		Order("order_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.CustomerOrder, error) {
	var rows []models.CustomerOrder
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("order_id ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerOrder{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) DeleteByStorageKey(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CustomerOrder{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
