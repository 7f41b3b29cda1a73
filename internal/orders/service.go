package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	modeMerge   = "merge"
	modeReplace = "replace"
	modeDelete  = "delete"
)

// Service exposes the order ledger operations.
type Service interface {
	UpsertOrder(ctx context.Context, input SubmitInput) (*WriteResult, error)
	ReplaceOrder(ctx context.Context, input SubmitInput) (*WriteResult, error)
	CustomerOrders(ctx context.Context, email, callerEmail string) (*CustomerOrders, error)
	CustomerTotalCents(ctx context.Context, email string) (int64, error)
	ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error)
	CountOrders(ctx context.Context) (int64, error)
	DeleteOrder(ctx context.Context, storageKey string) (*DeleteResult, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher EventPublisher
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the ledger. publisher, metrics and logg may be nil.
func NewService(repo Repository, tx txRunner, publisher EventPublisher, m *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		metrics:   m,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) UpsertOrder(ctx context.Context, input SubmitInput) (*WriteResult, error) {
	return s.write(ctx, modeMerge, input)
}

func (s *service) ReplaceOrder(ctx context.Context, input SubmitInput) (*WriteResult, error) {
	return s.write(ctx, modeReplace, input)
}

func (s *service) write(ctx context.Context, mode string, input SubmitInput) (*WriteResult, error) {
	row, err := normalizeSubmission(mode, input)
	if err != nil {
		s.metrics.IncWrite(mode, "rejected")
		return nil, err
	}

	var written *models.CustomerOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var werr error
		if mode == modeMerge {
			written, werr = repo.MergeUpsert(ctx, row)
		} else {
			written, werr = repo.ReplaceUpsert(ctx, row)
		}
		return werr
	})
	if err != nil {
		if errors.Is(err, ErrQuantityOverflow) {
			s.metrics.IncWrite(mode, "rejected")
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arithmetic error").
				WithDetails(map[string]any{"field": "quantity", "error": err.Error()})
		}
		s.metrics.IncWrite(mode, "failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write order")
	}

	result := writeResultFor(*written)
	outcome := "updated"
	if written.Inserted() {
		outcome = "inserted"
	}
	s.metrics.IncWrite(mode, outcome)

	eventType := EventOrderReplaced
	if mode == modeMerge {
		s.metrics.AddMergedQuantity(row.Quantity)
		eventType = EventOrderMerged
	}
	s.publish(ctx, eventType, OrderWrittenEvent{
		Order:    result.Order,
		Delta:    row.Quantity,
		Inserted: written.Inserted(),
	})

	return result, nil
}

func normalizeSubmission(mode string, input SubmitInput) (*models.CustomerOrder, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	if len(orderID) > maxOrderIDLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("orderId must be at most %d characters", maxOrderIDLength))
	}
	if input.Quantity < 0 {
		msg := "quantity delta must not be negative"
		if mode == modeReplace {
			msg = "quantity must not be negative"
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msg).
			WithDetails(map[string]any{"field": "quantity", "value": input.Quantity})
	}
	if input.UnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unitPrice must not be negative")
	}
	if input.LineTotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lineTotal must not be negative")
	}
	return &models.CustomerOrder{
		OrderID:        orderID,
		CustomerEmail:  auth.NormalizeEmail(input.CustomerEmail),
		ProductName:    strings.TrimSpace(input.ProductName),
		UnitPriceCents: input.UnitPriceCents,
		ImageRef:       strings.TrimSpace(input.ImageRef),
		Quantity:       input.Quantity,
		LineTotalCents: input.LineTotalCents,
	}, nil
}

func (s *service) CustomerOrders(ctx context.Context, email, callerEmail string) (*CustomerOrders, error) {
	normalized := auth.NormalizeEmail(email)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !auth.SameIdentity(normalized, callerEmail) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "credential does not match requested customer")
	}

	rows, err := s.repo.ListByEmail(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return aggregate(rows)
}

func aggregate(rows []models.CustomerOrder) (*CustomerOrders, error) {
	totals := make([]int64, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, row.LineTotalCents)
	}
	total, err := money.Sum(totals...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arithmetic error").
			WithDetails(map[string]any{"field": "lineTotal", "error": err.Error()})
	}
	return &CustomerOrders{
		Orders:     toViews(rows),
		Count:      len(rows),
		Total:      money.Format(total),
		TotalCents: total,
	}, nil
}

// CustomerTotalCents returns the aggregate total without an identity check. It backs
// payment reconciliation, where the caller has already been matched to the email.
func (s *service) CustomerTotalCents(ctx context.Context, email string) (int64, error) {
	normalized := auth.NormalizeEmail(email)
	if normalized == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	rows, err := s.repo.ListByEmail(ctx, normalized)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	agg, err := aggregate(rows)
	if err != nil {
		return 0, err
	}
	return agg.TotalCents, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error) {
	params = params.Normalize()
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	return &OrderList{
		Orders: toViews(rows),
		Page:   params.Page,
		Size:   params.Size,
		Total:  total,
	}, nil
}

func (s *service) CountOrders(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	return count, nil
}

func (s *service) DeleteOrder(ctx context.Context, storageKey string) (*DeleteResult, error) {
	id, err := uuid.Parse(strings.TrimSpace(storageKey))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage key must be a uuid")
	}
	deleted, err := s.repo.DeleteByStorageKey(ctx, id)
	if err != nil {
		s.metrics.IncWrite(modeDelete, "failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	if deleted == 0 {
		s.metrics.IncWrite(modeDelete, "missing")
		return &DeleteResult{DeletedCount: 0}, nil
	}
	s.metrics.IncWrite(modeDelete, "deleted")
	s.publish(ctx, EventOrderDeleted, OrderDeletedEvent{StorageKey: id, DeletedCount: deleted})
	return &DeleteResult{DeletedCount: deleted}, nil
}

// publish never fails the caller: the ledger write has already committed.
func (s *service) publish(ctx context.Context, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	body, attrs, err := newEnvelope(eventType, payload, s.now())
	if err == nil {
		_, err = s.publisher.Publish(ctx, body, attrs)
	}
	if err != nil && s.logg != nil {
		logCtx := s.logg.WithField(ctx, "event_type", eventType)
		if errors.Is(err, context.Canceled) {
			s.logg.Warn(logCtx, "order event dropped: request canceled")
			return
		}
		s.logg.Error(logCtx, "order event publish failed", err)
	}
}
