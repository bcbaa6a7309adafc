// internal/repository/order_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/utils"
)

var orderSortFields = []string{"created_at", "total", "status", "updated_at"}

type OrderFilter struct {
	Status     models.OrderStatus
	UserID     *uuid.UUID
	Pagination utils.PaginationParams
}

type OrderRepository interface {
	// CreateIdempotent inserts order unless another order already holds its
	// idempotency key, in which case the existing order is returned and created is false.
	CreateIdempotent(ctx context.Context, order *models.Order) (result *models.Order, created bool, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	// UpdateStatus moves an order from one status to another, failing with
	// ErrStaleStatus if it is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error)
	SumPaidTotal(ctx context.Context, since time.Time) (decimal.Decimal, error)
	Count(ctx context.Context, since time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateIdempotent(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	db := r.db.WithContext(ctx)
	if order.IdempotencyKey == nil {
		if err := db.Create(order).Error; err != nil {
			return nil, false, translate(err, ErrOrderNotFound, "failed to create order")
		}
		return order, true, nil
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(order)
	if result.Error != nil {
		return nil, false, translate(result.Error, ErrOrderNotFound, "failed to create order")
	}
	if result.RowsAffected == 1 {
		return order, true, nil
	}

	existing, err := r.FindByIdempotencyKey(ctx, *order.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrOrderNotFound, "failed to find order by ID")
	}
	return &order, nil
}

func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&order).Error; err != nil {
		return nil, translate(err, ErrOrderNotFound, "failed to find order by idempotency key")
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrOrderNotFound, "failed to count orders")
	}

	query = utils.ApplySort(query, filter.Pagination, orderSortFields)
	if filter.Pagination.Limit > 0 {
		query = utils.ApplyPagination(query, filter.Pagination)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, translate(err, ErrOrderNotFound, "failed to list orders")
	}
	return orders, total, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, translate(err, ErrOrderNotFound, "failed to list orders by user")
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return nil, translate(result.Error, ErrOrderNotFound, "failed to update order status")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleStatus
	}
	return r.FindByID(ctx, id)
}

func (r *orderRepository) SumPaidTotal(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_status = ? AND created_at >= ?", models.PaymentStatusPaid, since).
		Select("SUM(total)").
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to sum order totals")
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *orderRepository) Count(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("created_at >= ?", since).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}
	return count, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders by status")
	}

	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
