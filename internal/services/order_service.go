// internal/services/order_service.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleAdmin
}

func (a Actor) canAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

type OrderService struct {
	orders              repository.OrderRepository
	payments            *PaymentService
	notificationService *NotificationService
}

type CreateOrderRequest struct {
	UserID          uuid.UUID              `json:"user_id"`
	Items           []models.CartItem      `json:"items"`
	Total           *decimal.Decimal       `json:"total"`
	Status          models.OrderStatus     `json:"status"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method" validate:"max=50"`
	PaymentStatus   models.PaymentStatus   `json:"payment_status"`
	PaymentID       string                 `json:"payment_id" validate:"max=255"`
	IdempotencyKey  string                 `json:"idempotency_key" validate:"max=255"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

func NewOrderService(orders repository.OrderRepository, payments *PaymentService, notificationService *NotificationService) *OrderService {
	return &OrderService{
		orders:              orders,
		payments:            payments,
		notificationService: notificationService,
	}
}

// CreateOrder records a placed order. Replaying a request with the same
// payment id (or idempotency key when unpaid) returns the first order with
// created=false.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, req *CreateOrderRequest) (*models.Order, bool, error) {
	if req.UserID == uuid.Nil || len(req.Items) == 0 || req.Total == nil {
		return nil, false, ErrMissingFields
	}
	if !actor.canAccess(req.UserID) {
		return nil, false, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, false, err
	}
	if err := validateOrderItems(req.Items); err != nil {
		return nil, false, err
	}
	total := *req.Total
	if !total.IsPositive() {
		return nil, false, invalidInput("total must be positive")
	}
	if !total.Equal(models.ItemsTotal(req.Items)) {
		return nil, false, invalidInput("total does not match the items")
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	if !status.Valid() {
		return nil, false, invalidInput("unknown order status %q", status)
	}
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentStatusPending
	}
	if !paymentStatus.Valid() {
		return nil, false, invalidInput("unknown payment status %q", paymentStatus)
	}

	if err := createStatusAllowed(status, paymentStatus); err != nil {
		return nil, false, err
	}

	if paymentStatus == models.PaymentStatusPaid {
		if req.PaymentID == "" {
			return nil, false, invalidInput("payment_id is required for paid orders")
		}
		if err := s.payments.VerifyPayment(ctx, req.PaymentID, req.UserID, total); err != nil {
			return nil, false, err
		}
	}

	items := make(models.OrderItems, len(req.Items))
	copy(items, req.Items)

	order := &models.Order{
		UserID:          req.UserID,
		Items:           items,
		Total:           total,
		Status:          status,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   paymentStatus,
		PaymentID:       req.PaymentID,
		IdempotencyKey:  idempotencyKey(req),
	}

	result, created, err := s.orders.CreateIdempotent(ctx, order)
	if err != nil {
		return nil, false, err
	}
	if !created && result.UserID != req.UserID {
		return nil, false, ErrForbidden
	}

	if created {
		logrus.WithFields(logrus.Fields{
			"order_id": result.ID,
			"user_id":  result.UserID,
			"total":    utils.FormatMoney(result.Total),
		}).Info("Order placed")
		s.notifyAsync(result, (*NotificationService).SendOrderConfirmation)
	}
	return result, created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(order.UserID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns orders newest first unless the params ask otherwise.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, invalidInput("unknown order status %q", filter.Status)
	}
	return s.orders.List(ctx, filter)
}

func (s *OrderService) ListUserOrders(ctx context.Context, actor Actor, userID uuid.UUID) ([]models.Order, error) {
	if !actor.canAccess(userID) {
		return nil, ErrForbidden
	}
	return s.orders.ListByUser(ctx, userID)
}

// UpdateOrderStatus moves an order along its lifecycle. Re-applying the
// current status returns the order unchanged.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	const attempts = 2

	var lastErr error
	for i := 0; i < attempts; i++ {
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := order.Status.ValidateTransition(to); err != nil {
			return nil, err
		}
		if order.Status == to {
			return order, nil
		}

		updated, err := s.orders.UpdateStatus(ctx, id, order.Status, to)
		if errors.Is(err, repository.ErrStaleStatus) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"order_id": id,
			"from":     order.Status,
			"to":       to,
		}).Info("Order status changed")
		s.notifyAsync(updated, (*NotificationService).SendOrderStatusUpdate)
		return updated, nil
	}
	return nil, lastErr
}

func (s *OrderService) notifyAsync(order *models.Order, send func(*NotificationService, context.Context, *models.Order) error) {
	if s.notificationService == nil {
		return
	}
	snapshot := *order
	go func() {
		if err := send(s.notificationService, context.Background(), &snapshot); err != nil {
			logrus.WithError(err).WithField("order_id", snapshot.ID).Warn("Failed to send order notification")
		}
	}()
}

func validateOrderItems(items []models.CartItem) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.VariantID) == "" {
			return invalidInput("every item needs a variant_id")
		}
		if seen[item.VariantID] {
			return invalidInput("variant %s appears more than once", item.VariantID)
		}
		seen[item.VariantID] = true
		if item.Quantity < 1 {
			return invalidInput("quantity of %s must be at least 1", item.VariantID)
		}
		if item.Price.IsNegative() {
			return invalidInput("price of %s must not be negative", item.VariantID)
		}
	}
	return nil
}

// createStatusAllowed limits where a new order may start: Pending, or
// Processing once its payment is Paid. Later states are reached through
// UpdateOrderStatus only.
func createStatusAllowed(status models.OrderStatus, payment models.PaymentStatus) error {
	switch status {
	case models.OrderStatusPending:
		return nil
	case models.OrderStatusProcessing:
		if payment == models.PaymentStatusPaid {
			return nil
		}
		return invalidInput("only paid orders may start as %s", status)
	default:
		return invalidInput("orders cannot be created as %s", status)
	}
}

// idempotencyKey binds a paid order to its payment so one payment yields
// one order whatever key the client sends.
func idempotencyKey(req *CreateOrderRequest) *string {
	switch {
	case req.PaymentID != "":
		key := "payment:" + req.PaymentID
		return &key
	case req.IdempotencyKey != "":
		key := req.IdempotencyKey
		return &key
	default:
		return nil
	}
}
