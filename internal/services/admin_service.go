// internal/services/admin_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

type AdminService struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	imports    repository.ImportProductRepository
	now        func() time.Time
}

type ImportProductRequest struct {
	CategoryID    uuid.UUID       `json:"category_id"`
	ProductName   string          `json:"product_name" validate:"required,max=255"`
	TotalQuantity int             `json:"total_quantity" validate:"gte=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Images        []string        `json:"images"`
}

func NewAdminService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	imports repository.ImportProductRepository,
) *AdminService {
	return &AdminService{
		orders:     orders,
		users:      users,
		categories: categories,
		imports:    imports,
		now:        time.Now,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		stats = &models.DashboardStats{}
		err   error
	)

	if stats.TotalRevenue, err = s.orders.SumPaidTotal(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if stats.TodayRevenue, err = s.orders.SumPaidTotal(ctx, dayStart); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orders.Count(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if stats.TodayOrders, err = s.orders.Count(ctx, dayStart); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = s.users.CountByRole(ctx, models.UserRoleUser); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus, err = s.orders.CountByStatus(ctx); err != nil {
		return nil, err
	}

	stats.AverageOrderValue = decimal.Zero
	if stats.TodayOrders > 0 {
		stats.AverageOrderValue = stats.TodayRevenue.Div(decimal.NewFromInt(stats.TodayOrders)).Round(2)
	}

	return stats, nil
}

// Import products
func (s *AdminService) ListImportProducts(ctx context.Context) ([]models.ImportProduct, error) {
	return s.imports.List(ctx)
}

func (s *AdminService) GetImportProduct(ctx context.Context, id uuid.UUID) (*models.ImportProduct, error) {
	return s.imports.FindByID(ctx, id)
}

func (s *AdminService) CreateImportProduct(ctx context.Context, req *ImportProductRequest) (*models.ImportProduct, error) {
	item := &models.ImportProduct{}
	if err := s.applyImportProduct(ctx, item, req); err != nil {
		return nil, err
	}
	if err := s.imports.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateImportProduct replaces every field of an existing entry.
func (s *AdminService) UpdateImportProduct(ctx context.Context, id uuid.UUID, req *ImportProductRequest) (*models.ImportProduct, error) {
	item, err := s.imports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyImportProduct(ctx, item, req); err != nil {
		return nil, err
	}
	if err := s.imports.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *AdminService) DeleteImportProduct(ctx context.Context, id uuid.UUID) error {
	return s.imports.Delete(ctx, id)
}

func (s *AdminService) applyImportProduct(ctx context.Context, item *models.ImportProduct, req *ImportProductRequest) error {
	req.ProductName = strings.TrimSpace(req.ProductName)
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if req.CategoryID == uuid.Nil {
		return invalidInput("category_id is required")
	}
	for _, amount := range []decimal.Decimal{req.PurchasePrice, req.ShippingCost, req.TaxAmount} {
		if amount.IsNegative() {
			return invalidInput("amounts must not be negative")
		}
	}

	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return err
	}

	item.CategoryID = category.ID
	item.CategoryName = category.Name
	item.ProductName = req.ProductName
	item.TotalQuantity = req.TotalQuantity
	item.PurchasePrice = req.PurchasePrice
	item.ShippingCost = req.ShippingCost
	item.TaxAmount = req.TaxAmount
	item.Images = pq.StringArray(req.Images)
	return nil
}
