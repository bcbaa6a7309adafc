// internal/repository/product_repository.go
package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/utils"
)

var productSortFields = []string{"created_at", "name", "selling_price", "updated_at"}

type ProductFilter struct {
	ActiveOnly   bool
	Status       models.CatalogStatus
	CategoryID   *uuid.UUID
	CategorySlug string
	Featured     *bool
	Search       string
	Pagination   utils.PaginationParams
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return translate(err, ErrProductNotFound, "failed to create product")
	}

	// Reload so the category join is populated.
	created, err := r.FindByID(ctx, product.ID)
	if err != nil {
		return err
	}
	*product = *created
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "products.id = ?", id).Error
	if err != nil {
		return nil, translate(err, ErrProductNotFound, "failed to find product by ID")
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").Where("products.slug = ?", slug).First(&product).Error
	if err != nil {
		return nil, translate(err, ErrProductNotFound, "failed to find product by slug")
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.ActiveOnly {
		query = query.Where("products.status = ?", models.CatalogStatusActive)
	} else if filter.Status != "" {
		query = query.Where("products.status = ?", filter.Status)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.Featured != nil {
		query = query.Where("products.featured = ?", *filter.Featured)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("products.name ILIKE ? OR products.description ILIKE ? OR products.hs_code ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrProductNotFound, "failed to count products")
	}

	params := filter.Pagination
	params.Sort = "products." + params.Sort
	allowed := make([]string, len(productSortFields))
	for i, field := range productSortFields {
		allowed[i] = "products." + field
	}
	query = utils.ApplySort(query, params, allowed)
	if params.Limit > 0 {
		query = utils.ApplyPagination(query, params)
	}

	var products []models.Product
	if err := query.Preload("Category").Find(&products).Error; err != nil {
		return nil, 0, translate(err, ErrProductNotFound, "failed to list products")
	}
	return products, total, nil
}

func (r *productRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error) {
	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, translate(result.Error, ErrProductNotFound, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, ErrProductNotFound, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, translate(err, ErrProductNotFound, "failed to count products by category")
	}
	return count, nil
}
