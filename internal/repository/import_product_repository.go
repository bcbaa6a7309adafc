// internal/repository/import_product_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kisanexport/storefront/internal/models"
)

type ImportProductRepository interface {
	Create(ctx context.Context, item *models.ImportProduct) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ImportProduct, error)
	List(ctx context.Context) ([]models.ImportProduct, error)
	Save(ctx context.Context, item *models.ImportProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type importProductRepository struct {
	db *gorm.DB
}

func NewImportProductRepository(db *gorm.DB) ImportProductRepository {
	return &importProductRepository{db: db}
}

func (r *importProductRepository) Create(ctx context.Context, item *models.ImportProduct) error {
	err := r.db.WithContext(ctx).Create(item).Error
	return translate(err, ErrImportProductNotFound, "failed to create import product")
}

func (r *importProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ImportProduct, error) {
	var item models.ImportProduct
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrImportProductNotFound, "failed to find import product by ID")
	}
	return &item, nil
}

func (r *importProductRepository) List(ctx context.Context) ([]models.ImportProduct, error) {
	var items []models.ImportProduct
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, translate(err, ErrImportProductNotFound, "failed to list import products")
	}
	return items, nil
}

func (r *importProductRepository) Save(ctx context.Context, item *models.ImportProduct) error {
	err := r.db.WithContext(ctx).Save(item).Error
	return translate(err, ErrImportProductNotFound, "failed to save import product")
}

func (r *importProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ImportProduct{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, ErrImportProductNotFound, "failed to delete import product")
	}
	if result.RowsAffected == 0 {
		return ErrImportProductNotFound
	}
	return nil
}
