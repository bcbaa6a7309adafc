// internal/repository/category_repository.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kisanexport/storefront/internal/models"
)

type CategoryFilter struct {
	ActiveOnly bool
	Featured   *bool
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]models.Category, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	return translate(err, ErrCategoryNotFound, "failed to create category")
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrCategoryNotFound, "failed to find category by ID")
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translate(err, ErrCategoryNotFound, "failed to find category by slug")
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, filter CategoryFilter) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if filter.ActiveOnly {
		query = query.Where("status = ?", models.CatalogStatusActive)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}

	var categories []models.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, translate(err, ErrCategoryNotFound, "failed to list categories")
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Category, error) {
	result := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, translate(result.Error, ErrCategoryNotFound, "failed to update category")
	}
	if result.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, ErrCategoryNotFound, "failed to delete category")
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
