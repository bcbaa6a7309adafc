// internal/services/category_service.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

type CreateCategoryRequest struct {
	Name     string               `json:"name" validate:"required,max=255"`
	Image    string               `json:"image" validate:"required"`
	Featured bool                 `json:"featured"`
	Status   models.CatalogStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateCategoryRequest changes only the fields that are set.
type UpdateCategoryRequest struct {
	Name     *string               `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Image    *string               `json:"image,omitempty"`
	Featured *bool                 `json:"featured,omitempty"`
	Status   *models.CatalogStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func NewCategoryService(categories repository.CategoryRepository, products repository.ProductRepository) *CategoryService {
	return &CategoryService{
		categories: categories,
		products:   products,
	}
}

// ListCategories returns categories sorted by name. The storefront only sees active ones.
func (s *CategoryService) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	return s.categories.List(ctx, repository.CategoryFilter{ActiveOnly: !includeInactive})
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	slug := utils.Slugify(req.Name)
	if slug == "" {
		return nil, invalidInput("name must contain letters or digits")
	}
	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.CatalogStatusActive
	}

	category := &models.Category{
		Name:     req.Name,
		Slug:     slug,
		Image:    req.Image,
		Featured: req.Featured,
		Status:   status,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		slug := utils.Slugify(*req.Name)
		if slug == "" {
			return nil, invalidInput("name must contain letters or digits")
		}
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
		updates["name"] = *req.Name
		updates["slug"] = slug
	}
	if req.Image != nil && *req.Image != "" {
		updates["image"] = *req.Image
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return nil, ErrNoChanges
	}
	return s.categories.Update(ctx, id, updates)
}

// DeleteCategory refuses to remove a category that products still reference.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return ErrCategoryInUse
		}
		return err
	}
	return nil
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.categories.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return ErrSlugTaken
	}
	return nil
}
