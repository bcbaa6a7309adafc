// internal/services/product_service.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

type CreateProductRequest struct {
	Name            string               `json:"name" validate:"required,max=255"`
	Description     string               `json:"description" validate:"required"`
	CategoryID      uuid.UUID            `json:"category_id"`
	HSCode          string               `json:"hs_code" validate:"required,hs_code"`
	MinOrderQty     string               `json:"min_order_qty" validate:"required,max=100"`
	SellingPrice    decimal.Decimal      `json:"selling_price"`
	DiscountedPrice decimal.Decimal      `json:"discounted_price"`
	Variants        []models.Variant     `json:"variants,omitempty"`
	Images          []string             `json:"images"`
	Featured        bool                 `json:"featured"`
	Status          models.CatalogStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateProductRequest changes only the fields that are set. Images, when set,
// replaces the whole image list.
type UpdateProductRequest struct {
	Name            *string               `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description     *string               `json:"description,omitempty"`
	CategoryID      *uuid.UUID            `json:"category_id,omitempty"`
	HSCode          *string               `json:"hs_code,omitempty" validate:"omitempty,hs_code"`
	MinOrderQty     *string               `json:"min_order_qty,omitempty" validate:"omitempty,max=100"`
	SellingPrice    *decimal.Decimal      `json:"selling_price,omitempty"`
	DiscountedPrice *decimal.Decimal      `json:"discounted_price,omitempty"`
	Variants        *[]models.Variant     `json:"variants,omitempty"`
	Images          *[]string             `json:"images,omitempty"`
	Featured        *bool                 `json:"featured,omitempty"`
	Status          *models.CatalogStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	return s.products.List(ctx, filter)
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.products.FindBySlug(ctx, slug)
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.CategoryID == uuid.Nil {
		return nil, invalidInput("category_id is required")
	}
	if len(req.Images) == 0 {
		return nil, ErrImagesRequired
	}
	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	variants, err := normalizeVariants(req.Variants)
	if err != nil {
		return nil, err
	}
	if err := validatePricing(req.SellingPrice, req.DiscountedPrice, variants); err != nil {
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

	product := &models.Product{
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		HSCode:          req.HSCode,
		MinOrderQty:     req.MinOrderQty,
		SellingPrice:    req.SellingPrice,
		DiscountedPrice: req.DiscountedPrice,
		Variants:        variants,
		Images:          req.Images,
		PrimaryImage:    models.PrimaryImageOf(req.Images),
		Featured:        req.Featured,
		Status:          status,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		slug := utils.Slugify(name)
		if slug == "" {
			return nil, invalidInput("name must contain letters or digits")
		}
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
		updates["name"] = name
		updates["slug"] = slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.HSCode != nil {
		updates["hs_code"] = *req.HSCode
	}
	if req.MinOrderQty != nil {
		updates["min_order_qty"] = *req.MinOrderQty
	}

	selling, discounted, variants := current.SellingPrice, current.DiscountedPrice, []models.Variant(current.Variants)
	if req.SellingPrice != nil {
		selling = *req.SellingPrice
		updates["selling_price"] = selling
	}
	if req.DiscountedPrice != nil {
		discounted = *req.DiscountedPrice
		updates["discounted_price"] = discounted
	}
	if req.Variants != nil {
		if variants, err = normalizeVariants(*req.Variants); err != nil {
			return nil, err
		}
		updates["variants"] = models.Variants(variants)
	}
	if req.SellingPrice != nil || req.DiscountedPrice != nil || req.Variants != nil {
		if err := validatePricing(selling, discounted, variants); err != nil {
			return nil, err
		}
	}

	if req.Images != nil {
		if len(*req.Images) == 0 {
			return nil, ErrImagesRequired
		}
		updates["images"] = pq.StringArray(*req.Images)
		updates["primary_image"] = models.PrimaryImageOf(*req.Images)
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
	return s.products.Update(ctx, id, updates)
}

// DeleteProduct removes a product. Orders that captured it keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

func (s *ProductService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.products.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrProductNotFound) {
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

// normalizeVariants trims names and assigns ids to variants that came without one.
func normalizeVariants(in []models.Variant) ([]models.Variant, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make([]models.Variant, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v.Name = strings.TrimSpace(v.Name)
		if v.Name == "" {
			return nil, invalidInput("variant name is required")
		}
		if !v.Price.IsPositive() {
			return nil, invalidInput("variant %q must have a positive price", v.Name)
		}
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		if seen[v.ID] {
			return nil, invalidInput("duplicate variant id %q", v.ID)
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out, nil
}

func validatePricing(selling, discounted decimal.Decimal, variants []models.Variant) error {
	if selling.IsNegative() || discounted.IsNegative() {
		return invalidInput("prices must not be negative")
	}
	if len(variants) == 0 && !selling.IsPositive() {
		return invalidInput("selling_price is required")
	}
	return nil
}
