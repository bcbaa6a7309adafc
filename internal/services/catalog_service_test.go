package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/services"
	"github.com/kisanexport/storefront/internal/utils"
)

func strPtr(s string) *string { return &s }

func TestCategoryService_CreateCategory(t *testing.T) {
	categories := new(MockCategoryRepository)
	svc := services.NewCategoryService(categories, new(MockProductRepository))

	categories.On("FindBySlug", mock.Anything, "dry-fruits-nuts").Return(nil, repository.ErrCategoryNotFound).Once()
	categories.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Category) bool {
		return c.Name == "Dry Fruits & Nuts" && c.Slug == "dry-fruits-nuts" && c.Status == models.CatalogStatusActive
	})).Return(nil).Once()

	category, err := svc.CreateCategory(context.Background(), &services.CreateCategoryRequest{
		Name:  "  Dry Fruits & Nuts ",
		Image: "/uploads/categories/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "dry-fruits-nuts", category.Slug)
	categories.AssertExpectations(t)
}

func TestCategoryService_CreateCategory_Rejections(t *testing.T) {
	t.Run("slug taken", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		categories.On("FindBySlug", mock.Anything, "spices").Return(&models.Category{BaseModel: models.BaseModel{ID: uuid.New()}}, nil)

		_, err := services.NewCategoryService(categories, nil).CreateCategory(context.Background(), &services.CreateCategoryRequest{Name: "Spices", Image: "x"})
		require.ErrorIs(t, err, services.ErrSlugTaken)
		categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("image required", func(t *testing.T) {
		_, err := services.NewCategoryService(new(MockCategoryRepository), nil).CreateCategory(context.Background(), &services.CreateCategoryRequest{Name: "Spices"})
		require.Error(t, err)
		assert.NotEmpty(t, utils.GetValidationErrors(err))
	})

	t.Run("name without letters", func(t *testing.T) {
		_, err := services.NewCategoryService(new(MockCategoryRepository), nil).CreateCategory(context.Background(), &services.CreateCategoryRequest{Name: "!!!", Image: "x"})
		require.ErrorIs(t, err, services.ErrInvalidInput)
	})
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	id := uuid.New()

	t.Run("rename keeps own slug", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		categories.On("FindBySlug", mock.Anything, "spices").Return(&models.Category{BaseModel: models.BaseModel{ID: id}}, nil)
		categories.On("Update", mock.Anything, id, map[string]interface{}{"name": "Spices", "slug": "spices"}).
			Return(&models.Category{BaseModel: models.BaseModel{ID: id}, Name: "Spices", Slug: "spices"}, nil).Once()

		category, err := services.NewCategoryService(categories, nil).UpdateCategory(context.Background(), id, &services.UpdateCategoryRequest{Name: strPtr(" Spices ")})
		require.NoError(t, err)
		assert.Equal(t, "spices", category.Slug)
		categories.AssertExpectations(t)
	})

	t.Run("nothing to change", func(t *testing.T) {
		_, err := services.NewCategoryService(new(MockCategoryRepository), nil).UpdateCategory(context.Background(), id, &services.UpdateCategoryRequest{})
		require.ErrorIs(t, err, services.ErrNoChanges)
	})

	t.Run("invalid status", func(t *testing.T) {
		status := models.CatalogStatus("archived")
		_, err := services.NewCategoryService(new(MockCategoryRepository), nil).UpdateCategory(context.Background(), id, &services.UpdateCategoryRequest{Status: &status})
		require.Error(t, err)
		assert.NotEmpty(t, utils.GetValidationErrors(err))
	})
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	id := uuid.New()

	t.Run("in use", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		products := new(MockProductRepository)
		categories.On("FindByID", mock.Anything, id).Return(&models.Category{BaseModel: models.BaseModel{ID: id}}, nil)
		products.On("CountByCategory", mock.Anything, id).Return(int64(3), nil)

		err := services.NewCategoryService(categories, products).DeleteCategory(context.Background(), id)
		require.ErrorIs(t, err, services.ErrCategoryInUse)
		categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("referenced at delete time", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		products := new(MockProductRepository)
		categories.On("FindByID", mock.Anything, id).Return(&models.Category{BaseModel: models.BaseModel{ID: id}}, nil)
		products.On("CountByCategory", mock.Anything, id).Return(int64(0), nil)
		categories.On("Delete", mock.Anything, id).Return(repository.ErrReferenced)

		err := services.NewCategoryService(categories, products).DeleteCategory(context.Background(), id)
		require.ErrorIs(t, err, services.ErrCategoryInUse)
	})

	t.Run("unknown", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		categories.On("FindByID", mock.Anything, id).Return(nil, repository.ErrCategoryNotFound)

		err := services.NewCategoryService(categories, new(MockProductRepository)).DeleteCategory(context.Background(), id)
		require.ErrorIs(t, err, repository.ErrCategoryNotFound)
	})
}

func productRequest(categoryID uuid.UUID) *services.CreateProductRequest {
	return &services.CreateProductRequest{
		Name:         "Basmati Rice",
		Description:  "Aged long grain rice",
		CategoryID:   categoryID,
		HSCode:       "1006.30",
		MinOrderQty:  "1 tonne",
		SellingPrice: decimal.NewFromInt(120),
		Images:       []string{"/uploads/products/a.png", "/uploads/products/b.png"},
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	categoryID := uuid.New()
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	svc := services.NewProductService(products, categories)

	categories.On("FindByID", mock.Anything, categoryID).Return(&models.Category{BaseModel: models.BaseModel{ID: categoryID}}, nil)
	products.On("FindBySlug", mock.Anything, "basmati-rice").Return(nil, repository.ErrProductNotFound)
	products.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := svc.CreateProduct(context.Background(), productRequest(categoryID))
	require.NoError(t, err)
	assert.Equal(t, "basmati-rice", product.Slug)
	assert.Equal(t, "/uploads/products/a.png", product.PrimaryImage)
	assert.Equal(t, models.CatalogStatusActive, product.Status, "products are listed unless created inactive")
	products.AssertExpectations(t)

	req := productRequest(categoryID)
	req.Name = "Toor Dal"
	req.Status = models.CatalogStatusInactive
	products.On("FindBySlug", mock.Anything, "toor-dal").Return(nil, repository.ErrProductNotFound)
	products.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	hidden, err := svc.CreateProduct(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.CatalogStatusInactive, hidden.Status)
}

func TestProductService_CreateProduct_Variants(t *testing.T) {
	categoryID := uuid.New()
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	categories.On("FindByID", mock.Anything, categoryID).Return(&models.Category{BaseModel: models.BaseModel{ID: categoryID}}, nil)
	products.On("FindBySlug", mock.Anything, mock.Anything).Return(nil, repository.ErrProductNotFound)
	products.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := productRequest(categoryID)
	req.SellingPrice = decimal.Zero
	req.Variants = []models.Variant{
		{Name: " 250 g ", Price: decimal.NewFromInt(300)},
		{ID: "bulk", Name: "25 kg", Price: decimal.NewFromInt(25000)},
	}

	product, err := services.NewProductService(products, categories).CreateProduct(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, "250 g", product.Variants[0].Name)
	assert.NotEmpty(t, product.Variants[0].ID)
	assert.Equal(t, "bulk", product.Variants[1].ID)

	req = productRequest(categoryID)
	req.Variants = []models.Variant{{Name: "free", Price: decimal.Zero}}
	_, err = services.NewProductService(products, categories).CreateProduct(context.Background(), req)
	require.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestProductService_CreateProduct_Rejections(t *testing.T) {
	categoryID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*services.CreateProductRequest)
		want   error
	}{
		{"no images", func(r *services.CreateProductRequest) { r.Images = nil }, services.ErrImagesRequired},
		{"no category", func(r *services.CreateProductRequest) { r.CategoryID = uuid.Nil }, services.ErrInvalidInput},
		{"no price", func(r *services.CreateProductRequest) { r.SellingPrice = decimal.Zero }, services.ErrInvalidInput},
		{"negative discount", func(r *services.CreateProductRequest) { r.DiscountedPrice = decimal.NewFromInt(-1) }, services.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepository)
			categories := new(MockCategoryRepository)
			categories.On("FindByID", mock.Anything, categoryID).Return(&models.Category{}, nil).Maybe()

			req := productRequest(categoryID)
			tt.mutate(req)
			_, err := services.NewProductService(products, categories).CreateProduct(context.Background(), req)
			require.ErrorIs(t, err, tt.want)
			products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("bad hs code", func(t *testing.T) {
		req := productRequest(categoryID)
		req.HSCode = "rice"
		_, err := services.NewProductService(new(MockProductRepository), new(MockCategoryRepository)).CreateProduct(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, "hs_code", utils.GetValidationErrors(err)[0].Tag)
	})

	t.Run("slug taken", func(t *testing.T) {
		products := new(MockProductRepository)
		categories := new(MockCategoryRepository)
		categories.On("FindByID", mock.Anything, categoryID).Return(&models.Category{}, nil)
		products.On("FindBySlug", mock.Anything, "basmati-rice").Return(&models.Product{BaseModel: models.BaseModel{ID: uuid.New()}}, nil)

		_, err := services.NewProductService(products, categories).CreateProduct(context.Background(), productRequest(categoryID))
		require.ErrorIs(t, err, services.ErrSlugTaken)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	id := uuid.New()
	current := &models.Product{
		BaseModel:    models.BaseModel{ID: id},
		SellingPrice: decimal.NewFromInt(120),
		Images:       pq.StringArray{"a.png"},
	}

	t.Run("replaces images", func(t *testing.T) {
		products := new(MockProductRepository)
		products.On("FindByID", mock.Anything, id).Return(current, nil)
		products.On("Update", mock.Anything, id, map[string]interface{}{
			"images":        pq.StringArray{"b.png", "c.png"},
			"primary_image": "b.png",
		}).Return(current, nil).Once()

		images := []string{"b.png", "c.png"}
		_, err := services.NewProductService(products, nil).UpdateProduct(context.Background(), id, &services.UpdateProductRequest{Images: &images})
		require.NoError(t, err)
		products.AssertExpectations(t)
	})

	t.Run("empty image list", func(t *testing.T) {
		products := new(MockProductRepository)
		products.On("FindByID", mock.Anything, id).Return(current, nil)

		images := []string{}
		_, err := services.NewProductService(products, nil).UpdateProduct(context.Background(), id, &services.UpdateProductRequest{Images: &images})
		require.ErrorIs(t, err, services.ErrImagesRequired)
	})

	t.Run("clearing the price of a flat product", func(t *testing.T) {
		products := new(MockProductRepository)
		products.On("FindByID", mock.Anything, id).Return(current, nil)

		zero := decimal.Zero
		_, err := services.NewProductService(products, nil).UpdateProduct(context.Background(), id, &services.UpdateProductRequest{SellingPrice: &zero})
		require.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("nothing to change", func(t *testing.T) {
		products := new(MockProductRepository)
		products.On("FindByID", mock.Anything, id).Return(current, nil)

		_, err := services.NewProductService(products, nil).UpdateProduct(context.Background(), id, &services.UpdateProductRequest{})
		require.ErrorIs(t, err, services.ErrNoChanges)
	})

	t.Run("unknown product", func(t *testing.T) {
		products := new(MockProductRepository)
		products.On("FindByID", mock.Anything, id).Return(nil, repository.ErrProductNotFound)

		_, err := services.NewProductService(products, nil).UpdateProduct(context.Background(), id, &services.UpdateProductRequest{Name: strPtr("x")})
		require.ErrorIs(t, err, repository.ErrProductNotFound)
	})
}
