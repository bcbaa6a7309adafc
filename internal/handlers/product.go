// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kisanexport/storefront/internal/i18n"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/services"
	"github.com/kisanexport/storefront/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.ProductFilter{
		ActiveOnly:   !isAdmin(c),
		CategorySlug: params.Category,
		Search:       params.Search,
		Pagination:   params,
	}

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "category_id"), nil)
			return
		}
		filter.CategoryID = &categoryID
	}

	featured, ok := queryBool(c, "featured")
	if !ok {
		return
	}
	filter.Featured = featured

	if isAdmin(c) && params.Status != "" {
		filter.Status = models.CatalogStatus(params.Status)
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	featured := true
	params := utils.GetPaginationParams(c)

	products, _, err := h.productService.ListProducts(c.Request.Context(), repository.ProductFilter{
		ActiveOnly: true,
		Featured:   &featured,
		Pagination: params,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, products)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", i18n.KeyProductNotFound)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	h.respondVisible(c, product, err)
}

// GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.productService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	h.respondVisible(c, product, err)
}

// respondVisible hides inactive products from everyone but admins.
func (h *ProductHandler) respondVisible(c *gin.Context, product *models.Product, err error) {
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !product.IsActive() && !isAdmin(c) {
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /products (multipart)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ctx := c.Request.Context()

	req := services.CreateProductRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		HSCode:      c.PostForm("hs_code"),
		MinOrderQty: c.PostForm("min_order_qty"),
		Status:      models.CatalogStatus(c.PostForm("status")),
	}

	form := formFields{c: c}
	if c.PostForm("category_id") != "" {
		req.CategoryID = form.id("category_id")
	}
	if v := form.money("selling_price"); v != nil {
		req.SellingPrice = *v
	}
	if v := form.money("discounted_price"); v != nil {
		req.DiscountedPrice = *v
	}
	if v := form.variants(); v != nil {
		req.Variants = *v
	}
	if v := form.flag("featured"); v != nil {
		req.Featured = *v
	}
	if form.failed != "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, form.failed), nil)
		return
	}

	multipartForm, err := c.MultipartForm()
	if err != nil || len(multipartForm.File["images"]) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductImagesRequired), nil)
		return
	}

	urls, err := h.storageService.UploadFiles(ctx, multipartForm.File["images"], h.storageService.GetDefaultUploadOptions("products"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	req.Images = urls

	product, err := h.productService.CreateProduct(ctx, &req)
	if err != nil {
		h.storageService.DeleteFiles(ctx, urls)
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// PUT /products/:id (multipart, every field optional)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ctx := c.Request.Context()

	id, ok := uuidParam(c, "id", i18n.KeyProductNotFound)
	if !ok {
		return
	}

	current, err := h.productService.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var req services.UpdateProductRequest
	form := formFields{c: c}
	req.Name = form.text("name")
	req.Description = form.text("description")
	req.HSCode = form.text("hs_code")
	req.MinOrderQty = form.text("min_order_qty")
	if c.PostForm("category_id") != "" {
		categoryID := form.id("category_id")
		req.CategoryID = &categoryID
	}
	req.SellingPrice = form.money("selling_price")
	req.DiscountedPrice = form.money("discounted_price")
	req.Variants = form.variants()
	req.Featured = form.flag("featured")
	if raw := form.text("status"); raw != nil {
		status := models.CatalogStatus(*raw)
		req.Status = &status
	}
	existing := form.existingImages()
	if form.failed != "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, form.failed), nil)
		return
	}

	var uploaded []string
	if multipartForm, err := c.MultipartForm(); err == nil && len(multipartForm.File["images"]) > 0 {
		uploaded, err = h.storageService.UploadFiles(ctx, multipartForm.File["images"], h.storageService.GetDefaultUploadOptions("products"))
		if err != nil {
			handleServiceError(c, err)
			return
		}
	}
	if existing != nil || len(uploaded) > 0 {
		images := append(append([]string{}, existing...), uploaded...)
		req.Images = &images
	}

	product, err := h.productService.UpdateProduct(ctx, id, &req)
	if err != nil {
		h.storageService.DeleteFiles(ctx, uploaded)
		handleServiceError(c, err)
		return
	}
	if req.Images != nil {
		h.storageService.DeleteFiles(ctx, removedImages(current.Images, *req.Images))
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := uuidParam(c, "id", i18n.KeyProductNotFound)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		handleServiceError(c, err)
		return
	}
	h.storageService.DeleteFiles(ctx, product.Images)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductDeleted),
	})
}

// removedImages lists the entries of before that are not in after.
func removedImages(before, after []string) []string {
	kept := make(map[string]struct{}, len(after))
	for _, url := range after {
		kept[url] = struct{}{}
	}
	var removed []string
	for _, url := range before {
		if _, ok := kept[url]; !ok {
			removed = append(removed, url)
		}
	}
	return removed
}
