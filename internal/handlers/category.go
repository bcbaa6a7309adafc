// internal/handlers/category.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kisanexport/storefront/internal/i18n"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/services"
	"github.com/kisanexport/storefront/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	storageService  *services.StorageService
}

func NewCategoryHandler(categoryService *services.CategoryService, storageService *services.StorageService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		storageService:  storageService,
	}
}

// GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	h.list(c, false)
}

// GET /admin/categories
func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	h.list(c, true)
}

func (h *CategoryHandler) list(c *gin.Context, includeInactive bool) {
	categories, err := h.categoryService.ListCategories(c.Request.Context(), includeInactive)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, categories)
}

// GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id", i18n.KeyCategoryNotFound)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !category.IsActive() && !isAdmin(c) {
		utils.NotFoundResponse(c, i18n.KeyCategoryNotFound)
		return
	}
	utils.SuccessResponse(c, category)
}

// POST /categories (multipart)
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ctx := c.Request.Context()

	header, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCategoryImageRequired), nil)
		return
	}

	req := services.CreateCategoryRequest{
		Name:   c.PostForm("name"),
		Status: models.CatalogStatus(c.PostForm("status")),
	}
	if raw, ok := c.GetPostForm("featured"); ok {
		if req.Featured, err = strconv.ParseBool(raw); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "featured"), nil)
			return
		}
	}

	upload, err := h.storageService.UploadFile(ctx, header, h.storageService.GetDefaultUploadOptions("categories"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	req.Image = upload.URL

	category, err := h.categoryService.CreateCategory(ctx, &req)
	if err != nil {
		h.storageService.DeleteFiles(ctx, []string{upload.URL})
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCategoryCreated),
		"category": category,
	})
}

// PUT /categories/:id (multipart, every field optional)
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	ctx := c.Request.Context()

	id, ok := uuidParam(c, "id", i18n.KeyCategoryNotFound)
	if !ok {
		return
	}

	current, err := h.categoryService.GetCategory(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var req services.UpdateCategoryRequest
	if name, ok := c.GetPostForm("name"); ok {
		req.Name = &name
	}
	if raw, ok := c.GetPostForm("featured"); ok {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "featured"), nil)
			return
		}
		req.Featured = &featured
	}
	if raw, ok := c.GetPostForm("status"); ok {
		status := models.CatalogStatus(raw)
		req.Status = &status
	}

	var uploaded string
	if header, err := c.FormFile("image"); err == nil {
		upload, err := h.storageService.UploadFile(ctx, header, h.storageService.GetDefaultUploadOptions("categories"))
		if err != nil {
			handleServiceError(c, err)
			return
		}
		uploaded = upload.URL
		req.Image = &uploaded
	}

	category, err := h.categoryService.UpdateCategory(ctx, id, &req)
	if err != nil {
		if uploaded != "" {
			h.storageService.DeleteFiles(ctx, []string{uploaded})
		}
		handleServiceError(c, err)
		return
	}
	if uploaded != "" && current.Image != uploaded {
		h.storageService.DeleteFiles(ctx, []string{current.Image})
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyCategoryUpdated),
		"category": category,
	})
}

// DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := uuidParam(c, "id", i18n.KeyCategoryNotFound)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.categoryService.DeleteCategory(ctx, id); err != nil {
		handleServiceError(c, err)
		return
	}
	h.storageService.DeleteFiles(ctx, []string{category.Image})

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryDeleted),
	})
}
