// internal/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisanexport/storefront/internal/i18n"
	"github.com/kisanexport/storefront/internal/services"
	"github.com/kisanexport/storefront/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	authService    *services.AuthService
	storageService *services.StorageService
	cookieName     string
	secureCookie   bool
}

func NewAdminHandler(
	adminService *services.AdminService,
	authService *services.AuthService,
	storageService *services.StorageService,
	cookieName string,
	secureCookie bool,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		authService:    authService,
		storageService: storageService,
		cookieName:     cookieName,
		secureCookie:   secureCookie,
	}
}

// POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, authResponse.AccessToken, int(h.authService.AdminSessionTTL().Seconds()), "/", "", h.secureCookie, true)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthLoginSuccess),
		"user":    authResponse.User,
	})
}

// POST /admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthLogoutSuccess),
	})
}

// GET /admin/check
func (h *AdminHandler) CheckSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok || !isAdmin(c) {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAdminNotAuthenticated))
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"authenticated": true,
		"user":          user,
	})
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /admin/import-products
func (h *AdminHandler) GetImportProducts(c *gin.Context) {
	items, err := h.adminService.ListImportProducts(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, items)
}

// POST /admin/import-products (multipart)
func (h *AdminHandler) CreateImportProduct(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.importProductForm(c)
	if !ok {
		return
	}

	uploaded, ok := h.uploadImportImages(c)
	if !ok {
		return
	}
	req.Images = uploaded

	item, err := h.adminService.CreateImportProduct(ctx, req)
	if err != nil {
		h.storageService.DeleteFiles(ctx, uploaded)
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":        i18n.T(utils.GetLangFromContext(c), i18n.KeyImportProductCreated),
		"import_product": item,
	})
}

// PUT /admin/import-products/:id (multipart)
func (h *AdminHandler) UpdateImportProduct(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := uuidParam(c, "id", i18n.KeyImportProductNotFound)
	if !ok {
		return
	}

	current, err := h.adminService.GetImportProduct(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	req, ok := h.importProductForm(c)
	if !ok {
		return
	}
	form := formFields{c: c}
	existing := form.existingImages()
	if form.failed != "" {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, form.failed), nil)
		return
	}

	uploaded, ok := h.uploadImportImages(c)
	if !ok {
		return
	}
	if existing == nil && len(uploaded) == 0 {
		req.Images = current.Images
	} else {
		req.Images = append(append([]string{}, existing...), uploaded...)
	}

	item, err := h.adminService.UpdateImportProduct(ctx, id, req)
	if err != nil {
		h.storageService.DeleteFiles(ctx, uploaded)
		handleServiceError(c, err)
		return
	}
	h.storageService.DeleteFiles(ctx, removedImages(current.Images, req.Images))

	utils.SuccessResponse(c, gin.H{
		"message":        i18n.T(utils.GetLangFromContext(c), i18n.KeyImportProductUpdated),
		"import_product": item,
	})
}

// DELETE /admin/import-products/:id
func (h *AdminHandler) DeleteImportProduct(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := uuidParam(c, "id", i18n.KeyImportProductNotFound)
	if !ok {
		return
	}

	item, err := h.adminService.GetImportProduct(ctx, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if err := h.adminService.DeleteImportProduct(ctx, id); err != nil {
		handleServiceError(c, err)
		return
	}
	h.storageService.DeleteFiles(ctx, item.Images)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyImportProductDeleted),
	})
}

func (h *AdminHandler) importProductForm(c *gin.Context) (*services.ImportProductRequest, bool) {
	form := formFields{c: c}
	req := &services.ImportProductRequest{
		ProductName: c.PostForm("product_name"),
	}
	if c.PostForm("category_id") != "" {
		req.CategoryID = form.id("category_id")
	}
	if c.PostForm("total_quantity") != "" {
		req.TotalQuantity = form.count("total_quantity")
	}
	if v := form.money("purchase_price"); v != nil {
		req.PurchasePrice = *v
	}
	if v := form.money("shipping_cost"); v != nil {
		req.ShippingCost = *v
	}
	if v := form.money("tax_amount"); v != nil {
		req.TaxAmount = *v
	}
	if form.failed != "" {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, form.failed), nil)
		return nil, false
	}
	return req, true
}

func (h *AdminHandler) uploadImportImages(c *gin.Context) ([]string, bool) {
	multipartForm, err := c.MultipartForm()
	if err != nil || len(multipartForm.File["images"]) == 0 {
		return nil, true
	}
	urls, err := h.storageService.UploadFiles(c.Request.Context(), multipartForm.File["images"], h.storageService.GetDefaultUploadOptions("imports"))
	if err != nil {
		handleServiceError(c, err)
		return nil, false
	}
	return urls, true
}
