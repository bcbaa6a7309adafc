// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess           = "success"
	KeyInternalError     = "error.internal"
	KeyRateLimited       = "error.rate_limited"
	KeyValidationInvalid = "validation.invalid"
	KeyMissingFields     = "validation.missing_fields"
	KeySlugTaken         = "catalog.slug_taken"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Admin
	KeyAdminAccessDenied     = "admin.access_denied"
	KeyAdminNotAuthenticated = "admin.not_authenticated"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserDeleted        = "user.deleted"
	KeyUserAdminProtected = "user.admin_protected"

	// Categories
	KeyCategoryNotFound      = "category.not_found"
	KeyCategoryCreated       = "category.created"
	KeyCategoryUpdated       = "category.updated"
	KeyCategoryDeleted       = "category.deleted"
	KeyCategoryInUse         = "category.in_use"
	KeyCategoryImageRequired = "category.image_required"

	// Products
	KeyProductNotFound       = "product.not_found"
	KeyProductCreated        = "product.created"
	KeyProductUpdated        = "product.updated"
	KeyProductDeleted        = "product.deleted"
	KeyProductImagesRequired = "product.images_required"
	KeyProductUnavailable    = "product.unavailable"
	KeyProductVariantUnknown = "product.variant_unknown"

	// Cart
	KeyCartItemAdded    = "cart.item_added"
	KeyCartItemUpdated  = "cart.item_updated"
	KeyCartItemRemoved  = "cart.item_removed"
	KeyCartItemNotFound = "cart.item_not_found"
	KeyCartCleared      = "cart.cleared"
	KeyCartEmpty        = "cart.empty"
	KeyCartTooLarge     = "cart.too_large"

	// Orders
	KeyOrderNotFound          = "order.not_found"
	KeyOrderCreated           = "order.created"
	KeyOrderExists            = "order.exists"
	KeyOrderUpdated           = "order.updated"
	KeyOrderInvalidTransition = "order.invalid_transition"
	KeyOrderForbidden         = "order.forbidden"
	KeyOrderStatusChanged     = "order.status_changed"

	// Payments
	KeyPaymentNotCompleted = "payment.not_completed"
	KeyPaymentUnavailable  = "payment.unavailable"

	// Import products
	KeyImportProductNotFound = "import_product.not_found"
	KeyImportProductCreated  = "import_product.created"
	KeyImportProductUpdated  = "import_product.updated"
	KeyImportProductDeleted  = "import_product.deleted"

	// Uploads
	KeyUploadFailed      = "upload.failed"
	KeyUploadInvalidFile = "upload.invalid_file"
)
