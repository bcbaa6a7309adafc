// internal/handlers/errors.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kisanexport/storefront/internal/i18n"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/services"
	"github.com/kisanexport/storefront/internal/utils"
)

var notFoundKeys = []struct {
	err error
	key string
}{
	{repository.ErrCategoryNotFound, i18n.KeyCategoryNotFound},
	{repository.ErrProductNotFound, i18n.KeyProductNotFound},
	{repository.ErrOrderNotFound, i18n.KeyOrderNotFound},
	{repository.ErrUserNotFound, i18n.KeyUserNotFound},
	{repository.ErrImportProductNotFound, i18n.KeyImportProductNotFound},
	{services.ErrCartItemNotFound, i18n.KeyCartItemNotFound},
}

// handleServiceError writes the error response for err. Anything it
// does not recognise is logged and answered with a generic 500.
func handleServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	if validationErrors := utils.GetValidationErrors(err); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	for _, nf := range notFoundKeys {
		if errors.Is(err, nf.err) {
			utils.NotFoundResponse(c, nf.key)
			return
		}
	}

	var transitionErr *models.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderInvalidTransition, transitionErr.From, transitionErr.To))
	case errors.Is(err, services.ErrMissingFields):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyMissingFields), nil)
	case errors.Is(err, services.ErrImagesRequired):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductImagesRequired), nil)
	case errors.Is(err, services.ErrProductUnavailable):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductUnavailable), nil)
	case errors.Is(err, models.ErrUnknownVariant):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductVariantUnknown), nil)
	case errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartEmpty), nil)
	case errors.Is(err, services.ErrCartTooLarge):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartTooLarge), nil)
	case errors.Is(err, services.ErrFileTooLarge), errors.Is(err, services.ErrFileTypeRejected):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUploadInvalidFile), err.Error())
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrNoChanges):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrAdminProtected):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyUserAdminProtected))
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOrderForbidden))
	case errors.Is(err, services.ErrEmailTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
	case errors.Is(err, services.ErrSlugTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeySlugTaken))
	case errors.Is(err, services.ErrCategoryInUse):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCategoryInUse))
	case errors.Is(err, repository.ErrStaleStatus):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderStatusChanged))
	case errors.Is(err, services.ErrPaymentNotCompleted):
		utils.PaymentRequiredResponse(c, i18n.T(lang, i18n.KeyPaymentNotCompleted))
	case errors.Is(err, services.ErrPaymentUnavailable):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "PAYMENT_UNAVAILABLE", i18n.T(lang, i18n.KeyPaymentUnavailable), nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes the body into req and answers 400 itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return services.Actor{}, false
	}
	role, _ := utils.GetUserRoleFromContext(c)
	return services.Actor{UserID: userID, Role: models.UserRole(role)}, true
}
