// internal/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisanexport/storefront/internal/i18n"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/services"
	"github.com/kisanexport/storefront/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
	cookie       *CartCookie
}

func NewOrderHandler(orderService *services.OrderService, cookie *CartCookie) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		cookie:       cookie,
	}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	order, created, err := h.orderService.CreateOrder(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// The order holds its own snapshot, so the cart is done with.
	h.cookie.Clear(c)

	if !created {
		c.JSON(http.StatusOK, utils.APIResponse{
			Success: true,
			Message: i18n.T(lang, i18n.KeyOrderExists),
			Data:    order,
		})
		return
	}
	c.JSON(http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: i18n.T(lang, i18n.KeyOrderCreated),
		Data:    order,
	})
}

// GET /orders (admin)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), repository.OrderFilter{
		Status:     models.OrderStatus(params.Status),
		Pagination: params,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	id, ok := uuidParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), actor, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// GET /orders/user/:userId
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	userID, ok := uuidParam(c, "userId", i18n.KeyUserNotFound)
	if !ok {
		return
	}

	orders, err := h.orderService.ListUserOrders(c.Request.Context(), actor, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, orders)
}

// PUT /orders/:id (admin)
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Status.Valid() {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "status"), nil)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Message: i18n.T(utils.GetLangFromContext(c), i18n.KeyOrderUpdated),
		Data:    order,
	})
}
