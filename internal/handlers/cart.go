// internal/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisanexport/storefront/internal/cart"
	"github.com/kisanexport/storefront/internal/i18n"
	"github.com/kisanexport/storefront/internal/services"
	"github.com/kisanexport/storefront/internal/utils"
)

// CartCookie reads and writes the sealed cart cookie.
type CartCookie struct {
	cartService *services.CartService
	name        string
	secure      bool
}

func NewCartCookie(cartService *services.CartService, name string, secure bool) *CartCookie {
	return &CartCookie{
		cartService: cartService,
		name:        name,
		secure:      secure,
	}
}

func (cc *CartCookie) Load(c *gin.Context) *cart.Cart {
	token, _ := c.Cookie(cc.name)
	return cc.cartService.Load(token)
}

// Store writes the cart back, or expires the cookie when the cart is empty.
func (cc *CartCookie) Store(c *gin.Context, crt *cart.Cart) error {
	if crt.IsEmpty() {
		cc.Clear(c)
		return nil
	}

	token, err := cc.cartService.Seal(crt)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.name, token, int(cc.cartService.TTL().Seconds()), "/", "", cc.secure, true)
	return nil
}

func (cc *CartCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.name, "", -1, "/", "", cc.secure, true)
}

type CartHandler struct {
	cartService *services.CartService
	cookie      *CartCookie
}

func NewCartHandler(cartService *services.CartService, cookie *CartCookie) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		cookie:      cookie,
	}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	utils.SuccessResponse(c, services.View(h.cookie.Load(c)))
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req services.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	crt := h.cookie.Load(c)
	if err := h.cartService.AddItem(c.Request.Context(), crt, &req); err != nil {
		handleServiceError(c, err)
		return
	}
	h.respond(c, crt, i18n.KeyCartItemAdded)
}

// PUT /cart/items/:variantId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req services.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	crt := h.cookie.Load(c)
	if err := h.cartService.UpdateQuantity(crt, c.Param("variantId"), req.Quantity); err != nil {
		handleServiceError(c, err)
		return
	}

	key := i18n.KeyCartItemUpdated
	if req.Quantity <= 0 {
		key = i18n.KeyCartItemRemoved
	}
	h.respond(c, crt, key)
}

// DELETE /cart/items/:variantId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	crt := h.cookie.Load(c)
	if err := h.cartService.RemoveItem(crt, c.Param("variantId")); err != nil {
		handleServiceError(c, err)
		return
	}
	h.respond(c, crt, i18n.KeyCartItemRemoved)
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	crt := h.cookie.Load(c)
	crt.Clear()
	h.respond(c, crt, i18n.KeyCartCleared)
}

func (h *CartHandler) respond(c *gin.Context, crt *cart.Cart, messageKey string) {
	if err := h.cookie.Store(c, crt); err != nil {
		handleServiceError(c, err)
		return
	}

	view := services.View(crt)
	utils.SuccessResponse(c, gin.H{
		"items":   view.Items,
		"total":   view.Total,
		"count":   view.Count,
		"message": i18n.T(utils.GetLangFromContext(c), messageKey),
	})
}

type CheckoutHandler struct {
	paymentService *services.PaymentService
	cookie         *CartCookie
}

func NewCheckoutHandler(paymentService *services.PaymentService, cookie *CartCookie) *CheckoutHandler {
	return &CheckoutHandler{
		paymentService: paymentService,
		cookie:         cookie,
	}
}

// POST /checkout/session
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.StartCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.paymentService.StartCheckout(c.Request.Context(), userID, h.cookie.Load(c), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, session)
}
