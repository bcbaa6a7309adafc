// internal/services/cart_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/kisanexport/storefront/internal/cart"
	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/utils"
)

// CartService resolves catalog data for cart lines and seals the cart into
// the token the client carries. Carts are never stored server-side.
type CartService struct {
	products repository.ProductRepository
	ttl      time.Duration
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	VariantID string    `json:"variant_id,omitempty" validate:"max=64"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartView struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

func NewCartService(products repository.ProductRepository, ttl time.Duration) *CartService {
	return &CartService{
		products: products,
		ttl:      ttl,
	}
}

// Load opens a cart token. Missing, expired or tampered tokens yield an empty cart.
func (s *CartService) Load(token string) *cart.Cart {
	if token == "" {
		return &cart.Cart{}
	}

	items, err := utils.ParseCartToken(token)
	if err != nil {
		logrus.WithError(err).Debug("Discarding unreadable cart token")
		return &cart.Cart{}
	}
	return cart.New(items)
}

// MaxCartTokenBytes keeps the cart cookie, with its name and attributes,
// under the 4096 bytes browsers store per cookie.
const MaxCartTokenBytes = 3800

// Seal signs the cart into a cookie token. A cart whose token would be
// dropped by the browser fails with ErrCartTooLarge.
func (s *CartService) Seal(c *cart.Cart) (string, error) {
	token, err := utils.GenerateCartToken(c.Snapshot(), s.ttl)
	if err != nil {
		return "", err
	}
	if len(token) > MaxCartTokenBytes {
		return "", errors.Wrapf(ErrCartTooLarge, "token of %d items is %d bytes", len(c.Items), len(token))
	}
	return token, nil
}

func (s *CartService) TTL() time.Duration {
	return s.ttl
}

// AddItem adds one unit of a product variant at its current price.
func (s *CartService) AddItem(ctx context.Context, c *cart.Cart, req *AddCartItemRequest) error {
	if req.ProductID == uuid.Nil {
		return invalidInput("product_id is required")
	}

	item, err := s.ResolveItem(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return err
	}
	c.Add(item)
	return nil
}

// ResolveItem builds a cart line from the live catalog.
func (s *CartService) ResolveItem(ctx context.Context, productID uuid.UUID, variantID string) (models.CartItem, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return models.CartItem{}, err
	}
	if !product.IsActive() {
		return models.CartItem{}, ErrProductUnavailable
	}

	pricing := product.Pricing
	if pricing == nil {
		pricing = models.ResolvePricing(product)
	}
	variant, err := pricing.Resolve(variantID)
	if err != nil {
		return models.CartItem{}, err
	}

	return models.CartItem{
		ProductID:   product.ID.String(),
		VariantID:   variant.ID,
		Quantity:    1,
		Price:       variant.Price,
		Name:        product.Name,
		VariantName: variant.Name,
		Image:       product.PrimaryImage,
	}, nil
}

func (s *CartService) UpdateQuantity(c *cart.Cart, variantID string, quantity int) error {
	if !c.UpdateQuantity(variantID, quantity) {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) RemoveItem(c *cart.Cart, variantID string) error {
	if !c.Remove(variantID) {
		return ErrCartItemNotFound
	}
	return nil
}

func View(c *cart.Cart) CartView {
	items := c.Snapshot()
	return CartView{
		Items: items,
		Total: c.Total(),
		Count: c.Count(),
	}
}
