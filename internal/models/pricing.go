// internal/models/pricing.go
package models

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

const DefaultVariantName = "Standard"

var ErrUnknownVariant = errors.New("unknown product variant")

type PricingKind string

const (
	PricingFlat       PricingKind = "flat"
	PricingPerVariant PricingKind = "per_variant"
)

// Pricing is either FlatPricing or VariantPricing.
type Pricing interface {
	Kind() PricingKind
	// Resolve returns the purchasable variant and its current unit price.
	Resolve(variantID string) (Variant, error)
	Display() PriceDisplay
}

// PriceDisplay is what the storefront shows next to a product. Original is set
// only when a struck-through reference price should be rendered.
type PriceDisplay struct {
	Price    decimal.Decimal  `json:"price"`
	Original *decimal.Decimal `json:"original,omitempty"`
}

// ShowStrikethrough reports whether a reference price is shown crossed out
// next to a discounted one.
func ShowStrikethrough(reference, discount decimal.Decimal) bool {
	return discount.IsPositive() && discount.LessThan(reference)
}

// ResolvePricing picks the pricing model for a product. Products with
// variants are priced per variant; everything else is flat.
func ResolvePricing(p *Product) Pricing {
	if len(p.Variants) > 0 {
		variants := make([]Variant, len(p.Variants))
		copy(variants, p.Variants)
		return VariantPricing{Variants: variants}
	}
	return FlatPricing{
		VariantID:  p.ID.String(),
		Selling:    p.SellingPrice,
		Discounted: p.DiscountedPrice,
	}
}

// FlatPricing exposes a single implicit variant keyed by the product id.
type FlatPricing struct {
	VariantID  string
	Selling    decimal.Decimal
	Discounted decimal.Decimal
}

func (FlatPricing) Kind() PricingKind { return PricingFlat }

func (p FlatPricing) UnitPrice() decimal.Decimal {
	if p.Discounted.IsPositive() {
		return p.Discounted
	}
	return p.Selling
}

func (p FlatPricing) Resolve(variantID string) (Variant, error) {
	if variantID != "" && variantID != p.VariantID {
		return Variant{}, ErrUnknownVariant
	}
	return Variant{ID: p.VariantID, Name: DefaultVariantName, Price: p.UnitPrice()}, nil
}

func (p FlatPricing) Display() PriceDisplay {
	display := PriceDisplay{Price: p.UnitPrice()}
	if ShowStrikethrough(p.Selling, p.Discounted) {
		original := p.Selling
		display.Original = &original
	}
	return display
}

func (p FlatPricing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type            PricingKind     `json:"type"`
		VariantID       string          `json:"variant_id"`
		SellingPrice    decimal.Decimal `json:"selling_price"`
		DiscountedPrice decimal.Decimal `json:"discounted_price"`
		Display         PriceDisplay    `json:"display"`
	}{p.Kind(), p.VariantID, p.Selling, p.Discounted, p.Display()})
}

type VariantPricing struct {
	Variants []Variant
}

func (VariantPricing) Kind() PricingKind { return PricingPerVariant }

func (p VariantPricing) Resolve(variantID string) (Variant, error) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, nil
		}
	}
	return Variant{}, ErrUnknownVariant
}

// Display shows the lowest variant price, as "from" pricing.
func (p VariantPricing) Display() PriceDisplay {
	var lowest decimal.Decimal
	for i, v := range p.Variants {
		if i == 0 || v.Price.LessThan(lowest) {
			lowest = v.Price
		}
	}
	return PriceDisplay{Price: lowest}
}

func (p VariantPricing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     PricingKind  `json:"type"`
		Variants []Variant    `json:"variants"`
		Display  PriceDisplay `json:"display"`
	}{p.Kind(), p.Variants, p.Display()})
}
