// internal/models/product.go
package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	BaseModel
	Name            string          `json:"name" gorm:"size:255;not null"`
	Slug            string          `json:"slug" gorm:"size:255;not null;index"`
	Description     string          `json:"description" gorm:"type:text"`
	CategoryID      uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	HSCode          string          `json:"hs_code" gorm:"size:20"`
	MinOrderQty     string          `json:"min_order_qty" gorm:"size:100"`
	SellingPrice    decimal.Decimal `json:"selling_price" gorm:"type:numeric(12,2);not null;default:0"`
	DiscountedPrice decimal.Decimal `json:"discounted_price" gorm:"type:numeric(12,2);not null;default:0"`
	Variants        Variants        `json:"variants,omitempty" gorm:"type:jsonb"`
	Images          pq.StringArray  `json:"images" gorm:"type:text[]"`
	PrimaryImage    string          `json:"primary_image" gorm:"type:text"`
	Featured        bool            `json:"featured" gorm:"default:false;index"`
	Status          CatalogStatus   `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`

	// Read side, filled by Hydrate
	CategoryName string  `json:"category_name" gorm:"-"`
	Pricing      Pricing `json:"pricing" gorm:"-"`

	// Relationships
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// Hydrate resolves the derived read-side fields. It runs from the GORM hooks
// so every product leaving the repository carries a resolved Pricing.
func (p *Product) Hydrate() {
	p.Pricing = ResolvePricing(p)
	if p.Category != nil {
		p.CategoryName = p.Category.Name
	}
	p.PrimaryImage = PrimaryImageOf(p.Images)
}

func (p *Product) IsActive() bool {
	return p.Status == CatalogStatusActive
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.PrimaryImage = PrimaryImageOf(p.Images)
	return nil
}

func (p *Product) AfterSave(tx *gorm.DB) error {
	p.Hydrate()
	return nil
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Hydrate()
	return nil
}

// PrimaryImageOf returns the first image, which is always the primary one.
func PrimaryImageOf(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}

type Variant struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Variants []Variant

func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *Variants) Scan(value interface{}) error {
	return scanJSON(value, v)
}
