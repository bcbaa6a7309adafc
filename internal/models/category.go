// internal/models/category.go
package models

type Category struct {
	BaseModel
	Name     string        `json:"name" gorm:"size:255;not null"`
	Slug     string        `json:"slug" gorm:"size:255;not null;index"`
	Image    string        `json:"image" gorm:"type:text;not null"`
	Featured bool          `json:"featured" gorm:"default:false;index"`
	Status   CatalogStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
}

func (c *Category) IsActive() bool {
	return c.Status == CatalogStatusActive
}
