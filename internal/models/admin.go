// internal/models/admin.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	StatusCode   int        `json:"status_code"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`
}

// ImportProduct is a back-office ledger entry for goods bought in for export,
// recording what they cost to land. CategoryName is a snapshot taken on save.
type ImportProduct struct {
	BaseModel
	CategoryID    uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	CategoryName  string          `json:"category_name" gorm:"size:255"`
	ProductName   string          `json:"product_name" gorm:"size:255;not null"`
	TotalQuantity int             `json:"total_quantity" gorm:"not null"`
	PurchasePrice decimal.Decimal `json:"purchase_price" gorm:"type:numeric(14,2);not null"`
	ShippingCost  decimal.Decimal `json:"shipping_cost" gorm:"type:numeric(14,2);not null"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:numeric(14,2);not null"`
	Images        pq.StringArray  `json:"images" gorm:"type:text[]"`
}

// DashboardStats is the back-office summary of store activity.
type DashboardStats struct {
	TotalRevenue      decimal.Decimal       `json:"total_revenue"`
	TodayRevenue      decimal.Decimal       `json:"today_revenue"`
	TotalOrders       int64                 `json:"total_orders"`
	TodayOrders       int64                 `json:"today_orders"`
	AverageOrderValue decimal.Decimal       `json:"average_order_value"`
	TotalCustomers    int64                 `json:"total_customers"`
	OrdersByStatus    map[OrderStatus]int64 `json:"orders_by_status"`
}
