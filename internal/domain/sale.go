package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an immutable sales transaction. TotalAmount always equals the sum
// of its items' price * quantity.
type Sale struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"totalAmount"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Items       []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem is one line of a sale. Price is the unit price captured at sale
// time and does not follow later product price changes.
type SaleItem struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	SaleID    int64           `gorm:"index" json:"saleId"`
	ProductID int64           `gorm:"index" json:"productId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Product   *ProductRef     `gorm:"-" json:"product,omitempty"`
}

// InventorySnapshot is an hourly roll-up of the catalog used for trend views.
type InventorySnapshot struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	ProductCount int64           `json:"productCount"`
	UnitsOnHand  int64           `json:"unitsOnHand"`
	StockValue   decimal.Decimal `gorm:"type:decimal(14,2)" json:"stockValue"`
	SnapshotAt   time.Time       `gorm:"index" json:"snapshotAt"`
}
