package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. StockQuantity never goes below zero;
// the conditional stock update in the pos package enforces it.
type Product struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:100;index" json:"name"`
	Sku           string          `gorm:"size:50;uniqueIndex" json:"sku"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stockQuantity"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ProductRef is the identifying subset of a product nested inside sale items.
type ProductRef struct {
	ID    int64            `json:"id"`
	Name  string           `json:"name"`
	Sku   string           `json:"sku"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

func (p *Product) Ref(withPrice bool) *ProductRef {
	ref := &ProductRef{ID: p.ID, Name: p.Name, Sku: p.Sku}
	if withPrice {
		price := p.Price
		ref.Price = &price
	}
	return ref
}
