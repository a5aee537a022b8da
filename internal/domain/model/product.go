package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID   uint             `gorm:"primaryKey" json:"product_id"`
	Name        string           `gorm:"not null;type:varchar(200)" json:"name"`
	Slug        string           `gorm:"unique;not null;type:varchar(200)" json:"slug"`
	Description string           `gorm:"type:text" json:"description"`
	Category    string           `gorm:"type:varchar(50);index" json:"category"`
	IsActive    bool             `gorm:"not null;default:true" json:"is_active"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	BaseModel
}

// ProductVariant 單一可購買的 SKU
type ProductVariant struct {
	VariantID      uint            `gorm:"primaryKey" json:"variant_id"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	Product        *Product        `gorm:"foreignKey:ProductID" json:"-"`
	SKU            string          `gorm:"unique;not null;type:varchar(100)" json:"sku"`
	Name           string          `gorm:"type:varchar(200)" json:"name"`
	Price          decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	StockQuantity  int             `gorm:"not null;default:0" json:"stock_quantity"`
	TrackInventory bool            `gorm:"not null;default:true" json:"track_inventory"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	BaseModel
}

func (v *ProductVariant) InStock() bool {
	if !v.TrackInventory {
		return true
	}
	return v.StockQuantity > 0
}

func (v *ProductVariant) DisplayName() string {
	base := v.SKU
	if v.Product != nil {
		base = v.Product.Name
	}
	if v.Name != "" {
		return fmt.Sprintf("%s - %s", base, v.Name)
	}
	return fmt.Sprintf("%s - %s", base, v.SKU)
}
