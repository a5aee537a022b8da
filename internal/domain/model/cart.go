package model

import (
	"github.com/shopspring/decimal"
)

// Cart 屬於一個登入用戶或一個匿名 session, 兩者擇一
type Cart struct {
	CartID     uint       `gorm:"primaryKey" json:"cart_id"`
	UserID     *uint      `gorm:"index" json:"user_id,omitempty"`
	SessionKey string     `gorm:"type:varchar(40);index" json:"session_key,omitempty"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	BaseModel
}

// CartItem 同一個 (cart, variant) 只會有一列, 重複加入只加數量
type CartItem struct {
	CartItemID uint            `gorm:"primaryKey" json:"cart_item_id"`
	CartID     uint            `gorm:"not null;uniqueIndex:idx_cart_variant" json:"cart_id"`
	VariantID  uint            `gorm:"not null;uniqueIndex:idx_cart_variant" json:"variant_id"`
	Variant    *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	BaseModel
}

func (i *CartItem) LineTotal() decimal.Decimal {
	if i.Variant == nil {
		return decimal.Zero
	}
	return i.Variant.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}
