package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Address 帳單/收件地址共用欄位, draft 階段允許空值
type Address struct {
	FirstName  string `gorm:"type:varchar(100)" json:"first_name"`
	LastName   string `gorm:"type:varchar(100)" json:"last_name"`
	Company    string `gorm:"type:varchar(100)" json:"company,omitempty"`
	Address1   string `gorm:"type:varchar(200)" json:"address_1"`
	Address2   string `gorm:"type:varchar(200)" json:"address_2,omitempty"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	State      string `gorm:"type:varchar(100)" json:"state"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"type:varchar(100)" json:"country"`
	Phone      string `gorm:"type:varchar(20)" json:"phone,omitempty"`
}

// IsComplete 必填欄位是否都有值, company/address2/phone 不是必填
func (a Address) IsComplete() bool {
	required := []string{a.FirstName, a.LastName, a.Address1, a.City, a.State, a.PostalCode, a.Country}
	for _, field := range required {
		if field == "" {
			return false
		}
	}
	return true
}

func (a Address) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

// Order 成立後不可變動, 地址與金額都是 draft 當下的快照
type Order struct {
	OrderID     uint    `gorm:"primaryKey" json:"order_id"`
	OrderNumber string  `gorm:"unique;not null;type:varchar(20)" json:"order_number"`
	UserID      uint    `gorm:"not null;index" json:"user_id"`
	Email       string  `gorm:"not null;type:varchar(100)" json:"email"`
	Billing     Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	Shipping    Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`

	Status         OrderStatus     `gorm:"not null;type:varchar(20);index;default:'draft'" json:"status"`
	Subtotal       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"not null;type:decimal(10,3)" json:"tax_amount"`
	ShippingAmount decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"shipping_amount"`
	Total          decimal.Decimal `gorm:"not null;type:decimal(10,3)" json:"total"`

	// 只有 payment reconciliation 流程會更新這三個欄位
	PaymentIntentID string `gorm:"type:varchar(100)" json:"payment_intent_id,omitempty"`
	PaymentMethod   string `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	PaymentStatus   string `gorm:"not null;type:varchar(20);default:'pending'" json:"payment_status"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	BaseModel
}

// NewOrderNumber 產生訂單編號 ORD-XXXXXXXX
func NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:8])
}

// OrderItem 下單當下的數量與單價快照, price 是複製不是參照
type OrderItem struct {
	OrderItemID uint            `gorm:"primaryKey" json:"order_item_id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	VariantID   uint            `gorm:"not null;index" json:"variant_id"`
	Variant     *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	LineTotal   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"line_total"`
	BaseModel
}

// OrderDraft 結帳暫存, finalize 成功後刪除
type OrderDraft struct {
	DraftID  uint    `gorm:"primaryKey" json:"draft_id"`
	UserID   uint    `gorm:"not null;index" json:"user_id"`
	CartID   uint    `gorm:"not null;index" json:"cart_id"`
	Cart     *Cart   `gorm:"foreignKey:CartID" json:"-"`
	Email    string  `gorm:"type:varchar(100)" json:"email"`
	Billing  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	Shipping Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`

	Subtotal       decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"not null;type:decimal(10,3);default:0" json:"tax_amount"`
	ShippingAmount decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"shipping_amount"`
	Total          decimal.Decimal `gorm:"not null;type:decimal(10,3);default:0" json:"total"`
	BaseModel
}

func (d *OrderDraft) IsComplete() bool {
	return d.Email != "" && d.Billing.IsComplete() && d.Shipping.IsComplete()
}
