package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntentStatus 鏡射金流商的 intent 狀態, 本地不另外做轉移表,
// 每次觀察到的變化都要落地
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusCanceled              IntentStatus = "canceled"
	IntentStatusSucceeded             IntentStatus = "succeeded"
)

func (s IntentStatus) IsTerminal() bool {
	return s == IntentStatusSucceeded || s == IntentStatusCanceled
}

// Unresolved 尚未走到終態的 intent, 再次建立請求要回傳同一筆
func (s IntentStatus) Unresolved() bool {
	return !s.IsTerminal()
}

func (s IntentStatus) String() string {
	return string(s)
}

// PaymentIntent 對同一張訂單的一次收款嘗試, 重試會產生新的 intent
type PaymentIntent struct {
	IntentID          uint            `gorm:"primaryKey" json:"intent_id"`
	ProcessorIntentID string          `gorm:"unique;not null;type:varchar(100)" json:"processor_intent_id"`
	ClientSecret      string          `gorm:"not null;type:varchar(200)" json:"client_secret"`
	OrderID           uint            `gorm:"not null;index" json:"order_id"`
	Order             *Order          `gorm:"foreignKey:OrderID" json:"-"`
	Amount            decimal.Decimal `gorm:"not null;type:decimal(10,3)" json:"amount"`
	Currency          string          `gorm:"not null;type:varchar(3);default:'usd'" json:"currency"`
	Status            IntentStatus    `gorm:"not null;type:varchar(30);index;default:'requires_payment_method'" json:"status"`
	// 建立後不再變動, 重送建立請求必須帶同一把 key
	IdempotencyKey string `gorm:"unique;not null;type:varchar(100)" json:"idempotency_key"`
	BaseModel
}

// Payment 成功收款的紀錄, processor intent id 唯一,
// sync/webhook 兩條路同時寫入時靠唯一鍵擋重複
type Payment struct {
	PaymentID         uint            `gorm:"primaryKey" json:"payment_id"`
	ProcessorIntentID string          `gorm:"unique;not null;type:varchar(100)" json:"processor_intent_id"`
	ProcessorChargeID string          `gorm:"type:varchar(100)" json:"processor_charge_id,omitempty"`
	OrderID           uint            `gorm:"not null;index" json:"order_id"`
	Amount            decimal.Decimal `gorm:"not null;type:decimal(10,3)" json:"amount"`
	Currency          string          `gorm:"not null;type:varchar(3);default:'usd'" json:"currency"`
	Status            string          `gorm:"not null;type:varchar(30);default:'pending'" json:"status"`
	PaymentMethod     string          `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	BaseModel
}

// WebhookEvent 以金流商的 event id 去重, at-least-once 送達的 ledger
type WebhookEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventID     string     `gorm:"unique;not null;type:varchar(100)" json:"event_id"`
	EventType   string     `gorm:"not null;type:varchar(100);index" json:"event_type"`
	Processed   bool       `gorm:"not null;default:false;index" json:"processed"`
	Payload     []byte     `gorm:"type:jsonb" json:"payload,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	BaseModel
}
