package payment

import (
	"context"
)

// Intent 金流商回傳的 payment intent 狀態快照
type Intent struct {
	ID             string `json:"id"`
	ClientSecret   string `json:"client_secret"`
	Status         string `json:"status"`
	LatestChargeID string `json:"latest_charge,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	LastError      string `json:"last_error,omitempty"`
}

type CreateIntentParams struct {
	// 金額一律用最小貨幣單位的整數 (cents)
	AmountMinor    int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// ProcessorClient 金流商 API 的邊界
// 每個呼叫都受 ctx 時限控制, 失敗由呼叫端決定是否重試,
// idempotency key 保證重試不會重複扣款
type ProcessorClient interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}
