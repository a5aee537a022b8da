package dto

import "github.com/shopspring/decimal"

type CreateIntentDTO struct {
	OrderID uint `json:"order_id"`
}

// IntentResponse client secret 給前端完成付款用
type IntentResponse struct {
	ProcessorIntentID string          `json:"processor_intent_id"`
	ClientSecret      string          `json:"client_secret"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
}

type ConfirmIntentDTO struct {
	ProcessorIntentID string `json:"processor_intent_id"`
}
