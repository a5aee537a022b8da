package dto

type StockAdjustmentDTO struct {
	VariantID uint   `json:"variant_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
	Reference string `json:"reference,omitempty"`
}
