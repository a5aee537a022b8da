package db

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrVariantNotFound 商品規格不存在
	ErrVariantNotFound = errors.New("variant not found")
	// ErrNegativeStock 調整後庫存會變成負數
	ErrNegativeStock = errors.New("adjustment would result in negative stock")
)

// StockShortfall 結帳時單一 variant 的缺貨資訊
type StockShortfall struct {
	VariantID uint   `json:"variant_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError finalize 階段任一品項庫存不足時回傳,
// 交易整筆 rollback, 不做部分成立
type InsufficientStockError struct {
	Items []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	var parts []string
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf("variant %d: requested %d, available %d", item.VariantID, item.Requested, item.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
