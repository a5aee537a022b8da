package model

import (
	"time"
)

type AdjustmentType string

const (
	AdjustmentTypeIn     AdjustmentType = "in"
	AdjustmentTypeOut    AdjustmentType = "out"
	AdjustmentTypeManual AdjustmentType = "adjustment"
	AdjustmentTypeReturn AdjustmentType = "return"
	AdjustmentTypeDamage AdjustmentType = "damage"
	AdjustmentTypeTheft  AdjustmentType = "theft"
)

// StockAdjustment 有號數量的庫存異動紀錄, 與 variant 計數器在同一個交易內更新
type StockAdjustment struct {
	AdjustmentID uint            `gorm:"primaryKey" json:"adjustment_id"`
	VariantID    uint            `gorm:"not null;index" json:"variant_id"`
	Variant      *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Type         AdjustmentType  `gorm:"not null;type:varchar(20);index" json:"type"`
	Quantity     int             `gorm:"not null" json:"quantity"` // 正值進貨, 負值出貨
	Reason       string          `gorm:"type:text" json:"reason,omitempty"`
	Reference    string          `gorm:"type:varchar(100)" json:"reference,omitempty"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	BaseModel
}

type MovementType string

const (
	MovementTypeSale       MovementType = "sale"
	MovementTypeReturn     MovementType = "return"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeDamage     MovementType = "damage"
	MovementTypeTheft      MovementType = "theft"
)

type StockMovement struct {
	MovementID uint         `gorm:"primaryKey" json:"movement_id"`
	VariantID  uint         `gorm:"not null;index" json:"variant_id"`
	Type       MovementType `gorm:"not null;type:varchar(20);index" json:"type"`
	Quantity   int          `gorm:"not null" json:"quantity"`
	Reference  string       `gorm:"type:varchar(100)" json:"reference,omitempty"`
	Notes      string       `gorm:"type:text" json:"notes,omitempty"`
	BaseModel
}

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	switch next {
	case AlertStatusAcknowledged:
		return s == AlertStatusActive
	case AlertStatusResolved:
		return s != AlertStatusResolved
	}
	return false
}

// LowStockAlert 同一 variant 同時間只會有一筆 active
type LowStockAlert struct {
	AlertID        uint            `gorm:"primaryKey" json:"alert_id"`
	VariantID      uint            `gorm:"not null;index" json:"variant_id"`
	Variant        *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Threshold      int             `gorm:"not null" json:"threshold"`
	CurrentStock   int             `gorm:"not null" json:"current_stock"`
	Status         AlertStatus     `gorm:"not null;type:varchar(20);index;default:'active'" json:"status"`
	AcknowledgedBy *uint           `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at,omitempty"`
	BaseModel
}
