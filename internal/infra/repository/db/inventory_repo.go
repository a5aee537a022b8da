package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepo struct {
	db *DbDao
}

func NewInventoryRepo(db *DbDao) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// ApplyAdjustment 異動紀錄與計數器更新在同一交易:
// 紀錄是 why, 計數器是 fast-read value
// 調整後為負數時整筆 rollback
func (s *InventoryRepo) ApplyAdjustment(ctx context.Context, adjustment *model.StockAdjustment) (*model.ProductVariant, error) {
	var updated *model.ProductVariant

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var variant model.ProductVariant
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&variant, adjustment.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVariantNotFound
			}
			return err
		}

		newStock := variant.StockQuantity + adjustment.Quantity
		if newStock < 0 {
			return ErrNegativeStock
		}

		if err := tx.WithContext(ctx).Create(adjustment).Error; err != nil {
			return err
		}

		if err := tx.WithContext(ctx).Model(&model.ProductVariant{}).
			Where("variant_id = ?", adjustment.VariantID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", adjustment.Quantity)).Error; err != nil {
			return err
		}

		if err := tx.WithContext(ctx).Create(&model.StockMovement{
			VariantID: adjustment.VariantID,
			Type:      model.MovementTypeAdjustment,
			Quantity:  adjustment.Quantity,
			Reference: adjustment.Reference,
			Notes:     adjustment.Reason,
		}).Error; err != nil {
			return err
		}

		variant.StockQuantity = newStock
		updated = &variant
		return nil
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *InventoryRepo) ListAdjustments(ctx context.Context) ([]model.StockAdjustment, error) {
	var adjustments []model.StockAdjustment
	err := s.db.WithContext(ctx).Preload("Variant").
		Order("created_at DESC").
		Find(&adjustments).Error
	return adjustments, err
}

func (s *InventoryRepo) ListMovementsByVariant(ctx context.Context, variantID uint) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := s.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}

// ---- low stock alert ----

func (s *InventoryRepo) GetActiveAlertByVariant(ctx context.Context, variantID uint) (*model.LowStockAlert, error) {
	var alert model.LowStockAlert
	err := s.db.WithContext(ctx).
		Where("variant_id = ? AND status = ?", variantID, model.AlertStatusActive).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (s *InventoryRepo) CreateAlert(ctx context.Context, alert *model.LowStockAlert) error {
	return s.db.WithContext(ctx).Create(alert).Error
}

func (s *InventoryRepo) GetAlertByID(ctx context.Context, alertID uint) (*model.LowStockAlert, error) {
	var alert model.LowStockAlert
	err := s.db.WithContext(ctx).Preload("Variant").First(&alert, alertID).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (s *InventoryRepo) ListAlertsByStatus(ctx context.Context, status model.AlertStatus) ([]model.LowStockAlert, error) {
	var alerts []model.LowStockAlert
	err := s.db.WithContext(ctx).Preload("Variant").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

func (s *InventoryRepo) AcknowledgeAlert(ctx context.Context, alertID, userID uint) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&model.LowStockAlert{}).
		Where("alert_id = ?", alertID).
		Updates(map[string]interface{}{
			"status":          model.AlertStatusAcknowledged,
			"acknowledged_by": userID,
			"acknowledged_at": now,
		}).Error
}

func (s *InventoryRepo) ResolveAlert(ctx context.Context, alertID uint) error {
	return s.db.WithContext(ctx).Model(&model.LowStockAlert{}).
		Where("alert_id = ?", alertID).
		Update("status", model.AlertStatusResolved).Error
}
