package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	repodb "github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IInventoryRepo interface {
	ApplyAdjustment(ctx context.Context, adjustment *model.StockAdjustment) (*model.ProductVariant, error)
	ListAdjustments(ctx context.Context) ([]model.StockAdjustment, error)
	ListMovementsByVariant(ctx context.Context, variantID uint) ([]model.StockMovement, error)
	GetActiveAlertByVariant(ctx context.Context, variantID uint) (*model.LowStockAlert, error)
	CreateAlert(ctx context.Context, alert *model.LowStockAlert) error
	GetAlertByID(ctx context.Context, alertID uint) (*model.LowStockAlert, error)
	ListAlertsByStatus(ctx context.Context, status model.AlertStatus) ([]model.LowStockAlert, error)
	AcknowledgeAlert(ctx context.Context, alertID, userID uint) error
	ResolveAlert(ctx context.Context, alertID uint) error
}

type ITrackedVariantRepo interface {
	GetVariantByID(ctx context.Context, variantID uint) (*model.ProductVariant, error)
	ListTrackedVariants(ctx context.Context) ([]model.ProductVariant, error)
}

// StockLevel 盤點畫面一行的資料
type StockLevel struct {
	VariantID     uint   `json:"variant_id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stock_quantity"`
	LowStock      bool   `json:"low_stock"`
}

type IInventoryService interface {
	Adjust(ctx context.Context, adjustment *model.StockAdjustment) (*model.ProductVariant, error)
	ListAdjustments(ctx context.Context) ([]model.StockAdjustment, error)
	ListMovements(ctx context.Context, variantID uint) ([]model.StockMovement, error)
	StockLevels(ctx context.Context) ([]StockLevel, error)
	ListAlerts(ctx context.Context, status model.AlertStatus) ([]model.LowStockAlert, error)
	AcknowledgeAlert(ctx context.Context, alertID, userID uint) (*model.LowStockAlert, error)
	ResolveAlert(ctx context.Context, alertID uint) (*model.LowStockAlert, error)
}

type InventoryService struct {
	invRepo     IInventoryRepo
	variantRepo ITrackedVariantRepo
	threshold   int
	logger      *zerolog.Logger
}

func NewInventoryService(invRepo IInventoryRepo, variantRepo ITrackedVariantRepo, threshold int, logger *zerolog.Logger) IInventoryService {
	if invRepo == nil || variantRepo == nil {
		panic("invRepo and variantRepo cannot be nil")
	}
	return &InventoryService{
		invRepo:     invRepo,
		variantRepo: variantRepo,
		threshold:   threshold,
		logger:      logger,
	}
}

// Adjust 套用庫存異動, 異動後低於門檻就開 alert
// 同一 variant 已有 active alert 時只更新不重複開
func (s *InventoryService) Adjust(ctx context.Context, adjustment *model.StockAdjustment) (*model.ProductVariant, error) {
	if adjustment.Quantity == 0 {
		return nil, apperr.BadRequest("adjustment quantity cannot be zero")
	}

	variant, err := s.invRepo.ApplyAdjustment(ctx, adjustment)
	if err != nil {
		if errors.Is(err, repodb.ErrVariantNotFound) {
			return nil, apperr.NotFound("product variant not found")
		}
		if errors.Is(err, repodb.ErrNegativeStock) {
			return nil, apperr.Conflict("adjustment would drive stock below zero")
		}
		return nil, err
	}

	if err := s.checkLowStock(ctx, variant); err != nil && s.logger != nil {
		// alert 失敗不阻斷異動本身
		s.logger.Warn().Err(err).Uint("variant_id", variant.VariantID).Msg("low stock alert check failed")
	}
	return variant, nil
}

func (s *InventoryService) ListAdjustments(ctx context.Context) ([]model.StockAdjustment, error) {
	return s.invRepo.ListAdjustments(ctx)
}

func (s *InventoryService) ListMovements(ctx context.Context, variantID uint) ([]model.StockMovement, error) {
	if _, err := s.variantRepo.GetVariantByID(ctx, variantID); err != nil {
		if errors.Is(err, repodb.ErrVariantNotFound) {
			return nil, apperr.NotFound("product variant not found")
		}
		return nil, err
	}
	return s.invRepo.ListMovementsByVariant(ctx, variantID)
}

func (s *InventoryService) StockLevels(ctx context.Context) ([]StockLevel, error) {
	variants, err := s.variantRepo.ListTrackedVariants(ctx)
	if err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(variants))
	for i := range variants {
		v := &variants[i]
		levels = append(levels, StockLevel{
			VariantID:     v.VariantID,
			SKU:           v.SKU,
			Name:          v.DisplayName(),
			StockQuantity: v.StockQuantity,
			LowStock:      v.StockQuantity <= s.threshold,
		})
	}
	return levels, nil
}

func (s *InventoryService) ListAlerts(ctx context.Context, status model.AlertStatus) ([]model.LowStockAlert, error) {
	return s.invRepo.ListAlertsByStatus(ctx, status)
}

func (s *InventoryService) AcknowledgeAlert(ctx context.Context, alertID, userID uint) (*model.LowStockAlert, error) {
	alert, err := s.getAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !alert.Status.CanTransitionTo(model.AlertStatusAcknowledged) {
		return nil, apperr.Conflict(
			fmt.Sprintf("alert is %s and cannot be acknowledged", alert.Status))
	}
	if err := s.invRepo.AcknowledgeAlert(ctx, alertID, userID); err != nil {
		return nil, err
	}
	return s.getAlert(ctx, alertID)
}

func (s *InventoryService) ResolveAlert(ctx context.Context, alertID uint) (*model.LowStockAlert, error) {
	alert, err := s.getAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !alert.Status.CanTransitionTo(model.AlertStatusResolved) {
		return nil, apperr.Conflict(
			fmt.Sprintf("alert is %s and cannot be resolved", alert.Status))
	}
	if err := s.invRepo.ResolveAlert(ctx, alertID); err != nil {
		return nil, err
	}
	return s.getAlert(ctx, alertID)
}

func (s *InventoryService) getAlert(ctx context.Context, alertID uint) (*model.LowStockAlert, error) {
	alert, err := s.invRepo.GetAlertByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("low stock alert not found")
		}
		return nil, err
	}
	return alert, nil
}

// checkLowStock 低於門檻開 alert, 回到門檻之上把 active alert 收掉
func (s *InventoryService) checkLowStock(ctx context.Context, variant *model.ProductVariant) error {
	if !variant.TrackInventory {
		return nil
	}

	active, err := s.invRepo.GetActiveAlertByVariant(ctx, variant.VariantID)
	if err != nil {
		return err
	}

	if variant.StockQuantity <= s.threshold {
		if active != nil {
			return nil
		}
		return s.invRepo.CreateAlert(ctx, &model.LowStockAlert{
			VariantID:    variant.VariantID,
			Threshold:    s.threshold,
			CurrentStock: variant.StockQuantity,
			Status:       model.AlertStatusActive,
		})
	}

	if active != nil {
		return s.invRepo.ResolveAlert(ctx, active.AlertID)
	}
	return nil
}
