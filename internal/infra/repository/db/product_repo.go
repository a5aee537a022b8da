package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"gorm.io/gorm"
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetVariantByID(ctx context.Context, variantID uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := s.db.WithContext(ctx).Preload("Product").First(&variant, variantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return &variant, nil
}

func (s *ProductRepo) ListTrackedVariants(ctx context.Context) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := s.db.WithContext(ctx).Preload("Product").
		Where("track_inventory = ?", true).
		Order("sku").
		Find(&variants).Error
	return variants, err
}
