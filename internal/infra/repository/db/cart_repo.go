package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"gorm.io/gorm"
)

type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

// EnsureCartForUser 取得用戶購物車, 不存在就建立
// 回傳 created 讓呼叫端知道是不是新建立的
func (s *CartRepo) EnsureCartForUser(ctx context.Context, userID uint) (*model.Cart, bool, error) {
	var cart model.Cart
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Variant").Preload("Items.Variant.Product").
		Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cart = model.Cart{UserID: &userID}
	if err := s.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, false, err
	}
	return &cart, true, nil
}

// EnsureCartForSession 匿名購物車, 以 session key 為身份
func (s *CartRepo) EnsureCartForSession(ctx context.Context, sessionKey string) (*model.Cart, bool, error) {
	var cart model.Cart
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Variant").Preload("Items.Variant.Product").
		Where("session_key = ?", sessionKey).First(&cart).Error
	if err == nil {
		return &cart, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cart = model.Cart{SessionKey: sessionKey}
	if err := s.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, false, err
	}
	return &cart, true, nil
}

func (s *CartRepo) GetCartByID(ctx context.Context, cartID uint) (*model.Cart, error) {
	var cart model.Cart
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Variant").Preload("Items.Variant.Product").
		First(&cart, cartID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem 同一 (cart, variant) 已存在就加數量, 不新增列
func (s *CartRepo) AddItem(ctx context.Context, cartID, variantID uint, quantity int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.CartItem
		err := tx.WithContext(ctx).
			Where("cart_id = ? AND variant_id = ?", cartID, variantID).
			First(&existing).Error
		if err == nil {
			return tx.WithContext(ctx).Model(&existing).
				Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.WithContext(ctx).Create(&model.CartItem{
			CartID:    cartID,
			VariantID: variantID,
			Quantity:  quantity,
		}).Error
	})
}

func (s *CartRepo) GetItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := s.db.WithContext(ctx).Preload("Variant").
		Where("cart_id = ? AND cart_item_id = ?", cartID, itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CartRepo) UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error {
	return s.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("cart_id = ? AND cart_item_id = ?", cartID, itemID).
		Update("quantity", quantity).Error
}

func (s *CartRepo) RemoveItem(ctx context.Context, cartID, itemID uint) error {
	return s.db.WithContext(ctx).
		Where("cart_id = ? AND cart_item_id = ?", cartID, itemID).
		Delete(&model.CartItem{}).Error
}

func (s *CartRepo) ClearItems(ctx context.Context, cartID uint) error {
	return s.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
