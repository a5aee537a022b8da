package db

import (
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"gorm.io/gorm"
)

type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

// 初始化db schema
// 冪等性
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&model.User{},
		&model.PointsTransaction{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Cart{},
		&model.CartItem{},
		&model.OrderDraft{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentIntent{},
		&model.Payment{},
		&model.WebhookEvent{},
		&model.StockAdjustment{},
		&model.StockMovement{},
		&model.LowStockAlert{},
	)
}
