package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// ---- draft ----

// EnsureDraft 取得 (user, cart) 的 draft, 不存在就建立
func (s *OrderRepo) EnsureDraft(ctx context.Context, userID, cartID uint, email string) (*model.OrderDraft, bool, error) {
	var draft model.OrderDraft
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND cart_id = ?", userID, cartID).
		First(&draft).Error
	if err == nil {
		return &draft, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	draft = model.OrderDraft{UserID: userID, CartID: cartID, Email: email}
	if err := s.db.WithContext(ctx).Create(&draft).Error; err != nil {
		return nil, false, err
	}
	return &draft, true, nil
}

func (s *OrderRepo) GetDraftByID(ctx context.Context, draftID, userID uint) (*model.OrderDraft, error) {
	var draft model.OrderDraft
	err := s.db.WithContext(ctx).
		Where("draft_id = ? AND user_id = ?", draftID, userID).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *OrderRepo) SaveDraft(ctx context.Context, draft *model.OrderDraft) error {
	return s.db.WithContext(ctx).Save(draft).Error
}

// ---- order ----

func (s *OrderRepo) GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderRepo) GetOrderByIDForUser(ctx context.Context, orderID, userID uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderRepo) GetOrdersByUserID(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// FinalizeDraft 把 draft 轉成正式訂單, 整個流程一個交易:
// 鎖定 variant 列檢查庫存 -> 建立訂單與明細快照 -> 扣庫存與出貨紀錄
// -> 清空購物車 -> 刪除 draft
// 任一品項庫存不足時整筆 rollback, 回傳 InsufficientStockError
func (s *OrderRepo) FinalizeDraft(ctx context.Context, draft *model.OrderDraft, cart *model.Cart) (*model.Order, error) {
	var created *model.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 以 FOR UPDATE 鎖住本次結帳觸及的 variant,
		// 避免並發結帳同時通過同一份庫存檢查
		variantIDs := make([]uint, 0, len(cart.Items))
		for _, item := range cart.Items {
			variantIDs = append(variantIDs, item.VariantID)
		}

		var variants []model.ProductVariant
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("variant_id IN ?", variantIDs).
			Find(&variants).Error; err != nil {
			return err
		}

		variantByID := make(map[uint]*model.ProductVariant, len(variants))
		for i := range variants {
			variantByID[variants[i].VariantID] = &variants[i]
		}

		var shortfalls []StockShortfall
		for _, item := range cart.Items {
			variant, ok := variantByID[item.VariantID]
			if !ok {
				return fmt.Errorf("%w: %d", ErrVariantNotFound, item.VariantID)
			}
			if variant.TrackInventory && item.Quantity > variant.StockQuantity {
				name := variant.SKU
				if item.Variant != nil {
					name = item.Variant.DisplayName()
				}
				shortfalls = append(shortfalls, StockShortfall{
					VariantID: variant.VariantID,
					Name:      name,
					Requested: item.Quantity,
					Available: variant.StockQuantity,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{Items: shortfalls}
		}

		order := &model.Order{
			OrderNumber:    model.NewOrderNumber(),
			UserID:         draft.UserID,
			Email:          draft.Email,
			Billing:        draft.Billing,
			Shipping:       draft.Shipping,
			Status:         model.OrderStatusAwaitingPayment,
			Subtotal:       draft.Subtotal,
			TaxAmount:      draft.TaxAmount,
			ShippingAmount: draft.ShippingAmount,
			Total:          draft.Total,
		}
		if err := tx.WithContext(ctx).Create(order).Error; err != nil {
			return err
		}

		for _, item := range cart.Items {
			variant := variantByID[item.VariantID]
			lineTotal := variant.Price.Mul(decimalFromInt(item.Quantity))
			orderItem := &model.OrderItem{
				OrderID:   order.OrderID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Price:     variant.Price,
				LineTotal: lineTotal,
			}
			if err := tx.WithContext(ctx).Create(orderItem).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, *orderItem)

			if variant.TrackInventory {
				result := tx.WithContext(ctx).Model(&model.ProductVariant{}).
					Where("variant_id = ? AND stock_quantity >= ?", item.VariantID, item.Quantity).
					Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					// 列已上鎖, 到這裡只可能是並發下的防線
					return &InsufficientStockError{Items: []StockShortfall{{
						VariantID: item.VariantID,
						Requested: item.Quantity,
						Available: variant.StockQuantity,
					}}}
				}

				if err := tx.WithContext(ctx).Create(&model.StockMovement{
					VariantID: item.VariantID,
					Type:      model.MovementTypeSale,
					Quantity:  -item.Quantity,
					Reference: order.OrderNumber,
				}).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.WithContext(ctx).
			Where("cart_id = ?", cart.CartID).
			Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		if err := tx.WithContext(ctx).Delete(&model.OrderDraft{}, draft.DraftID).Error; err != nil {
			return err
		}

		created = order
		return nil
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

// TransitionResult 狀態轉移當下的前後狀態
type TransitionResult struct {
	Previous model.OrderStatus
	Current  model.OrderStatus
	Order    *model.Order
}

// MarkOrderPaid 訂單轉 paid, 加點與 paid_at 在同一交易內,
// 以轉移前狀態做 guard, 已付款的訂單直接回傳不重複生效
func (s *OrderRepo) MarkOrderPaid(ctx context.Context, orderID uint, intentID, method string) (*TransitionResult, error) {
	var result *TransitionResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			return err
		}

		previous := order.Status
		if previous.AtLeastPaid() {
			// 已經付款過, side effect 不重跑
			result = &TransitionResult{Previous: previous, Current: previous, Order: &order}
			return nil
		}
		if !previous.CanTransitionTo(model.OrderStatusPaid) {
			return fmt.Errorf("invalid order status transition: %s -> %s", previous, model.OrderStatusPaid)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":            model.OrderStatusPaid,
			"paid_at":           now,
			"payment_intent_id": intentID,
			"payment_method":    method,
			"payment_status":    "succeeded",
		}
		if err := tx.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		// 點數: floor(total), 只在第一次進 paid 時發
		points := int(order.Total.IntPart())
		if points > 0 {
			if err := tx.WithContext(ctx).Model(&model.User{}).
				Where("user_id = ?", order.UserID).
				Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Create(&model.PointsTransaction{
				UserID: order.UserID,
				Points: points,
				Reason: fmt.Sprintf("Order %s payment", order.OrderNumber),
			}).Error; err != nil {
				return err
			}
		}

		order.Status = model.OrderStatusPaid
		order.PaidAt = &now
		order.PaymentIntentID = intentID
		order.PaymentMethod = method
		order.PaymentStatus = "succeeded"
		result = &TransitionResult{Previous: previous, Current: model.OrderStatusPaid, Order: &order}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkOrderCancelled 付款失敗/取消時呼叫, 已付款之後的訂單不得降級
func (s *OrderRepo) MarkOrderCancelled(ctx context.Context, orderID uint, paymentStatus string) (*TransitionResult, error) {
	var result *TransitionResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			return err
		}

		previous := order.Status
		if previous.AtLeastPaid() || previous.IsTerminal() {
			// 過期的失敗通知不能取消已付款訂單
			result = &TransitionResult{Previous: previous, Current: previous, Order: &order}
			return nil
		}
		if !previous.CanTransitionTo(model.OrderStatusCancelled) {
			return fmt.Errorf("invalid order status transition: %s -> %s", previous, model.OrderStatusCancelled)
		}

		updates := map[string]interface{}{
			"status":         model.OrderStatusCancelled,
			"payment_status": paymentStatus,
		}
		if err := tx.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		order.Status = model.OrderStatusCancelled
		order.PaymentStatus = paymentStatus
		result = &TransitionResult{Previous: previous, Current: model.OrderStatusCancelled, Order: &order}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransitionOrder 一般狀態轉移 (processing/shipped/delivered/refunded),
// 不合法的轉移回傳錯誤而不是默默套用
func (s *OrderRepo) TransitionOrder(ctx context.Context, orderID uint, next model.OrderStatus) (*TransitionResult, error) {
	var result *TransitionResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			return err
		}

		previous := order.Status
		if !previous.CanTransitionTo(next) {
			return fmt.Errorf("invalid order status transition: %s -> %s", previous, next)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": next}
		switch next {
		case model.OrderStatusShipped:
			updates["shipped_at"] = now
			order.ShippedAt = &now
		case model.OrderStatusDelivered:
			updates["delivered_at"] = now
			order.DeliveredAt = &now
		}
		if err := tx.WithContext(ctx).Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		order.Status = next
		result = &TransitionResult{Previous: previous, Current: next, Order: &order}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
