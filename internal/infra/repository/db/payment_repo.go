package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"gorm.io/gorm"
)

type PaymentRepo struct {
	db *DbDao
}

func NewPaymentRepo(db *DbDao) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// ---- payment intent ----

func (s *PaymentRepo) CreateIntent(ctx context.Context, intent *model.PaymentIntent) error {
	return s.db.WithContext(ctx).Create(intent).Error
}

func (s *PaymentRepo) GetIntentByProcessorID(ctx context.Context, processorIntentID string) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := s.db.WithContext(ctx).Preload("Order").
		Where("processor_intent_id = ?", processorIntentID).
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetUnresolvedIntentByOrder 找出該訂單還沒走到終態的 intent,
// 存在的話建立請求必須回傳同一筆而不是再開一筆
func (s *PaymentRepo) GetUnresolvedIntentByOrder(ctx context.Context, orderID uint) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND status NOT IN ?", orderID,
			[]model.IntentStatus{model.IntentStatusSucceeded, model.IntentStatusCanceled}).
		Order("created_at DESC").
		First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &intent, nil
}

// CountIntentsByOrder 回傳該訂單落地過幾筆 intent, 用來推算冪等鍵的序號
func (s *PaymentRepo) CountIntentsByOrder(ctx context.Context, orderID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.PaymentIntent{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, err
}

// UpdateIntentStatus 每次觀察到的狀態變化都要落地
func (s *PaymentRepo) UpdateIntentStatus(ctx context.Context, processorIntentID string, status model.IntentStatus) error {
	return s.db.WithContext(ctx).Model(&model.PaymentIntent{}).
		Where("processor_intent_id = ?", processorIntentID).
		Update("status", status).Error
}

// ---- payment ----

// CreatePayment processor intent id 有唯一鍵,
// 唯一鍵衝突交給呼叫端視為 already applied
func (s *PaymentRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return s.db.WithContext(ctx).Create(payment).Error
}

func (s *PaymentRepo) GetPaymentByProcessorIntentID(ctx context.Context, processorIntentID string) (*model.Payment, error) {
	var payment model.Payment
	err := s.db.WithContext(ctx).
		Where("processor_intent_id = ?", processorIntentID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentRepo) GetPaymentsByUserID(ctx context.Context, userID uint) ([]model.Payment, error) {
	var payments []model.Payment
	err := s.db.WithContext(ctx).
		Joins("JOIN orders ON orders.order_id = payments.order_id").
		Where("orders.user_id = ?", userID).
		Order("payments.created_at DESC").
		Find(&payments).Error
	return payments, err
}

// ---- webhook ledger ----

// GetOrCreateWebhookEvent 以 event id 去重, 回傳 created 表示是不是第一次看到
// 並發下唯一鍵衝突時改走讀取, 視同已存在
func (s *PaymentRepo) GetOrCreateWebhookEvent(ctx context.Context, eventID, eventType string, payload []byte) (*model.WebhookEvent, bool, error) {
	var existing model.WebhookEvent
	err := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	event := model.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err2 := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&existing).Error; err2 != nil {
				return nil, false, err2
			}
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &event, true, nil
}

func (s *PaymentRepo) MarkWebhookEventProcessed(ctx context.Context, eventID string) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": now,
		}).Error
}
