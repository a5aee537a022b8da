package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/events"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/payment"
	repodb "github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IPaymentRepo interface {
	CreateIntent(ctx context.Context, intent *model.PaymentIntent) error
	GetIntentByProcessorID(ctx context.Context, processorIntentID string) (*model.PaymentIntent, error)
	GetUnresolvedIntentByOrder(ctx context.Context, orderID uint) (*model.PaymentIntent, error)
	CountIntentsByOrder(ctx context.Context, orderID uint) (int64, error)
	UpdateIntentStatus(ctx context.Context, processorIntentID string, status model.IntentStatus) error
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPaymentsByUserID(ctx context.Context, userID uint) ([]model.Payment, error)
	GetOrCreateWebhookEvent(ctx context.Context, eventID, eventType string, payload []byte) (*model.WebhookEvent, bool, error)
	MarkWebhookEventProcessed(ctx context.Context, eventID string) error
}

type IOrderTxRepo interface {
	GetOrderByIDForUser(ctx context.Context, orderID, userID uint) (*model.Order, error)
	MarkOrderPaid(ctx context.Context, orderID uint, intentID, method string) (*repodb.TransitionResult, error)
	MarkOrderCancelled(ctx context.Context, orderID uint, paymentStatus string) (*repodb.TransitionResult, error)
}

// ConfirmResult sync confirm 的回覆, 訂單狀態以 db 落地後為準
type ConfirmResult struct {
	IntentStatus model.IntentStatus `json:"intent_status"`
	OrderStatus  model.OrderStatus  `json:"order_status"`
	LastError    string             `json:"last_error,omitempty"`
}

// WebhookResult Status=already_processed 表示重複事件, 這次沒有做任何事
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Status    string `json:"status"`
}

const (
	WebhookStatusSuccess          = "success"
	WebhookStatusAlreadyProcessed = "already_processed"
)

type IPaymentService interface {
	CreateIntent(ctx context.Context, userID, orderID uint) (*model.PaymentIntent, error)
	ConfirmIntent(ctx context.Context, userID uint, processorIntentID string) (*ConfirmResult, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) (*WebhookResult, error)
	ListPayments(ctx context.Context, userID uint) ([]model.Payment, error)
}

type PaymentService struct {
	paymentRepo   IPaymentRepo
	orderRepo     IOrderTxRepo
	processor     payment.ProcessorClient
	publisher     events.Publisher
	webhookSecret string
	currency      string
	logger        *zerolog.Logger
}

func NewPaymentService(
	paymentRepo IPaymentRepo,
	orderRepo IOrderTxRepo,
	processor payment.ProcessorClient,
	publisher events.Publisher,
	webhookSecret string,
	currency string,
	logger *zerolog.Logger,
) IPaymentService {
	if paymentRepo == nil || orderRepo == nil || processor == nil {
		panic("paymentRepo, orderRepo and processor cannot be nil")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PaymentService{
		paymentRepo:   paymentRepo,
		orderRepo:     orderRepo,
		processor:     processor,
		publisher:     publisher,
		webhookSecret: webhookSecret,
		currency:      currency,
		logger:        logger,
	}
}

// CreateIntent 為 awaiting_payment 的訂單建立收款 intent
// 已有未終結的 intent 時回傳同一筆 (同一個 client secret), 不會重複開
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID uint) (*model.PaymentIntent, error) {
	order, err := s.orderRepo.GetOrderByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, err
	}

	if order.Status != model.OrderStatusAwaitingPayment {
		return nil, apperr.Conflict(
			fmt.Sprintf("order %s is %s, payment can only start from awaiting_payment", order.OrderNumber, order.Status))
	}

	existing, err := s.paymentRepo.GetUnresolvedIntentByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	// key 由 order + 第幾次嘗試決定, 金流商呼叫失敗不會落 intent,
	// 重試會算出同一把 key, 金流商那端不會重複開單
	attempts, err := s.paymentRepo.CountIntentsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	params := payment.CreateIntentParams{
		AmountMinor:    toMinorUnits(order.Total),
		Currency:       s.currency,
		IdempotencyKey: fmt.Sprintf("order-%d-attempt-%d", order.OrderID, attempts+1),
		Metadata: map[string]string{
			"order_id":     strconv.FormatUint(uint64(order.OrderID), 10),
			"order_number": order.OrderNumber,
		},
	}

	procIntent, err := s.processor.CreateIntent(ctx, params)
	if err != nil {
		return nil, apperr.External("payment processor create intent failed", err)
	}

	intent := &model.PaymentIntent{
		ProcessorIntentID: procIntent.ID,
		ClientSecret:      procIntent.ClientSecret,
		OrderID:           order.OrderID,
		Amount:            order.Total,
		Currency:          s.currency,
		Status:            model.IntentStatus(procIntent.Status),
		IdempotencyKey:    params.IdempotencyKey,
	}
	if err := s.paymentRepo.CreateIntent(ctx, intent); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 平行請求已落同一筆 intent, 拿既有那筆回去
			return s.paymentRepo.GetIntentByProcessorID(ctx, procIntent.ID)
		}
		return nil, err
	}
	return intent, nil
}

// ConfirmIntent sync path: 前端說付完了, 但狀態一律跟金流商查證,
// 不信任 client 自己回報的結果
func (s *PaymentService) ConfirmIntent(ctx context.Context, userID uint, processorIntentID string) (*ConfirmResult, error) {
	intent, err := s.paymentRepo.GetIntentByProcessorID(ctx, processorIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment intent not found")
		}
		return nil, err
	}
	if intent.Order == nil || intent.Order.UserID != userID {
		return nil, apperr.NotFound("payment intent not found")
	}

	procIntent, err := s.processor.RetrieveIntent(ctx, processorIntentID)
	if err != nil {
		return nil, apperr.External("payment processor retrieve intent failed", err)
	}

	status := model.IntentStatus(procIntent.Status)
	if err := s.paymentRepo.UpdateIntentStatus(ctx, processorIntentID, status); err != nil {
		return nil, err
	}

	result := &ConfirmResult{
		IntentStatus: status,
		OrderStatus:  intent.Order.Status,
		LastError:    procIntent.LastError,
	}

	if status == model.IntentStatusSucceeded {
		tr, err := s.applySuccess(ctx, intent, procIntent)
		if err != nil {
			return nil, err
		}
		result.OrderStatus = tr.Current
	}
	return result, nil
}

// HandleWebhook async path, 簽章驗證失敗前不做任何變動
// 同一個 event id 只處理一次, 重複送達回 Processed=false
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) (*WebhookResult, error) {
	event, err := payment.VerifyWebhook(payload, sigHeader, s.webhookSecret, payment.DefaultTolerance)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequestCode, "webhook rejected", err)
	}

	ledger, created, err := s.paymentRepo.GetOrCreateWebhookEvent(ctx, event.ID, event.Type, event.Raw)
	if err != nil {
		return nil, err
	}
	if !created && ledger.Processed {
		return &WebhookResult{EventID: event.ID, EventType: event.Type, Processed: false, Status: WebhookStatusAlreadyProcessed}, nil
	}

	// created or 前次處理沒走完, 兩種情況都要跑一次,
	// 各步驟本身冪等所以重跑安全
	if err := s.dispatchWebhook(ctx, event); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.MarkWebhookEventProcessed(ctx, event.ID); err != nil {
		return nil, err
	}
	return &WebhookResult{EventID: event.ID, EventType: event.Type, Processed: true, Status: WebhookStatusSuccess}, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, userID uint) ([]model.Payment, error) {
	return s.paymentRepo.GetPaymentsByUserID(ctx, userID)
}

func (s *PaymentService) dispatchWebhook(ctx context.Context, event *payment.Event) error {
	intent, err := s.paymentRepo.GetIntentByProcessorID(ctx, event.Intent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不是這個系統開的 intent, 記下來就好
			if s.logger != nil {
				s.logger.Warn().Str("event_id", event.ID).
					Str("processor_intent_id", event.Intent.ID).
					Msg("webhook for unknown payment intent")
			}
			return nil
		}
		return err
	}

	switch event.Type {
	case payment.EventTypeIntentSucceeded:
		if err := s.paymentRepo.UpdateIntentStatus(ctx, intent.ProcessorIntentID, model.IntentStatusSucceeded); err != nil {
			return err
		}
		_, err := s.applySuccess(ctx, intent, &event.Intent)
		return err

	case payment.EventTypeIntentFailed:
		if err := s.paymentRepo.UpdateIntentStatus(ctx, intent.ProcessorIntentID, model.IntentStatusRequiresPaymentMethod); err != nil {
			return err
		}
		tr, err := s.orderRepo.MarkOrderCancelled(ctx, intent.OrderID, "failed")
		if err != nil {
			return err
		}
		if tr.Previous != tr.Current {
			s.publish(ctx, tr)
		}
		return nil

	case payment.EventTypeIntentCanceled:
		if err := s.paymentRepo.UpdateIntentStatus(ctx, intent.ProcessorIntentID, model.IntentStatusCanceled); err != nil {
			return err
		}
		tr, err := s.orderRepo.MarkOrderCancelled(ctx, intent.OrderID, "canceled")
		if err != nil {
			return err
		}
		if tr.Previous != tr.Current {
			s.publish(ctx, tr)
		}
		return nil

	default:
		if s.logger != nil {
			s.logger.Info().Str("event_type", event.Type).Msg("unhandled webhook event type")
		}
		return nil
	}
}

// applySuccess sync/webhook 兩條路共用的收斂點,
// payment 唯一鍵 + MarkOrderPaid 的狀態防護讓重複呼叫變 no-op
func (s *PaymentService) applySuccess(ctx context.Context, intent *model.PaymentIntent, procIntent *payment.Intent) (*repodb.TransitionResult, error) {
	now := time.Now().UTC()
	record := &model.Payment{
		ProcessorIntentID: intent.ProcessorIntentID,
		ProcessorChargeID: procIntent.LatestChargeID,
		OrderID:           intent.OrderID,
		Amount:            intent.Amount,
		Currency:          intent.Currency,
		Status:            "succeeded",
		PaymentMethod:     procIntent.PaymentMethod,
		PaidAt:            &now,
	}
	if err := s.paymentRepo.CreatePayment(ctx, record); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// 另一條路已經寫過 payment, 繼續走 MarkOrderPaid 確保訂單也收斂
	}

	tr, err := s.orderRepo.MarkOrderPaid(ctx, intent.OrderID, intent.ProcessorIntentID, procIntent.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if tr.Previous != tr.Current {
		s.publish(ctx, tr)
	}
	return tr, nil
}

func (s *PaymentService) publish(ctx context.Context, tr *repodb.TransitionResult) {
	event := events.OrderEvent{
		OrderID:     tr.Order.OrderID,
		OrderNumber: tr.Order.OrderNumber,
		UserID:      tr.Order.UserID,
		Previous:    tr.Previous,
		Current:     tr.Current,
		Total:       tr.Order.Total.String(),
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).
			Str("order_number", tr.Order.OrderNumber).
			Msg("publish order event failed")
	}
}

// toMinorUnits 以總額換算最小貨幣單位, 四捨五入只做這一次
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
