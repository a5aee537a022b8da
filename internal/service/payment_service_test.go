package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/events"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/payment"
	repodb "github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test"

// ---- fakes ----

type fakePaymentRepo struct {
	intents       map[string]*model.PaymentIntent
	payments      map[string]*model.Payment
	webhookEvents map[string]*model.WebhookEvent
	createCalls   int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		intents:       map[string]*model.PaymentIntent{},
		payments:      map[string]*model.Payment{},
		webhookEvents: map[string]*model.WebhookEvent{},
	}
}

func (f *fakePaymentRepo) CreateIntent(ctx context.Context, intent *model.PaymentIntent) error {
	f.createCalls++
	f.intents[intent.ProcessorIntentID] = intent
	return nil
}

func (f *fakePaymentRepo) GetIntentByProcessorID(ctx context.Context, id string) (*model.PaymentIntent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return intent, nil
}

func (f *fakePaymentRepo) GetUnresolvedIntentByOrder(ctx context.Context, orderID uint) (*model.PaymentIntent, error) {
	for _, intent := range f.intents {
		if intent.OrderID == orderID && intent.Status.Unresolved() {
			return intent, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) CountIntentsByOrder(ctx context.Context, orderID uint) (int64, error) {
	var count int64
	for _, intent := range f.intents {
		if intent.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

func (f *fakePaymentRepo) UpdateIntentStatus(ctx context.Context, id string, status model.IntentStatus) error {
	if intent, ok := f.intents[id]; ok {
		intent.Status = status
	}
	return nil
}

func (f *fakePaymentRepo) CreatePayment(ctx context.Context, p *model.Payment) error {
	if _, exists := f.payments[p.ProcessorIntentID]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.payments[p.ProcessorIntentID] = p
	return nil
}

func (f *fakePaymentRepo) GetPaymentsByUserID(ctx context.Context, userID uint) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePaymentRepo) GetOrCreateWebhookEvent(ctx context.Context, eventID, eventType string, payload []byte) (*model.WebhookEvent, bool, error) {
	if existing, ok := f.webhookEvents[eventID]; ok {
		return existing, false, nil
	}
	event := &model.WebhookEvent{EventID: eventID, EventType: eventType, Payload: payload}
	f.webhookEvents[eventID] = event
	return event, true, nil
}

func (f *fakePaymentRepo) MarkWebhookEventProcessed(ctx context.Context, eventID string) error {
	if event, ok := f.webhookEvents[eventID]; ok {
		event.Processed = true
	}
	return nil
}

type fakeOrderTxRepo struct {
	orders       map[uint]*model.Order
	pointsAwards int
}

func newFakeOrderTxRepo(orders ...*model.Order) *fakeOrderTxRepo {
	f := &fakeOrderTxRepo{orders: map[uint]*model.Order{}}
	for _, o := range orders {
		f.orders[o.OrderID] = o
	}
	return f
}

func (f *fakeOrderTxRepo) GetOrderByIDForUser(ctx context.Context, orderID, userID uint) (*model.Order, error) {
	order, ok := f.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderTxRepo) MarkOrderPaid(ctx context.Context, orderID uint, intentID, method string) (*repodb.TransitionResult, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	previous := order.Status
	if previous.AtLeastPaid() {
		return &repodb.TransitionResult{Previous: previous, Current: previous, Order: order}, nil
	}
	if !previous.CanTransitionTo(model.OrderStatusPaid) {
		return nil, fmt.Errorf("invalid order status transition: %s -> %s", previous, model.OrderStatusPaid)
	}
	order.Status = model.OrderStatusPaid
	order.PaymentIntentID = intentID
	order.PaymentMethod = method
	order.PaymentStatus = "succeeded"
	f.pointsAwards++
	return &repodb.TransitionResult{Previous: previous, Current: model.OrderStatusPaid, Order: order}, nil
}

func (f *fakeOrderTxRepo) MarkOrderCancelled(ctx context.Context, orderID uint, paymentStatus string) (*repodb.TransitionResult, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	previous := order.Status
	if previous.AtLeastPaid() || previous.IsTerminal() {
		return &repodb.TransitionResult{Previous: previous, Current: previous, Order: order}, nil
	}
	order.Status = model.OrderStatusCancelled
	order.PaymentStatus = paymentStatus
	return &repodb.TransitionResult{Previous: previous, Current: model.OrderStatusCancelled, Order: order}, nil
}

type fakeProcessor struct {
	createCalls   int
	createParams  []payment.CreateIntentParams
	retrieveCalls int
	intent        *payment.Intent
	err           error
}

func (f *fakeProcessor) CreateIntent(ctx context.Context, params payment.CreateIntentParams) (*payment.Intent, error) {
	f.createCalls++
	f.createParams = append(f.createParams, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

func (f *fakeProcessor) RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	f.retrieveCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

type capturePublisher struct {
	events []events.OrderEvent
}

func (p *capturePublisher) PublishOrderStatusChanged(ctx context.Context, event events.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

// ---- helpers ----

func awaitingPaymentOrder() *model.Order {
	return &model.Order{
		OrderID:       77,
		OrderNumber:   "ORD-AB12CD34",
		UserID:        5,
		Status:        model.OrderStatusAwaitingPayment,
		Subtotal:      decimal.RequireFromString("199.98"),
		TaxAmount:     decimal.RequireFromString("19.998"),
		Total:         decimal.RequireFromString("229.978"),
		PaymentStatus: "pending",
	}
}

func signedPayload(t *testing.T, eventID, eventType, intentID string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"data":{"object":{"id":%q,"status":"succeeded","latest_charge":"ch_1","payment_method":"card"}}}`,
		eventID, eventType, intentID))
	return payload, payment.SignPayload(payload, testWebhookSecret, time.Now())
}

func newPaymentService(repo *fakePaymentRepo, orders *fakeOrderTxRepo, proc *fakeProcessor, pub *capturePublisher) IPaymentService {
	return NewPaymentService(repo, orders, proc, pub, testWebhookSecret, "usd", nil)
}

// ---- create intent ----

func TestCreateIntent_NewIntent(t *testing.T) {
	order := awaitingPaymentOrder()
	repo := newFakePaymentRepo()
	proc := &fakeProcessor{intent: &payment.Intent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Status:       "requires_payment_method",
	}}
	svc := newPaymentService(repo, newFakeOrderTxRepo(order), proc, &capturePublisher{})

	intent, err := svc.CreateIntent(context.Background(), order.UserID, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ProcessorIntentID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.True(t, intent.Amount.Equal(order.Total))
	// 冪等鍵由訂單跟嘗試次數決定
	assert.Equal(t, "order-77-attempt-1", intent.IdempotencyKey)
	assert.Equal(t, 1, proc.createCalls)
	assert.Equal(t, 1, repo.createCalls)
}

func TestCreateIntent_RetryAfterProcessorErrorReusesKey(t *testing.T) {
	order := awaitingPaymentOrder()
	repo := newFakePaymentRepo()
	proc := &fakeProcessor{err: errors.New("connection refused")}
	svc := newPaymentService(repo, newFakeOrderTxRepo(order), proc, &capturePublisher{})

	_, err := svc.CreateIntent(context.Background(), order.UserID, order.OrderID)
	require.Error(t, err)

	// 金流商呼叫失敗不落 intent, 重試要送同一把冪等鍵
	proc.err = nil
	proc.intent = &payment.Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_payment_method"}
	intent, err := svc.CreateIntent(context.Background(), order.UserID, order.OrderID)
	require.NoError(t, err)

	require.Len(t, proc.createParams, 2)
	assert.Equal(t, proc.createParams[0].IdempotencyKey, proc.createParams[1].IdempotencyKey)
	assert.Equal(t, "order-77-attempt-1", intent.IdempotencyKey)
}

func TestCreateIntent_ReusesUnresolvedIntent(t *testing.T) {
	order := awaitingPaymentOrder()
	repo := newFakePaymentRepo()
	repo.intents["pi_old"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_old",
		ClientSecret:      "pi_old_secret",
		OrderID:           order.OrderID,
		Status:            model.IntentStatusRequiresPaymentMethod,
	}
	proc := &fakeProcessor{}
	svc := newPaymentService(repo, newFakeOrderTxRepo(order), proc, &capturePublisher{})

	intent, err := svc.CreateIntent(context.Background(), order.UserID, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "pi_old", intent.ProcessorIntentID)
	assert.Equal(t, "pi_old_secret", intent.ClientSecret)
	// 沒有打到金流商
	assert.Equal(t, 0, proc.createCalls)
}

func TestCreateIntent_OrderNotAwaitingPayment(t *testing.T) {
	order := awaitingPaymentOrder()
	order.Status = model.OrderStatusPaid
	svc := newPaymentService(newFakePaymentRepo(), newFakeOrderTxRepo(order), &fakeProcessor{}, &capturePublisher{})

	_, err := svc.CreateIntent(context.Background(), order.UserID, order.OrderID)
	assert.Equal(t, apperr.ConflictCode, apperr.CodeOf(err))
}

func TestCreateIntent_OrderOfAnotherUser(t *testing.T) {
	order := awaitingPaymentOrder()
	svc := newPaymentService(newFakePaymentRepo(), newFakeOrderTxRepo(order), &fakeProcessor{}, &capturePublisher{})

	_, err := svc.CreateIntent(context.Background(), order.UserID+1, order.OrderID)
	assert.Equal(t, apperr.NotFoundCode, apperr.CodeOf(err))
}

func TestCreateIntent_ProcessorDown(t *testing.T) {
	order := awaitingPaymentOrder()
	proc := &fakeProcessor{err: errors.New("connection refused")}
	svc := newPaymentService(newFakePaymentRepo(), newFakeOrderTxRepo(order), proc, &capturePublisher{})

	_, err := svc.CreateIntent(context.Background(), order.UserID, order.OrderID)
	assert.Equal(t, apperr.ExternalErrorCode, apperr.CodeOf(err))
}

// ---- sync confirm ----

func TestConfirmIntent_Succeeded(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Order:             order,
		Amount:            order.Total,
		Currency:          "usd",
		Status:            model.IntentStatusProcessing,
	}
	proc := &fakeProcessor{intent: &payment.Intent{
		ID:             "pi_123",
		Status:         "succeeded",
		LatestChargeID: "ch_1",
		PaymentMethod:  "card",
	}}
	pub := &capturePublisher{}
	svc := newPaymentService(repo, orders, proc, pub)

	result, err := svc.ConfirmIntent(context.Background(), order.UserID, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, model.IntentStatusSucceeded, result.IntentStatus)
	assert.Equal(t, model.OrderStatusPaid, result.OrderStatus)

	require.Contains(t, repo.payments, "pi_123")
	assert.Equal(t, "ch_1", repo.payments["pi_123"].ProcessorChargeID)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.Equal(t, 1, orders.pointsAwards)

	require.Len(t, pub.events, 1)
	assert.Equal(t, model.OrderStatusAwaitingPayment, pub.events[0].Previous)
	assert.Equal(t, model.OrderStatusPaid, pub.events[0].Current)
}

func TestConfirmIntent_NotSucceededYet(t *testing.T) {
	order := awaitingPaymentOrder()
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Order:             order,
		Status:            model.IntentStatusRequiresAction,
	}
	proc := &fakeProcessor{intent: &payment.Intent{ID: "pi_123", Status: "requires_action"}}
	svc := newPaymentService(repo, newFakeOrderTxRepo(order), proc, &capturePublisher{})

	result, err := svc.ConfirmIntent(context.Background(), order.UserID, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, model.IntentStatusRequiresAction, result.IntentStatus)
	assert.Equal(t, model.OrderStatusAwaitingPayment, result.OrderStatus)
	assert.Empty(t, repo.payments)
	// 每次觀察到的狀態都要落地
	assert.Equal(t, model.IntentStatusRequiresAction, repo.intents["pi_123"].Status)
}

func TestConfirmIntent_RepeatedConfirmIsIdempotent(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Order:             order,
		Amount:            order.Total,
		Status:            model.IntentStatusProcessing,
	}
	proc := &fakeProcessor{intent: &payment.Intent{ID: "pi_123", Status: "succeeded", PaymentMethod: "card"}}
	pub := &capturePublisher{}
	svc := newPaymentService(repo, orders, proc, pub)

	_, err := svc.ConfirmIntent(context.Background(), order.UserID, "pi_123")
	require.NoError(t, err)
	_, err = svc.ConfirmIntent(context.Background(), order.UserID, "pi_123")
	require.NoError(t, err)

	assert.Len(t, repo.payments, 1)
	assert.Equal(t, 1, orders.pointsAwards)
	assert.Len(t, pub.events, 1)
}

// ---- webhook ----

func TestHandleWebhook_SucceededEvent(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Amount:            order.Total,
		Status:            model.IntentStatusProcessing,
	}
	svc := newPaymentService(repo, orders, &fakeProcessor{}, &capturePublisher{})

	payload, sig := signedPayload(t, "evt_1", payment.EventTypeIntentSucceeded, "pi_123")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.True(t, result.Processed)

	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.Contains(t, repo.payments, "pi_123")
	assert.True(t, repo.webhookEvents["evt_1"].Processed)
	assert.Equal(t, 1, orders.pointsAwards)
}

func TestHandleWebhook_DuplicateEventIsNoop(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Amount:            order.Total,
		Status:            model.IntentStatusProcessing,
	}
	pub := &capturePublisher{}
	svc := newPaymentService(repo, orders, &fakeProcessor{}, pub)

	payload, sig := signedPayload(t, "evt_1", payment.EventTypeIntentSucceeded, "pi_123")
	first, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	second, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)

	assert.True(t, first.Processed)
	assert.Equal(t, WebhookStatusSuccess, first.Status)
	assert.False(t, second.Processed)
	assert.Equal(t, WebhookStatusAlreadyProcessed, second.Status)
	assert.Equal(t, 1, orders.pointsAwards)
	assert.Len(t, pub.events, 1)
}

func TestHandleWebhook_InvalidSignatureTouchesNothing(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	svc := newPaymentService(repo, orders, &fakeProcessor{}, &capturePublisher{})

	payload, _ := signedPayload(t, "evt_1", payment.EventTypeIntentSucceeded, "pi_123")
	badSig := payment.SignPayload(payload, "whsec_wrong", time.Now())

	_, err := svc.HandleWebhook(context.Background(), payload, badSig)
	assert.Equal(t, apperr.BadRequestCode, apperr.CodeOf(err))
	assert.Empty(t, repo.webhookEvents)
	assert.Equal(t, model.OrderStatusAwaitingPayment, order.Status)
}

func TestHandleWebhook_FailedEventCancelsOrder(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Status:            model.IntentStatusProcessing,
	}
	pub := &capturePublisher{}
	svc := newPaymentService(repo, orders, &fakeProcessor{}, pub)

	payload, sig := signedPayload(t, "evt_2", payment.EventTypeIntentFailed, "pi_123")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.True(t, result.Processed)

	// 付款失敗訂單取消, intent 自己回到可重試狀態
	assert.Equal(t, model.IntentStatusRequiresPaymentMethod, repo.intents["pi_123"].Status)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	assert.Equal(t, "failed", order.PaymentStatus)
	assert.Empty(t, repo.payments)
	require.Len(t, pub.events, 1)
	assert.Equal(t, model.OrderStatusCancelled, pub.events[0].Current)
}

func TestHandleWebhook_StaleFailedEventAfterPaid(t *testing.T) {
	order := awaitingPaymentOrder()
	order.Status = model.OrderStatusPaid
	order.PaymentStatus = "succeeded"
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Status:            model.IntentStatusSucceeded,
	}
	pub := &capturePublisher{}
	svc := newPaymentService(repo, orders, &fakeProcessor{}, pub)

	payload, sig := signedPayload(t, "evt_2b", payment.EventTypeIntentFailed, "pi_123")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.True(t, result.Processed)

	// 遲到的失敗通知不能動到已付款訂單
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.Equal(t, "succeeded", order.PaymentStatus)
	assert.Empty(t, pub.events)
}

func TestHandleWebhook_CanceledEvent(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Status:            model.IntentStatusProcessing,
	}
	pub := &capturePublisher{}
	svc := newPaymentService(repo, orders, &fakeProcessor{}, pub)

	payload, sig := signedPayload(t, "evt_3", payment.EventTypeIntentCanceled, "pi_123")
	_, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)

	assert.Equal(t, model.IntentStatusCanceled, repo.intents["pi_123"].Status)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
	require.Len(t, pub.events, 1)
	assert.Equal(t, model.OrderStatusCancelled, pub.events[0].Current)
}

func TestHandleWebhook_StaleFailureAfterPaid(t *testing.T) {
	order := awaitingPaymentOrder()
	order.Status = model.OrderStatusPaid
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Status:            model.IntentStatusSucceeded,
	}
	svc := newPaymentService(repo, orders, &fakeProcessor{}, &capturePublisher{})

	payload, sig := signedPayload(t, "evt_4", payment.EventTypeIntentCanceled, "pi_123")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.True(t, result.Processed)
	// 過期的取消通知不能動到已付款訂單
	assert.Equal(t, model.OrderStatusPaid, order.Status)
}

func TestHandleWebhook_UnknownIntentIsIgnored(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newPaymentService(repo, newFakeOrderTxRepo(), &fakeProcessor{}, &capturePublisher{})

	payload, sig := signedPayload(t, "evt_5", payment.EventTypeIntentSucceeded, "pi_unknown")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Empty(t, repo.payments)
}

// ---- 兩條路同時到 ----

func TestSyncConfirmThenWebhook_PaymentAppliedOnce(t *testing.T) {
	order := awaitingPaymentOrder()
	orders := newFakeOrderTxRepo(order)
	repo := newFakePaymentRepo()
	repo.intents["pi_123"] = &model.PaymentIntent{
		ProcessorIntentID: "pi_123",
		OrderID:           order.OrderID,
		Order:             order,
		Amount:            order.Total,
		Status:            model.IntentStatusProcessing,
	}
	proc := &fakeProcessor{intent: &payment.Intent{ID: "pi_123", Status: "succeeded", PaymentMethod: "card"}}
	pub := &capturePublisher{}
	svc := newPaymentService(repo, orders, proc, pub)

	_, err := svc.ConfirmIntent(context.Background(), order.UserID, "pi_123")
	require.NoError(t, err)

	payload, sig := signedPayload(t, "evt_6", payment.EventTypeIntentSucceeded, "pi_123")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.True(t, result.Processed)

	assert.Len(t, repo.payments, 1)
	assert.Equal(t, 1, orders.pointsAwards)
	assert.Len(t, pub.events, 1)
}

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"229.978", 22998},
		{"199.98", 19998},
		{"0", 0},
		{"10.005", 1001}, // half cent rounds away from zero
		{"10.014", 1001},
	}
	for _, c := range cases {
		got := toMinorUnits(decimal.RequireFromString(c.amount))
		assert.Equal(t, c.want, got, "amount %s", c.amount)
	}
}
