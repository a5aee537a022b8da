package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api"
	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
)

// SignatureHeader 金流商 webhook 簽章 header
const SignatureHeader = "Processor-Signature"

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	paymentService service.IPaymentService
}

func NewPaymentHandler(paymentService service.IPaymentService) *PaymentHandler {
	if paymentService == nil {
		panic("paymentService cannot be nil")
	}
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func intentResponse(intent *model.PaymentIntent) dto.IntentResponse {
	return dto.IntentResponse{
		ProcessorIntentID: intent.ProcessorIntentID,
		ClientSecret:      intent.ClientSecret,
		Status:            intent.Status.String(),
		Amount:            intent.Amount,
		Currency:          intent.Currency,
	}
}

// @Summary create payment intent for an awaiting_payment order
// @Tags payment
// @Accept json
// @Produce json
// @Param order body dto.CreateIntentDTO true "order id"
// @Success 200 {object} api.Response{data=dto.IntentResponse} "success"
// @Failure 400 {object} api.ResponseError "order not awaiting payment"
// @Router /payments/intent/create [post]
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateIntentDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}

	intent, err := h.paymentService.CreateIntent(r.Context(), mustUserID(r), body.OrderID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, intentResponse(intent), nil)
}

// @Summary confirm payment result against the processor
// @Tags payment
// @Accept json
// @Produce json
// @Param intent body dto.ConfirmIntentDTO true "processor intent id"
// @Success 200 {object} api.Response{data=service.ConfirmResult} "success"
// @Router /payments/intent/confirm [post]
func (h *PaymentHandler) ConfirmIntent(w http.ResponseWriter, r *http.Request) {
	var body dto.ConfirmIntentDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}

	result, err := h.paymentService.ConfirmIntent(r.Context(), mustUserID(r), body.ProcessorIntentID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, result, nil)
}

// @Summary processor webhook endpoint
// @Tags payment
// @Accept json
// @Produce json
// @Success 200 {object} api.Response{data=service.WebhookResult} "success"
// @Failure 400 {object} api.ResponseError "signature verification failed"
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	// 驗簽要用原始 bytes, 不能先 decode
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		api.BadRequestJSON(w, "cannot read webhook payload")
		return
	}

	result, err := h.paymentService.HandleWebhook(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, result, nil)
}

// @Summary list payments of current user
// @Tags payment
// @Produce json
// @Success 200 {object} api.Response{data=[]model.Payment} "success"
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.paymentService.ListPayments(r.Context(), mustUserID(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, payments, nil)
}
