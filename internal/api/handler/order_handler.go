package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api"
	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
	}
}

// @Summary list orders of current user
// @Tags order
// @Produce json
// @Success 200 {object} api.Response{data=[]model.Order} "success"
// @Router /orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), mustUserID(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, orders, nil)
}

// @Summary get order detail
// @Tags order
// @Produce json
// @Success 200 {object} api.Response{data=model.Order} "success"
// @Router /orders/{orderID} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUintParam(r, "orderID")
	if !ok {
		api.BadRequestJSON(w, "invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), mustUserID(r), orderID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// @Summary cancel an unpaid order
// @Tags order
// @Produce json
// @Success 200 {object} api.Response{data=model.Order} "success"
// @Failure 400 {object} api.ResponseError "order already paid"
// @Router /orders/{orderID}/cancel [post]
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUintParam(r, "orderID")
	if !ok {
		api.BadRequestJSON(w, "invalid order id")
		return
	}

	order, err := h.orderService.CancelOrder(r.Context(), mustUserID(r), orderID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// @Summary advance order status (admin)
// @Tags order
// @Accept json
// @Produce json
// @Param status body dto.AdvanceOrderStatusDTO true "next status"
// @Success 200 {object} api.Response{data=model.Order} "success"
// @Failure 400 {object} api.ResponseError "illegal transition"
// @Router /admin/orders/{orderID}/status [post]
func (h *OrderHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUintParam(r, "orderID")
	if !ok {
		api.BadRequestJSON(w, "invalid order id")
		return
	}

	var body dto.AdvanceOrderStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}

	order, err := h.orderService.AdvanceStatus(r.Context(), orderID, model.OrderStatus(body.Status))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// @Summary loyalty points balance and history
// @Tags order
// @Produce json
// @Success 200 {object} api.Response{data=service.PointsSummary} "success"
// @Router /points [get]
func (h *OrderHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orderService.GetPoints(r.Context(), mustUserID(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, summary, nil)
}
