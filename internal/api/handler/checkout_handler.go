package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api"
	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
}

func NewCheckoutHandler(checkoutService service.ICheckoutService) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// @Summary get or create checkout draft for current cart
// @Tags checkout
// @Produce json
// @Success 200 {object} api.Response{data=model.OrderDraft} "success"
// @Router /orders/draft/create [post]
func (h *CheckoutHandler) EnsureDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.checkoutService.EnsureDraft(r.Context(), mustUserID(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, draft, map[string]bool{"is_complete": draft.IsComplete()})
}

// @Summary patch checkout draft, omitted fields keep their value
// @Tags checkout
// @Accept json
// @Produce json
// @Param patch body service.DraftPatch true "partial draft update"
// @Success 200 {object} api.Response{data=model.OrderDraft} "success"
// @Router /orders/draft/{draftID} [patch]
func (h *CheckoutHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseUintParam(r, "draftID")
	if !ok {
		api.BadRequestJSON(w, "invalid draft id")
		return
	}

	var patch service.DraftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}

	draft, err := h.checkoutService.UpdateDraft(r.Context(), mustUserID(r), draftID, patch)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, draft, map[string]bool{"is_complete": draft.IsComplete()})
}

// @Summary finalize draft into an order awaiting payment
// @Tags checkout
// @Accept json
// @Produce json
// @Param req body dto.FinalizeDraftDTO true "draft to finalize"
// @Success 201 {object} api.Response{data=model.Order} "created"
// @Failure 400 {object} api.ResponseError "insufficient stock or incomplete draft"
// @Router /orders/finalize [post]
func (h *CheckoutHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req dto.FinalizeDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}
	if req.DraftID == 0 {
		api.BadRequestJSON(w, "invalid draft id")
		return
	}

	order, err := h.checkoutService.Finalize(r.Context(), mustUserID(r), req.DraftID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.CreatedJSON(w, order)
}

// @Summary list shipping options
// @Tags checkout
// @Produce json
// @Success 200 {object} api.Response{data=[]service.ShippingOption} "success"
// @Router /orders/shipping-options [get]
func (h *CheckoutHandler) ShippingOptions(w http.ResponseWriter, r *http.Request) {
	api.SuccessJSON(w, h.checkoutService.ShippingOptions(), nil)
}
