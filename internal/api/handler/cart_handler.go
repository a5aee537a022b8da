package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api"
	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) cartResponse(cart *model.Cart) dto.CartResponse {
	return dto.CartResponse{
		Cart:   cart,
		Totals: h.cartService.Totals(cart),
	}
}

// @Summary get current cart
// @Tags cart
// @Produce json
// @Success 200 {object} api.Response{data=dto.CartResponse} "success"
// @Router /cart [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, _, err := h.cartService.EnsureCart(r.Context(), identityFromRequest(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, h.cartResponse(cart), nil)
}

// @Summary add item to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param item body dto.AddCartItemDTO true "variant and quantity"
// @Success 200 {object} api.Response{data=dto.CartResponse} "success"
// @Failure 400 {object} api.ResponseError "not enough stock"
// @Router /cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body dto.AddCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), identityFromRequest(r), body.VariantID, body.Quantity)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, h.cartResponse(cart), nil)
}

// @Summary update cart item quantity, 0 removes the item
// @Tags cart
// @Accept json
// @Produce json
// @Param quantity body dto.UpdateCartItemDTO true "new quantity"
// @Success 200 {object} api.Response{data=dto.CartResponse} "success"
// @Router /cart/items/{itemID} [put]
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseUintParam(r, "itemID")
	if !ok {
		api.BadRequestJSON(w, "invalid item id")
		return
	}

	var body dto.UpdateCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}

	cart, err := h.cartService.UpdateItemQuantity(r.Context(), identityFromRequest(r), itemID, body.Quantity)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, h.cartResponse(cart), nil)
}

// @Summary remove item from cart
// @Tags cart
// @Produce json
// @Success 200 {object} api.Response{data=dto.CartResponse} "success"
// @Router /cart/items/{itemID} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseUintParam(r, "itemID")
	if !ok {
		api.BadRequestJSON(w, "invalid item id")
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), identityFromRequest(r), itemID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, h.cartResponse(cart), nil)
}

// @Summary clear cart
// @Tags cart
// @Produce json
// @Success 200 {object} api.Response{data=string} "success"
// @Router /cart [delete]
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.ClearCart(r.Context(), identityFromRequest(r)); err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, nil, nil)
}
