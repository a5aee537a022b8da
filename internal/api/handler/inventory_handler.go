package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api"
	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
)

type InventoryHandler struct {
	inventoryService service.IInventoryService
}

func NewInventoryHandler(inventoryService service.IInventoryService) *InventoryHandler {
	if inventoryService == nil {
		panic("inventoryService cannot be nil")
	}
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// @Summary apply a stock adjustment
// @Tags inventory
// @Accept json
// @Produce json
// @Param adjustment body dto.StockAdjustmentDTO true "signed quantity, positive restocks"
// @Success 200 {object} api.Response{data=model.ProductVariant} "success"
// @Failure 400 {object} api.ResponseError "stock would go negative"
// @Router /admin/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var body dto.StockAdjustmentDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequestJSON(w, "invalid request body")
		return
	}

	variant, err := h.inventoryService.Adjust(r.Context(), &model.StockAdjustment{
		VariantID: body.VariantID,
		Type:      model.AdjustmentType(body.Type),
		Quantity:  body.Quantity,
		Reason:    body.Reason,
		Reference: body.Reference,
		UserID:    mustUserID(r),
	})
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, variant, nil)
}

// @Summary list stock adjustments
// @Tags inventory
// @Produce json
// @Success 200 {object} api.Response{data=[]model.StockAdjustment} "success"
// @Router /admin/inventory/adjustments [get]
func (h *InventoryHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.inventoryService.ListAdjustments(r.Context())
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, adjustments, nil)
}

// @Summary stock movement history of a variant
// @Tags inventory
// @Produce json
// @Success 200 {object} api.Response{data=[]model.StockMovement} "success"
// @Router /admin/inventory/variants/{variantID}/movements [get]
func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	variantID, ok := parseUintParam(r, "variantID")
	if !ok {
		api.BadRequestJSON(w, "invalid variant id")
		return
	}

	movements, err := h.inventoryService.ListMovements(r.Context(), variantID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, movements, nil)
}

// @Summary stock levels of all tracked variants
// @Tags inventory
// @Produce json
// @Success 200 {object} api.Response{data=[]service.StockLevel} "success"
// @Router /admin/inventory/stock [get]
func (h *InventoryHandler) StockLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.inventoryService.StockLevels(r.Context())
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, levels, nil)
}

// @Summary list low stock alerts by status
// @Tags inventory
// @Produce json
// @Param status query string false "active (default), acknowledged or resolved"
// @Success 200 {object} api.Response{data=[]model.LowStockAlert} "success"
// @Router /admin/inventory/alerts [get]
func (h *InventoryHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	status := model.AlertStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.AlertStatusActive
	}

	alerts, err := h.inventoryService.ListAlerts(r.Context(), status)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, alerts, nil)
}

// @Summary acknowledge an active alert
// @Tags inventory
// @Produce json
// @Success 200 {object} api.Response{data=model.LowStockAlert} "success"
// @Failure 400 {object} api.ResponseError "alert is not active"
// @Router /admin/inventory/alerts/{alertID}/acknowledge [post]
func (h *InventoryHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID, ok := parseUintParam(r, "alertID")
	if !ok {
		api.BadRequestJSON(w, "invalid alert id")
		return
	}

	alert, err := h.inventoryService.AcknowledgeAlert(r.Context(), alertID, mustUserID(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, alert, nil)
}

// @Summary resolve an alert
// @Tags inventory
// @Produce json
// @Success 200 {object} api.Response{data=model.LowStockAlert} "success"
// @Router /admin/inventory/alerts/{alertID}/resolve [post]
func (h *InventoryHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	alertID, ok := parseUintParam(r, "alertID")
	if !ok {
		api.BadRequestJSON(w, "invalid alert id")
		return
	}

	alert, err := h.inventoryService.ResolveAlert(r.Context(), alertID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, alert, nil)
}
