package dto

import (
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
)

type AddCartItemDTO struct {
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Cart   *model.Cart        `json:"cart"`
	Totals service.CartTotals `json:"totals"`
}
