package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api/handler"
	m "github.com/RoyceAzure/lab/ordercenter/internal/api/middleware"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type UserGetter interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

func SetupRouter(server *handler.Server, users UserGetter, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.IdentityMiddleware)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// 購物車, 匿名可用
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.GetCart)
			r.Delete("/", server.CartHandler.ClearCart)
			r.Post("/items", server.CartHandler.AddItem)
			r.Put("/items/{itemID}", server.CartHandler.UpdateItem)
			r.Delete("/items/{itemID}", server.CartHandler.RemoveItem)
		})

		// 結帳, 要登入
		r.Group(func(r chi.Router) {
			r.Use(m.RequireUser)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/draft/create", server.CheckoutHandler.EnsureDraft)
				r.Patch("/draft/{draftID}", server.CheckoutHandler.UpdateDraft)
				r.Post("/finalize", server.CheckoutHandler.Finalize)
				r.Get("/shipping-options", server.CheckoutHandler.ShippingOptions)

				r.Get("/", server.OrderHandler.ListOrders)
				r.Get("/{orderID}", server.OrderHandler.GetOrder)
				r.Post("/{orderID}/cancel", server.OrderHandler.CancelOrder)
			})

			r.Get("/points", server.OrderHandler.GetPoints)

			r.Get("/payments", server.PaymentHandler.ListPayments)
			r.Post("/payments/intent/create", server.PaymentHandler.CreateIntent)
			r.Post("/payments/intent/confirm", server.PaymentHandler.ConfirmIntent)
		})

		// 金流商 server-to-server 回呼, 靠簽章驗證不走登入
		r.Post("/payments/webhook", server.PaymentHandler.Webhook)

		// 後台管理
		r.Group(func(r chi.Router) {
			r.Use(m.RequireAdmin(users))

			r.Post("/admin/orders/{orderID}/status", server.OrderHandler.AdvanceStatus)

			r.Route("/admin/inventory", func(r chi.Router) {
				r.Post("/adjustments", server.InventoryHandler.Adjust)
				r.Get("/adjustments", server.InventoryHandler.ListAdjustments)
				r.Get("/variants/{variantID}/movements", server.InventoryHandler.ListMovements)
				r.Get("/stock", server.InventoryHandler.StockLevels)
				r.Get("/alerts", server.InventoryHandler.ListAlerts)
				r.Post("/alerts/{alertID}/acknowledge", server.InventoryHandler.AcknowledgeAlert)
				r.Post("/alerts/{alertID}/resolve", server.InventoryHandler.ResolveAlert)
			})
		})
	})

	// 在設置完所有路由後打印路由樹
	fmt.Println(chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		fmt.Printf("%s %s\n", method, route)
		return nil
	}))
	return r
}
