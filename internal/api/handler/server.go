package handler

type Server struct {
	CartHandler      *CartHandler
	CheckoutHandler  *CheckoutHandler
	PaymentHandler   *PaymentHandler
	OrderHandler     *OrderHandler
	InventoryHandler *InventoryHandler
}

func NewServer(
	cartHandler *CartHandler,
	checkoutHandler *CheckoutHandler,
	paymentHandler *PaymentHandler,
	orderHandler *OrderHandler,
	inventoryHandler *InventoryHandler,
) *Server {
	return &Server{
		CartHandler:      cartHandler,
		CheckoutHandler:  checkoutHandler,
		PaymentHandler:   paymentHandler,
		OrderHandler:     orderHandler,
		InventoryHandler: inventoryHandler,
	}
}
