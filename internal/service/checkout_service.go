package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/events"
	repodb "github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IDraftRepo interface {
	EnsureDraft(ctx context.Context, userID, cartID uint, email string) (*model.OrderDraft, bool, error)
	GetDraftByID(ctx context.Context, draftID, userID uint) (*model.OrderDraft, error)
	SaveDraft(ctx context.Context, draft *model.OrderDraft) error
	FinalizeDraft(ctx context.Context, draft *model.OrderDraft, cart *model.Cart) (*model.Order, error)
}

type IUserRepo interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

// AddressPatch 部分更新, nil 欄位表示不動
type AddressPatch struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Company    *string `json:"company,omitempty"`
	Address1   *string `json:"address_1,omitempty"`
	Address2   *string `json:"address_2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

type DraftPatch struct {
	Email    *string       `json:"email,omitempty"`
	Billing  *AddressPatch `json:"billing,omitempty"`
	Shipping *AddressPatch `json:"shipping,omitempty"`
}

// ShippingOption 目前只是給前端顯示的資料, 運費一律採固定費率設定值
type ShippingOption struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	EstimatedDays string          `json:"estimated_days"`
}

type ICheckoutService interface {
	EnsureDraft(ctx context.Context, userID uint) (*model.OrderDraft, error)
	UpdateDraft(ctx context.Context, userID, draftID uint, patch DraftPatch) (*model.OrderDraft, error)
	Finalize(ctx context.Context, userID, draftID uint) (*model.Order, error)
	ShippingOptions() []ShippingOption
}

type CheckoutService struct {
	draftRepo    IDraftRepo
	cartRepo     ICartRepo
	userRepo     IUserRepo
	cache        ICartCache
	publisher    events.Publisher
	taxRate      decimal.Decimal
	shippingFlat decimal.Decimal
	logger       *zerolog.Logger
}

func NewCheckoutService(
	draftRepo IDraftRepo,
	cartRepo ICartRepo,
	userRepo IUserRepo,
	cache ICartCache,
	publisher events.Publisher,
	taxRate decimal.Decimal,
	shippingFlat decimal.Decimal,
	logger *zerolog.Logger,
) ICheckoutService {
	if draftRepo == nil || cartRepo == nil || userRepo == nil {
		panic("draftRepo, cartRepo and userRepo cannot be nil")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CheckoutService{
		draftRepo:    draftRepo,
		cartRepo:     cartRepo,
		userRepo:     userRepo,
		cache:        cache,
		publisher:    publisher,
		taxRate:      taxRate,
		shippingFlat: shippingFlat,
		logger:       logger,
	}
}

// EnsureDraft 取得 (user, cart) 的 draft, 沒有就建立, 並重算一次金額
func (s *CheckoutService) EnsureDraft(ctx context.Context, userID uint) (*model.OrderDraft, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}

	cart, _, err := s.cartRepo.EnsureCartForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	draft, _, err := s.draftRepo.EnsureDraft(ctx, userID, cart.CartID, user.UserEmail)
	if err != nil {
		return nil, err
	}

	if err := s.calculateTotals(ctx, draft, cart); err != nil {
		return nil, err
	}
	return draft, nil
}

// UpdateDraft 套用部分更新後重算金額
func (s *CheckoutService) UpdateDraft(ctx context.Context, userID, draftID uint, patch DraftPatch) (*model.OrderDraft, error) {
	draft, err := s.draftRepo.GetDraftByID(ctx, draftID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order draft not found")
		}
		return nil, err
	}

	if patch.Email != nil {
		draft.Email = *patch.Email
	}
	applyAddressPatch(&draft.Billing, patch.Billing)
	applyAddressPatch(&draft.Shipping, patch.Shipping)

	cart, err := s.cartRepo.GetCartByID(ctx, draft.CartID)
	if err != nil {
		return nil, err
	}

	if err := s.calculateTotals(ctx, draft, cart); err != nil {
		return nil, err
	}
	return draft, nil
}

// Finalize draft 轉正式訂單, 整個流程一個交易, 見 OrderRepo.FinalizeDraft
// 庫存以 finalize 當下為準, 不是 draft 建立當下
func (s *CheckoutService) Finalize(ctx context.Context, userID, draftID uint) (*model.Order, error) {
	draft, err := s.draftRepo.GetDraftByID(ctx, draftID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order draft not found")
		}
		return nil, err
	}

	if !draft.IsComplete() {
		return nil, apperr.BadRequest("order draft is incomplete")
	}

	cart, err := s.cartRepo.GetCartByID(ctx, draft.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperr.BadRequest("cart is empty")
	}

	order, err := s.draftRepo.FinalizeDraft(ctx, draft, cart)
	if err != nil {
		var stockErr *repodb.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, apperr.Wrap(apperr.ConflictCode, "some items are out of stock", stockErr)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cart.CartID); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Uint("cart_id", cart.CartID).Msg("cart cache invalidate failed")
		}
	}

	s.publish(ctx, order, model.OrderStatusDraft, model.OrderStatusAwaitingPayment)
	return order, nil
}

func (s *CheckoutService) ShippingOptions() []ShippingOption {
	return []ShippingOption{
		{
			ID:            "standard",
			Name:          "Standard Shipping",
			Price:         s.shippingFlat,
			EstimatedDays: "3-5 business days",
		},
		{
			ID:            "express",
			Name:          "Express Shipping",
			Price:         s.shippingFlat.Mul(decimal.NewFromInt(2)),
			EstimatedDays: "1-2 business days",
		},
	}
}

// calculateTotals 明確重算, 不靠 hook
func (s *CheckoutService) calculateTotals(ctx context.Context, draft *model.OrderDraft, cart *model.Cart) error {
	subtotal := cart.Subtotal()
	tax := subtotal.Mul(s.taxRate)

	draft.Subtotal = subtotal
	draft.TaxAmount = tax
	draft.ShippingAmount = s.shippingFlat
	draft.Total = subtotal.Add(tax).Add(s.shippingFlat)

	return s.draftRepo.SaveDraft(ctx, draft)
}

func (s *CheckoutService) publish(ctx context.Context, order *model.Order, previous, current model.OrderStatus) {
	event := events.OrderEvent{
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Previous:    previous,
		Current:     current,
		Total:       order.Total.String(),
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).
			Str("order_number", order.OrderNumber).
			Msg("publish order event failed")
	}
}

func applyAddressPatch(addr *model.Address, patch *AddressPatch) {
	if patch == nil {
		return
	}
	if patch.FirstName != nil {
		addr.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		addr.LastName = *patch.LastName
	}
	if patch.Company != nil {
		addr.Company = *patch.Company
	}
	if patch.Address1 != nil {
		addr.Address1 = *patch.Address1
	}
	if patch.Address2 != nil {
		addr.Address2 = *patch.Address2
	}
	if patch.City != nil {
		addr.City = *patch.City
	}
	if patch.State != nil {
		addr.State = *patch.State
	}
	if patch.PostalCode != nil {
		addr.PostalCode = *patch.PostalCode
	}
	if patch.Country != nil {
		addr.Country = *patch.Country
	}
	if patch.Phone != nil {
		addr.Phone = *patch.Phone
	}
}
