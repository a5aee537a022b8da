package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Identity 購物車的擁有者, 登入用戶或匿名 session 擇一
type Identity struct {
	UserID     *uint
	SessionKey string
}

func (id Identity) Valid() bool {
	return id.UserID != nil || id.SessionKey != ""
}

// CartTotals 即時計算, 不落地
type CartTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type ICartRepo interface {
	EnsureCartForUser(ctx context.Context, userID uint) (*model.Cart, bool, error)
	EnsureCartForSession(ctx context.Context, sessionKey string) (*model.Cart, bool, error)
	GetCartByID(ctx context.Context, cartID uint) (*model.Cart, error)
	AddItem(ctx context.Context, cartID, variantID uint, quantity int) error
	GetItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uint) error
	ClearItems(ctx context.Context, cartID uint) error
}

type IVariantRepo interface {
	GetVariantByID(ctx context.Context, variantID uint) (*model.ProductVariant, error)
}

// ICartCache 讀取快取, miss 回傳 (nil, nil)
type ICartCache interface {
	Get(ctx context.Context, cartID uint) (*model.Cart, error)
	Set(ctx context.Context, cart *model.Cart) error
	Invalidate(ctx context.Context, cartID uint) error
}

type ICartService interface {
	EnsureCart(ctx context.Context, identity Identity) (*model.Cart, bool, error)
	GetCart(ctx context.Context, cartID uint) (*model.Cart, error)
	AddItem(ctx context.Context, identity Identity, variantID uint, quantity int) (*model.Cart, error)
	UpdateItemQuantity(ctx context.Context, identity Identity, itemID uint, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, identity Identity, itemID uint) (*model.Cart, error)
	ClearCart(ctx context.Context, identity Identity) error
	Totals(cart *model.Cart) CartTotals
}

type CartService struct {
	cartRepo    ICartRepo
	variantRepo IVariantRepo
	cache       ICartCache
	taxRate     decimal.Decimal
	logger      *zerolog.Logger
}

func NewCartService(cartRepo ICartRepo, variantRepo IVariantRepo, cache ICartCache, taxRate decimal.Decimal, logger *zerolog.Logger) ICartService {
	if cartRepo == nil || variantRepo == nil {
		panic("cartRepo and variantRepo cannot be nil")
	}
	return &CartService{
		cartRepo:    cartRepo,
		variantRepo: variantRepo,
		cache:       cache,
		taxRate:     taxRate,
		logger:      logger,
	}
}

func (s *CartService) EnsureCart(ctx context.Context, identity Identity) (*model.Cart, bool, error) {
	if !identity.Valid() {
		return nil, false, apperr.BadRequest("cart identity required")
	}
	if identity.UserID != nil {
		return s.cartRepo.EnsureCartForUser(ctx, *identity.UserID)
	}
	return s.cartRepo.EnsureCartForSession(ctx, identity.SessionKey)
}

func (s *CartService) GetCart(ctx context.Context, cartID uint) (*model.Cart, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cartID)
		if err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Uint("cart_id", cartID).Msg("cart cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	cart, err := s.cartRepo.GetCartByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cart); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Uint("cart_id", cartID).Msg("cart cache write failed")
		}
	}
	return cart, nil
}

// AddItem 加入品項, 已存在的 (cart, variant) 只加數量
// 這裡的庫存檢查是 UX 性質, 真正的防線在 finalize 的交易裡
func (s *CartService) AddItem(ctx context.Context, identity Identity, variantID uint, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest("quantity must be positive")
	}

	cart, _, err := s.EnsureCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	variant, err := s.variantRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		return nil, apperr.NotFound("variant not found")
	}
	if !variant.IsActive {
		return nil, apperr.BadRequest("cannot add inactive product variant to cart")
	}

	requested := quantity
	for _, item := range cart.Items {
		if item.VariantID == variantID {
			requested += item.Quantity
		}
	}
	if variant.TrackInventory && requested > variant.StockQuantity {
		return nil, apperr.Conflict(fmt.Sprintf("not enough stock, available: %d, requested: %d", variant.StockQuantity, requested))
	}

	if err := s.cartRepo.AddItem(ctx, cart.CartID, variantID, quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, cart.CartID)
}

// UpdateItemQuantity 數量為 0 時等同移除
func (s *CartService) UpdateItemQuantity(ctx context.Context, identity Identity, itemID uint, quantity int) (*model.Cart, error) {
	if quantity < 0 {
		return nil, apperr.BadRequest("quantity cannot be negative")
	}

	cart, _, err := s.EnsureCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetItem(ctx, cart.CartID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart item not found")
		}
		return nil, err
	}

	if quantity == 0 {
		if err := s.cartRepo.RemoveItem(ctx, cart.CartID, itemID); err != nil {
			return nil, err
		}
		return s.reload(ctx, cart.CartID)
	}

	if item.Variant != nil && item.Variant.TrackInventory && quantity > item.Variant.StockQuantity {
		return nil, apperr.Conflict(fmt.Sprintf("not enough stock, available: %d, requested: %d", item.Variant.StockQuantity, quantity))
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.CartID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, cart.CartID)
}

func (s *CartService) RemoveItem(ctx context.Context, identity Identity, itemID uint) (*model.Cart, error) {
	cart, _, err := s.EnsureCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	if _, err := s.cartRepo.GetItem(ctx, cart.CartID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart item not found")
		}
		return nil, err
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.CartID, itemID); err != nil {
		return nil, err
	}
	return s.reload(ctx, cart.CartID)
}

func (s *CartService) ClearCart(ctx context.Context, identity Identity) error {
	cart, _, err := s.EnsureCart(ctx, identity)
	if err != nil {
		return err
	}

	if err := s.cartRepo.ClearItems(ctx, cart.CartID); err != nil {
		return err
	}
	s.invalidate(ctx, cart.CartID)
	return nil
}

func (s *CartService) Totals(cart *model.Cart) CartTotals {
	subtotal := cart.Subtotal()
	tax := subtotal.Mul(s.taxRate)
	return CartTotals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
		ItemCount: cart.TotalItems(),
	}
}

func (s *CartService) reload(ctx context.Context, cartID uint) (*model.Cart, error) {
	s.invalidate(ctx, cartID)
	return s.GetCart(ctx, cartID)
}

func (s *CartService) invalidate(ctx context.Context, cartID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cartID); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Uint("cart_id", cartID).Msg("cart cache invalidate failed")
	}
}
