package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/apperr"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/events"
	repodb "github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IOrderRepo interface {
	GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error)
	GetOrderByIDForUser(ctx context.Context, orderID, userID uint) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID uint) ([]model.Order, error)
	TransitionOrder(ctx context.Context, orderID uint, next model.OrderStatus) (*repodb.TransitionResult, error)
	MarkOrderPaid(ctx context.Context, orderID uint, intentID, method string) (*repodb.TransitionResult, error)
	MarkOrderCancelled(ctx context.Context, orderID uint, paymentStatus string) (*repodb.TransitionResult, error)
}

type IPointsRepo interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	ListPointsTransactions(ctx context.Context, userID uint) ([]model.PointsTransaction, error)
}

// PointsSummary 目前餘額加上累積紀錄
type PointsSummary struct {
	Balance      int                       `json:"balance"`
	Transactions []model.PointsTransaction `json:"transactions"`
}

type IOrderService interface {
	ListOrders(ctx context.Context, userID uint) ([]model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
	AdvanceStatus(ctx context.Context, orderID uint, next model.OrderStatus) (*model.Order, error)
	GetPoints(ctx context.Context, userID uint) (*PointsSummary, error)
}

type OrderService struct {
	orderRepo  IOrderRepo
	pointsRepo IPointsRepo
	publisher  events.Publisher
	logger     *zerolog.Logger
}

func NewOrderService(orderRepo IOrderRepo, pointsRepo IPointsRepo, publisher events.Publisher, logger *zerolog.Logger) IOrderService {
	if orderRepo == nil || pointsRepo == nil {
		panic("orderRepo and pointsRepo cannot be nil")
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orderRepo:  orderRepo,
		pointsRepo: pointsRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	return s.orderRepo.GetOrdersByUserID(ctx, userID)
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, err
	}
	return order, nil
}

// CancelOrder 只有還沒付款的訂單可以由使用者取消
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.AtLeastPaid() || order.Status.IsTerminal() {
		return nil, apperr.Conflict(
			fmt.Sprintf("order %s is %s and cannot be cancelled", order.OrderNumber, order.Status))
	}

	tr, err := s.orderRepo.MarkOrderCancelled(ctx, orderID, "cancelled")
	if err != nil {
		return nil, err
	}
	if tr.Previous != tr.Current {
		s.publish(ctx, tr)
	}
	return tr.Order, nil
}

// AdvanceStatus 後台操作, 不合法的轉移回 conflict
// paid / cancelled 走各自的落地流程, 付款附帶的點數跟時間戳不能漏
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uint, next model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, err
	}

	var tr *repodb.TransitionResult
	switch next {
	case model.OrderStatusPaid:
		if !order.Status.CanTransitionTo(next) {
			return nil, apperr.Conflict(
				fmt.Sprintf("order %s is %s and cannot move to %s", order.OrderNumber, order.Status, next))
		}
		tr, err = s.orderRepo.MarkOrderPaid(ctx, orderID, "", "manual")
	case model.OrderStatusCancelled:
		if !order.Status.CanTransitionTo(next) {
			return nil, apperr.Conflict(
				fmt.Sprintf("order %s is %s and cannot move to %s", order.OrderNumber, order.Status, next))
		}
		tr, err = s.orderRepo.MarkOrderCancelled(ctx, orderID, "cancelled")
	default:
		tr, err = s.orderRepo.TransitionOrder(ctx, orderID, next)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Wrap(apperr.ConflictCode, "order status transition rejected", err)
	}

	if tr.Previous != tr.Current {
		s.publish(ctx, tr)
	}
	return tr.Order, nil
}

func (s *OrderService) GetPoints(ctx context.Context, userID uint) (*PointsSummary, error) {
	user, err := s.pointsRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	txs, err := s.pointsRepo.ListPointsTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PointsSummary{Balance: user.Points, Transactions: txs}, nil
}

func (s *OrderService) publish(ctx context.Context, tr *repodb.TransitionResult) {
	event := events.OrderEvent{
		OrderID:     tr.Order.OrderID,
		OrderNumber: tr.Order.OrderNumber,
		UserID:      tr.Order.UserID,
		Previous:    tr.Previous,
		Current:     tr.Current,
		Total:       tr.Order.Total.String(),
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).
			Str("order_number", tr.Order.OrderNumber).
			Msg("publish order event failed")
	}
}
