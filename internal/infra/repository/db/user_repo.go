package db

import (
	"context"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
)

type UserRepo struct {
	db *DbDao
}

func NewUserRepo(db *DbDao) *UserRepo {
	return &UserRepo{db: db}
}

func (s *UserRepo) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserRepo) ListPointsTransactions(ctx context.Context, userID uint) ([]model.PointsTransaction, error) {
	var txs []model.PointsTransaction
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}
