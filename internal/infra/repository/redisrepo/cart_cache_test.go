package redisrepo

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testRedisAddr = "localhost:6379"
	testPrefix    = "test_ordercenter"
)

type CartCacheTestSuite struct {
	suite.Suite
	cache *CartCache
}

// SetupSuite redis 連不上時整個套件跳過
func (suite *CartCacheTestSuite) SetupSuite() {
	client, err := GetRedisClient(testRedisAddr)
	require.NoError(suite.T(), err)
	if err := client.Ping(context.Background()).Err(); err != nil {
		suite.T().Skipf("redis not reachable: %v", err)
	}
	suite.cache = NewCartCache(client, testPrefix)
}

func (suite *CartCacheTestSuite) testCart(cartID uint) *model.Cart {
	userID := uint(1)
	return &model.Cart{
		CartID: cartID,
		UserID: &userID,
		Items: []model.CartItem{
			{
				CartItemID: 1,
				CartID:     cartID,
				VariantID:  10,
				Quantity:   2,
				Variant: &model.ProductVariant{
					VariantID: 10,
					SKU:       "SKU-RED-M",
					Price:     decimal.RequireFromString("49.99"),
				},
			},
		},
	}
}

func (suite *CartCacheTestSuite) TestSetAndGet() {
	cart := suite.testCart(101)
	require.NoError(suite.T(), suite.cache.Set(context.Background(), cart))

	cached, err := suite.cache.Get(context.Background(), 101)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cached)
	require.Equal(suite.T(), cart.CartID, cached.CartID)
	require.Len(suite.T(), cached.Items, 1)
	require.Equal(suite.T(), uint(10), cached.Items[0].VariantID)
	require.Equal(suite.T(), 2, cached.Items[0].Quantity)
	// 價格是 decimal, 要走 Equal 比較
	require.True(suite.T(), decimal.RequireFromString("49.99").Equal(cached.Items[0].Variant.Price))
}

func (suite *CartCacheTestSuite) TestGet_Miss() {
	// cache miss 要回傳 (nil, nil) 而不是錯誤
	cached, err := suite.cache.Get(context.Background(), 999999)

	require.NoError(suite.T(), err)
	require.Nil(suite.T(), cached)
}

func (suite *CartCacheTestSuite) TestInvalidate() {
	cart := suite.testCart(102)
	require.NoError(suite.T(), suite.cache.Set(context.Background(), cart))

	require.NoError(suite.T(), suite.cache.Invalidate(context.Background(), 102))

	cached, err := suite.cache.Get(context.Background(), 102)
	require.NoError(suite.T(), err)
	require.Nil(suite.T(), cached)
}

func (suite *CartCacheTestSuite) TestInvalidate_MissingKey() {
	// 刪除不存在的 key 不是錯誤
	require.NoError(suite.T(), suite.cache.Invalidate(context.Background(), 888888))
}

func TestCartCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CartCacheTestSuite))
}
