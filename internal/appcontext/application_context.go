package appcontext

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/config"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/events"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/payment"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordercenter/internal/infra/repository/redisrepo"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf     *config.Config
	Logger *zerolog.Logger

	DbConn      *gorm.DB
	DbDao       *db.DbDao
	RedisClient *redis.Client
	Processor   payment.ProcessorClient
	Publisher   events.Publisher

	UserRepo      *db.UserRepo
	ProductRepo   *db.ProductRepo
	CartRepo      *db.CartRepo
	OrderRepo     *db.OrderRepo
	PaymentRepo   *db.PaymentRepo
	InventoryRepo *db.InventoryRepo
	CartCache     *redisrepo.CartCache

	CartService      service.ICartService
	CheckoutService  service.ICheckoutService
	PaymentService   service.IPaymentService
	OrderService     service.IOrderService
	InventoryService service.IInventoryService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	app.setUpLogger()

	if err := app.setUpDbConn(); err != nil {
		return err
	}
	if err := app.setUpRedis(); err != nil {
		return err
	}
	app.setUpProcessor()
	app.setUpPublisher()
	app.setUpRepos()
	if err := app.setUpServices(); err != nil {
		return err
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("module", "ordercenter").Logger()
	app.Logger = &logger
}

func (app *ApplicationContext) setUpDbConn() error {
	log.Printf("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.DbConn = conn
	app.DbDao = db.NewDbDao(conn)

	if err := app.DbDao.InitMigrate(); err != nil {
		return err
	}
	log.Printf("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Printf("Start setup redis client")
	client, err := redisrepo.GetRedisClient(app.Cf.RedisAddr,
		redisrepo.WithPassword(app.Cf.RedisPassword))
	if err != nil {
		return err
	}
	app.RedisClient = client
	log.Printf("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setUpProcessor() {
	log.Printf("Start setup payment processor client")
	app.Processor = payment.NewClient(payment.Config{
		APIKey:  app.Cf.ProcessorAPIKey,
		BaseURL: app.Cf.ProcessorBaseURL,
		Timeout: time.Duration(app.Cf.ProcessorTimeoutSecs) * time.Second,
	})
	log.Printf("Finish setup payment processor client")
}

func (app *ApplicationContext) setUpPublisher() {
	// KAFKA_BROKERS 沒設定就不發送事件
	if app.Cf.KafkaBrokers == "" {
		app.Publisher = events.NopPublisher{}
		return
	}
	log.Printf("Start setup kafka publisher")
	brokers := strings.Split(app.Cf.KafkaBrokers, ",")
	app.Publisher = events.NewKafkaPublisher(brokers, app.Cf.KafkaOrderTopic)
	log.Printf("Finish setup kafka publisher")
}

func (app *ApplicationContext) setUpRepos() {
	log.Printf("Start setup repositories")
	app.UserRepo = db.NewUserRepo(app.DbDao)
	app.ProductRepo = db.NewProductRepo(app.DbDao)
	app.CartRepo = db.NewCartRepo(app.DbDao)
	app.OrderRepo = db.NewOrderRepo(app.DbDao)
	app.PaymentRepo = db.NewPaymentRepo(app.DbDao)
	app.InventoryRepo = db.NewInventoryRepo(app.DbDao)
	app.CartCache = redisrepo.NewCartCache(app.RedisClient, app.Cf.RedisPrefix)
	log.Printf("Finish setup repositories")
}

func (app *ApplicationContext) setUpServices() error {
	log.Printf("Start setup services")

	taxRate, err := decimal.NewFromString(app.Cf.TaxRate)
	if err != nil {
		return fmt.Errorf("invalid TAX_RATE %q: %w", app.Cf.TaxRate, err)
	}
	shippingFlat, err := decimal.NewFromString(app.Cf.ShippingFlatRate)
	if err != nil {
		return fmt.Errorf("invalid SHIPPING_FLAT %q: %w", app.Cf.ShippingFlatRate, err)
	}

	app.CartService = service.NewCartService(app.CartRepo, app.ProductRepo, app.CartCache, taxRate, app.Logger)
	app.CheckoutService = service.NewCheckoutService(
		app.OrderRepo, app.CartRepo, app.UserRepo, app.CartCache, app.Publisher,
		taxRate, shippingFlat, app.Logger)
	app.PaymentService = service.NewPaymentService(
		app.PaymentRepo, app.OrderRepo, app.Processor, app.Publisher,
		app.Cf.ProcessorWebhookKey, app.Cf.Currency, app.Logger)
	app.OrderService = service.NewOrderService(app.OrderRepo, app.UserRepo, app.Publisher, app.Logger)
	app.InventoryService = service.NewInventoryService(
		app.InventoryRepo, app.ProductRepo, app.Cf.LowStockThreshold, app.Logger)

	log.Printf("Finish setup services")
	return nil
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Printf("Start application shutdown")

	done := make(chan error)
	go func() {
		defer close(done)

		if app.Publisher != nil {
			log.Printf("Closing event publisher...")
			if err := app.Publisher.Close(); err != nil {
				//有錯誤不結束流程
				log.Printf("event publisher close error: %v", err)
			}
		}

		if app.RedisClient != nil {
			log.Printf("Closing redis client...")
			if err := app.RedisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}

		if app.DbConn != nil {
			log.Printf("Closing database connection...")
			if sqlDB, err := app.DbConn.DB(); err == nil {
				sqlDB.Close()
			}
		}

		log.Printf("Application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}
