package config

import (
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	DbName     string `mapstructure:"POSTGRES_DB"`
	DbHost     string `mapstructure:"POSTGRES_HOST"`
	DbPort     string `mapstructure:"POSTGRES_PORT"`
	DbUser     string `mapstructure:"POSTGRES_USER"`
	DbPas      string `mapstructure:"POSTGRES_PASSWORD"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	// 金流商設定, 不使用 process 全域變數, 建構 client 時注入
	ProcessorAPIKey      string `mapstructure:"PROCESSOR_API_KEY"`
	ProcessorBaseURL     string `mapstructure:"PROCESSOR_BASE_URL"`
	ProcessorWebhookKey  string `mapstructure:"PROCESSOR_WEBHOOK_SECRET"`
	ProcessorTimeoutSecs int    `mapstructure:"PROCESSOR_TIMEOUT_SECS"`

	TaxRate           string `mapstructure:"TAX_RATE"`      // 預設 0.10
	ShippingFlatRate  string `mapstructure:"SHIPPING_FLAT"` // 預設 10.00
	Currency          string `mapstructure:"CURRENCY"`
	LowStockThreshold int    `mapstructure:"LOW_STOCK_THRESHOLD"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"` // 逗號分隔, 空值表示不發送事件
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatal("error read config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.mu.Lock()
					configSingleton.Config = cf
					configSingleton.mu.Unlock()
				} else {
					log.Println("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤 由外部決定要不要Fatal
*/
func loadConfig() (cf *Config, err error) {
	cf = &Config{}
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	setDefaults()

	if err = viper.ReadInConfig(); err != nil {
		// .env 不存在時允許純環境變數啟動
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("config file not loaded: %v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(cf); err != nil {
		return
	}
	return
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("PROCESSOR_BASE_URL", "https://api.stripe.com")
	viper.SetDefault("PROCESSOR_TIMEOUT_SECS", 10)
	viper.SetDefault("TAX_RATE", "0.10")
	viper.SetDefault("SHIPPING_FLAT", "10.00")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("LOW_STOCK_THRESHOLD", 10)
	viper.SetDefault("KAFKA_ORDER_TOPIC", "order-events")
	viper.SetDefault("REDIS_PREFIX", "ordercenter")
}
