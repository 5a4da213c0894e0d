package config

import (
	"github.com/spf13/viper"
)

// The service runs with its settings injected as environment
// variables (e.g. per-pod in EKS); defaults below match the local
// docker-compose + LocalStack setup.

type Config struct {
	DBHost                  string  `mapstructure:"DB_HOST"`
	DBPort                  string  `mapstructure:"DB_PORT"`
	DBUser                  string  `mapstructure:"DB_USER"`
	DBPassword              string  `mapstructure:"DB_PASSWORD"`
	DBName                  string  `mapstructure:"DB_NAME"`
	ServerPort              string  `mapstructure:"SERVER_PORT"`
	AWSRegion               string  `mapstructure:"AWS_REGION"`
	SettlementSQSQueueURL   string  `mapstructure:"SETTLEMENT_SQS_QUEUE_URL"`
	NotificationSQSQueueURL string  `mapstructure:"NOTIFICATION_SQS_QUEUE_URL"`
	AWSEndpoint             string  `mapstructure:"AWS_ENDPOINT"`
	OTLPEndpoint            string  `mapstructure:"OTLP_ENDPOINT"`
	PaymentGatewayMode      string  `mapstructure:"PAYMENT_GATEWAY_MODE"`
	PaymentGatewayURL       string  `mapstructure:"PAYMENT_GATEWAY_URL"`
	NotificationSender      string  `mapstructure:"NOTIFICATION_SENDER"`
	NotificationDomain      string  `mapstructure:"NOTIFICATION_DOMAIN"`
	PlatformFeePercent      float64 `mapstructure:"PLATFORM_FEE_PERCENT"`
	IsLocalDev              bool    `mapstructure:"IS_LOCAL_DEV"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "shiftpay_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("SETTLEMENT_SQS_QUEUE_URL", "http://localstack:4566/000000000000/settlement-queue")
	viper.SetDefault("NOTIFICATION_SQS_QUEUE_URL", "http://localstack:4566/000000000000/notification-queue")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	// simulated is the only mode with no external dependency; http
	// expects a processor speaking the gateway contract.
	viper.SetDefault("PAYMENT_GATEWAY_MODE", "simulated")
	viper.SetDefault("PAYMENT_GATEWAY_URL", "http://localhost:8081")
	viper.SetDefault("NOTIFICATION_SENDER", "payments@shiftpay-service.com")
	viper.SetDefault("NOTIFICATION_DOMAIN", "shiftpay-service.com")
	viper.SetDefault("PLATFORM_FEE_PERCENT", 0.15)
	viper.SetDefault("IS_LOCAL_DEV", false)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
