package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DATABASE_DSN" envDefault:"shipments.db"`
}

// CourierConfig holds the ACS account. It is read once at startup and
// handed to the client by value.
type CourierConfig struct {
	BaseUri         string        `env:"ACS_API_BASE_URI" envDefault:"https://webservices.acscourier.net/ACSRestServices/api/ACSAutoRest"`
	CompanyId       string        `env:"ACS_COMPANY_ID,required"`
	CompanyPassword string        `env:"ACS_COMPANY_PASSWORD,required"`
	UserId          string        `env:"ACS_USER_ID,required"`
	UserPassword    string        `env:"ACS_USER_PASSWORD,required"`
	ApiKey          string        `env:"ACS_API_KEY,required"`
	BillingCode     string        `env:"ACS_BILLING_CODE"`
	SenderName      string        `env:"ACS_SENDER_NAME"`
	Language        string        `env:"ACS_LANGUAGE" envDefault:"GR"`
	MinCallInterval time.Duration `env:"ACS_MIN_CALL_INTERVAL" envDefault:"100ms"`
	Timeout         time.Duration `env:"ACS_TIMEOUT" envDefault:"30s"`
}

type StorefrontConfig struct {
	StoreURL        string        `env:"WOO_STORE_URL"`
	ConsumerKey     string        `env:"WOO_CONSUMER_KEY"`
	ConsumerSecret  string        `env:"WOO_CONSUMER_SECRET"`
	PerPage         int           `env:"WOO_PER_PAGE" envDefault:"100"`
	Timeout         time.Duration `env:"WOO_TIMEOUT" envDefault:"30s"`
	RefreshSchedule string        `env:"WOO_REFRESH_SCHEDULE" envDefault:"@every 5m"`
}

func (c StorefrontConfig) Enabled() bool {
	return c.StoreURL != "" && c.ConsumerKey != ""
}

type PickupConfig struct {
	// Daily courier pickup, "15:04" layout.
	Time            string `env:"PICKUP_TIME" envDefault:"10:00"`
	ReminderMinutes int    `env:"PICKUP_REMINDER_MINUTES" envDefault:"15"`
}

type LabelsConfig struct {
	Directory  string        `env:"LABELS_DIRECTORY" envDefault:"voucher_pdfs"`
	RetryDelay time.Duration `env:"LABEL_RETRY_DELAY" envDefault:"2s"`
}

type ArchiveConfig struct {
	Bucket          string `env:"ARCHIVE_S3_BUCKET"`
	Region          string `env:"ARCHIVE_S3_REGION"`
	AccessKeyId     string `env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"ARCHIVE_S3_SECRET_ACCESS_KEY"`
	Prefix          string `env:"ARCHIVE_S3_PREFIX" envDefault:"vouchers"`
}

func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

type Config struct {
	Database      DatabaseConfig
	LogsDirectory string `env:"LOGS_DIRECTORY" envDefault:"logs"`
	LogToConsole  bool   `env:"LOG_TO_CONSOLE" envDefault:"true"`
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8085"`
	Courier       CourierConfig
	Storefront    StorefrontConfig
	Pickup        PickupConfig
	Labels        LabelsConfig
	Archive       ArchiveConfig
}

func LoadConfig() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
