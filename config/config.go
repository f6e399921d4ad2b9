package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	LogLevel                string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP                    HTTP
	Storage                 Storage
	Postgres                Postgres
	Redis                   Redis
	API                     API
	Cache                   Cache
	Jobs                    Jobs
	Telegram                Telegram
	GoogleDrive             GoogleDrive
	Fees                    Fees
	RecentTransactionsLimit int `env:"RECENT_TRANSACTIONS_LIMIT" envDefault:"10"`
}

type HTTP struct {
	Host         string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
}

// Storage selects the ledger store backend: "redis", "postgres" or "memory".
type Storage struct {
	Driver    string `env:"STORAGE_DRIVER" envDefault:"redis"`
	KeyPrefix string `env:"STORAGE_KEY_PREFIX" envDefault:"goldTracker:"`
}

type Postgres struct {
	Host            string `env:"PG_HOST" envDefault:"localhost"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME" envDefault:"gold_tracker"`
	Password        string `env:"PG_PASSWORD" envDefault:""`
	User            string `env:"PG_USER" envDefault:"postgres"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Redis struct {
	Host        string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port        int           `env:"REDIS_PORT" envDefault:"6379"`
	Password    string        `env:"REDIS_PASSWORD" envDefault:""`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
}

type API struct {
	Debug   bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	PureApi PureApi
}

type PureApi struct {
	Url       string  `env:"PURE_API_URL" envDefault:"https://public.api.collectpure.com"`
	ApiKey    string  `env:"PURE_API_KEY" envDefault:""`
	RateLimit float64 `env:"PURE_API_RATE_LIMIT" envDefault:"2"`
}

type Cache struct {
	KeyPrefix           string        `env:"CACHE_KEY_PREFIX" envDefault:"goldTrackerCache:"`
	SpotPriceExpiration time.Duration `env:"CACHE_SPOT_PRICE_EXPIRATION" envDefault:"24h"`
	ProductsExpiration  time.Duration `env:"CACHE_PRODUCTS_EXPIRATION" envDefault:"0s"`
}

type Jobs struct {
	RefreshSpotPriceInterval time.Duration `env:"REFRESH_SPOT_PRICE_JOB_INTERVAL" envDefault:"5m"`
	CleanupReportsInterval   time.Duration `env:"CLEANUP_REPORTS_JOB_INTERVAL" envDefault:"24h"`
}

type Telegram struct {
	Token       string        `env:"TELEGRAM_TOKEN" envDefault:""`
	UpdTimeout  time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	OwnerChatID int64         `env:"TELEGRAM_OWNER_CHAT_ID" envDefault:"0"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"168h"`
}

// Fees are the defaults used until fee settings are saved to the store.
type Fees struct {
	SurchargeRate        decimal.Decimal `env:"FEE_SURCHARGE_RATE" envDefault:"0.01"`
	MembershipRebateRate decimal.Decimal `env:"FEE_MEMBERSHIP_REBATE_RATE" envDefault:"0.02"`
	MarketplaceFeeRate   decimal.Decimal `env:"FEE_MARKETPLACE_RATE" envDefault:"0.0075"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
