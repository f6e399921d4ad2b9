package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/data"
	"github.com/KotFed0t/gold_tracker/data/cache"
	"github.com/KotFed0t/gold_tracker/data/repository"
	"github.com/KotFed0t/gold_tracker/data/repository/memory"
	"github.com/KotFed0t/gold_tracker/data/repository/postgres"
	redisRepo "github.com/KotFed0t/gold_tracker/data/repository/redis"
	"github.com/KotFed0t/gold_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/gold_tracker/internal/externalApi/pureApi"
	"github.com/KotFed0t/gold_tracker/internal/model"
	"github.com/KotFed0t/gold_tracker/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/gold_tracker/internal/service/ledgerService"
	"github.com/KotFed0t/gold_tracker/internal/service/marketService"
	"github.com/redis/go-redis/v9"
)

// App holds the wired services shared by the server and the CLI.
type App struct {
	Config *config.Config
	Ledger *ledgerService.LedgerService
	Market *marketService.MarketService
	// Drive is nil when report upload is not configured.
	Drive *googleDriveApi.GoogleDriveApi

	closers []func() error
}

// New connects to the configured backends and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	redisClient := data.NewRedisClient(cfg)
	a.closers = append(a.closers, redisClient.Close)

	store, err := a.newStore(cfg, redisClient)
	if err != nil {
		a.Close()
		return nil, err
	}
	repo := repository.NewLedger(store, model.FeeSettings{
		SurchargeRate:        cfg.Fees.SurchargeRate,
		MembershipRebateRate: cfg.Fees.MembershipRebateRate,
		MarketplaceFeeRate:   cfg.Fees.MarketplaceFeeRate,
	})

	a.Market = marketService.New(pureApi.New(cfg), cache.NewRedisCache(redisClient, cfg))

	var cloud ledgerService.CloudStorage
	if cfg.GoogleDrive.CredentialsFile != "" {
		drive, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Drive = drive
		cloud = drive
	} else {
		slog.Info("GOOGLE_DRIVE_CREDENTIALS_FILE is not set, report upload disabled")
	}

	a.Ledger = ledgerService.New(cfg, repo, a.Market, xslsxGenerator.New(), cloud)

	return a, nil
}

func (a *App) newStore(cfg *config.Config, redisClient *redis.Client) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pgClient := data.NewPostgresClient(cfg)
		a.closers = append(a.closers, pgClient.Close)
		return postgres.NewPostgres(cfg, pgClient), nil
	case "memory":
		slog.Warn("memory storage selected, ledger is lost on exit")
		return memory.New(), nil
	case "redis":
		return redisRepo.NewRedis(redisClient, cfg), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Error("close error", slog.String("err", err.Error()))
		}
	}
	a.closers = nil
}

// SetupLogger installs a JSON slog handler writing to w at the configured level.
func SetupLogger(cfg *config.Config, w io.Writer) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
