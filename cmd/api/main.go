package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/config"
	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	"github.com/rs-labo46/inventory-tracker/internal/handler"
	"github.com/rs-labo46/inventory-tracker/internal/infra/db"
	"github.com/rs-labo46/inventory-tracker/internal/infra/identity"
	infraRepo "github.com/rs-labo46/inventory-tracker/internal/infra/repository"
	"github.com/rs-labo46/inventory-tracker/internal/infra/token"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"
	"github.com/rs-labo46/inventory-tracker/internal/server"
	"github.com/rs-labo46/inventory-tracker/internal/telemetry"
	"github.com/rs-labo46/inventory-tracker/internal/usecase"
	"github.com/rs-labo46/inventory-tracker/internal/validator"

	"github.com/google/uuid"
	gommonlog "github.com/labstack/gommon/log"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// STORE_DRIVERに応じてストアを開く。closeは終了時に呼ぶ
func openDocumentStore(ctx context.Context, cfg config.Config) (repo.DocumentStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		gormDB, err := db.Connect(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		store := infraRepo.NewDocumentGormRepository(gormDB)
		if err := store.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil

	case config.DriverMySQL:
		sqlDB, err := db.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		store := infraRepo.NewDocumentSQLRepository(sqlDB, infraRepo.DialectMySQL)
		if err := store.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store := infraRepo.NewDocumentSQLRepository(sqlDB, infraRepo.DialectSQLite)
		if err := store.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil

	case config.DriverRedis:
		client, err := db.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return infraRepo.NewDocumentRedisRepository(client), client.Close, nil

	case config.DriverMemory:
		return infraRepo.NewDocumentMemoryRepository(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver: %q", cfg.StoreDriver)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//トレース
	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{ServiceName: cfg.ServiceName, UseStdout: cfg.TraceStdout})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	//ストア
	store, closeStore, err := openDocumentStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store (%s): %v", cfg.StoreDriver, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("store close: %v", err)
		}
	}()

	//同期エンジン
	state := usecase.NewInventoryState()
	inventoryUC := usecase.NewInventoryUsecase(store, state, validator.NewInventoryValidator())

	//セッション
	issuer := token.NewJWTSessionIssuer(cfg.SessionKey(), cfg.SessionTTL)
	provider := identity.NewGoogleProvider(identity.ProviderConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       cfg.GoogleScopes,
	})
	sessionUC := usecase.NewSessionUsecase(provider, issuer, &uuidGenerator{}, &realClock{})
	sessionUC.Subscribe(func(c model.SessionChange) {
		switch c.Kind {
		case model.SessionSignedIn:
			log.Printf("signed in: sub=%s email=%s", c.User.Subject, c.User.Email)
		case model.SessionSignedOut:
			log.Printf("signed out: sub=%s", c.User.Subject)
		}
	})

	//起動時に一度だけ読み込む（失敗しても画面表示時に取り直す）
	if snap, err := inventoryUC.Refresh(ctx); err != nil {
		log.Printf("initial refresh: %v", err)
	} else {
		log.Printf("inventory loaded: %d items", len(snap.Items))
	}

	//Handler生成
	renderer, err := handler.NewTemplateRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}
	authH := handler.NewAuthHandler(sessionUC, cfg.CookieSecure)
	inventoryH := handler.NewInventoryHandler(inventoryUC)
	pageH := handler.NewPageHandler(inventoryUC)

	logLevel := gommonlog.INFO
	if cfg.IsProd() {
		logLevel = gommonlog.WARN
	}

	//Server起動
	srv := server.New(server.Config{
		Addr:        cfg.Addr(),
		ServiceName: cfg.ServiceName,
		LogLevel:    logLevel,
	}, sessionUC, renderer, authH, inventoryH, pageH)

	log.Printf("listening on %s (store=%s)", cfg.Addr(), cfg.StoreDriver)
	if err := srv.Run(ctx); err != nil {
		log.Printf("server: %v", err)
	}
	log.Printf("shutdown complete")
}
