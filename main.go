package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ms-servicing/internal/auth"
	"ms-servicing/internal/catalog"
	"ms-servicing/internal/config"
	"ms-servicing/internal/dashboard"
	"ms-servicing/internal/database"
	"ms-servicing/internal/database/migrations"
	"ms-servicing/internal/kafka"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/mechanics"
	"ms-servicing/internal/server"
	"ms-servicing/internal/sse"
	ticketdb "ms-servicing/internal/tickets/db"
	"ms-servicing/internal/tickets/jsonstore"
	"ms-servicing/internal/tickets/receipt"
	tickets "ms-servicing/internal/tickets/service"
	"ms-servicing/internal/tickets/ticket_api"
	userdb "ms-servicing/internal/users/db"
	users "ms-servicing/internal/users/service"
	"ms-servicing/internal/users/user_api"
	vehicledb "ms-servicing/internal/vehicles/db"
	vehicleredis "ms-servicing/internal/vehicles/redis"
	vehicles "ms-servicing/internal/vehicles/service"
	"ms-servicing/internal/vehicles/vehicle_api"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

const identityCacheTTL = 5 * time.Minute

func loadCatalog(cfg config.CatalogConfig, log *logger.Logger) *catalog.Catalog {
	if cfg.File == "" {
		log.Info("CATALOG", "Using built-in catalog")
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(cfg.File)
	if err != nil {
		log.Fatal("CATALOG", fmt.Sprintf("Failed to load catalog %s: %v", cfg.File, err))
	}
	log.Info("CATALOG", fmt.Sprintf("Loaded catalog from %s", cfg.File))
	return cat
}

// openStores returns the SQL database backing customers, vehicles and
// mechanics, plus the ticket store. With the json driver tickets live in a
// JSON file and everything else in SQLite.
func openStores(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, tickets.TicketStore, error) {
	sqlCfg := cfg
	if cfg.Driver == database.DriverJSON {
		sqlCfg.Driver = database.DriverSQLite
	}

	bunDB, err := database.Open(ctx, sqlCfg, log)
	if err != nil {
		return nil, nil, err
	}

	switch sqlCfg.Driver {
	case database.DriverPostgres:
		if err := runMigrations(cfg.PostgresDSN, log); err != nil {
			bunDB.Close()
			return nil, nil, err
		}
	default:
		if err := database.CreateSchema(ctx, bunDB); err != nil {
			bunDB.Close()
			return nil, nil, err
		}
		log.LogDatabase("SCHEMA", "all", "SQLite schema ensured")
	}

	if cfg.Driver == database.DriverJSON {
		store, err := jsonstore.Open(cfg.JSONStorePath)
		if err != nil {
			bunDB.Close()
			return nil, nil, err
		}
		log.Info("DATABASE", fmt.Sprintf("Tickets stored in %s", cfg.JSONStorePath))
		return bunDB, store, nil
	}
	return bunDB, ticketdb.New(bunDB), nil
}

// runMigrations uses its own connection since closing the migrator closes it.
func runMigrations(dsn string, log *logger.Logger) error {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	runner := migrations.NewRunner(sqldb, migrations.DefaultOptions(), log)
	defer runner.Close()
	if err := runner.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info("REDIS", "Redis disabled, plate uniqueness relies on the database constraint")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Addr))
	return client
}

type eventPublisher interface {
	tickets.EventPublisher
	Close() error
}

func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *logger.Logger) eventPublisher {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, ticket events are not published")
		return kafka.NoopPublisher{Logger: log}
	}
	if err := kafka.EnsureTopicsExist(ctx, cfg.Brokers, cfg.Topics.All(), log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Brokers))
	return kafka.NewProducer(cfg.Brokers, cfg.Topics, log)
}

// newVerifier prefers an external OIDC provider. Without one, tokens are
// minted locally by the returned Issuer.
func newVerifier(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (auth.Verifier, *auth.Issuer) {
	if cfg.OIDCIssuer != "" {
		v, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			log.Fatal("AUTH", fmt.Sprintf("Failed to discover OIDC provider: %v", err))
		}
		log.Info("AUTH", fmt.Sprintf("Verifying tokens issued by %s", cfg.OIDCIssuer))
		return v, nil
	}
	if cfg.JWTSecret == "change-me" {
		log.Warn("AUTH", "JWT_SECRET is the default value; set it outside development")
	}
	issuer := auth.NewIssuer(cfg.JWTSecret, 24*time.Hour)
	return issuer, issuer
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(cfg.Log.Dir)
	defer log.Close()

	log.Info("APP", "Starting Servicing Service initialization")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := loadCatalog(cfg.Catalog, log)

	bunDB, ticketStore, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	var locker vehicles.PlateLocker = vehicleredis.NoopLock{}
	var identityCache auth.IdentityCache
	if redisClient != nil {
		defer redisClient.Close()
		locker = vehicleredis.NewPlateLock(redisClient, cfg.Redis.PlateLockTTL, log)
		identityCache = auth.NewRedisIdentityCache(redisClient, identityCacheTTL)
	}

	publisher := newPublisher(ctx, cfg.Kafka, log)
	defer publisher.Close()
	broker := sse.NewTicketEventBroker()

	verifier, issuer := newVerifier(ctx, cfg.Auth, log)

	userService := users.NewUserService(&userdb.DB{Bun: bunDB}, log)
	vehicleService := vehicles.NewVehicleService(&vehicledb.DB{Bun: bunDB}, cat, locker, log)
	mechanicService := mechanics.NewService(&mechanics.DB{Bun: bunDB})
	ticketService := tickets.NewTicketService(ticketStore, vehicleService, mechanicService, cat, tickets.Publishers{publisher, broker}, log)
	dash := dashboard.NewService(ticketService, userService, log)

	log.Info("HTTP", "Setting up router and middleware")
	router := server.NewRouter(server.Deps{
		Tickets:   ticket_api.NewHandler(ticketService, dash, mechanicService, receipt.NewGenerator(cfg.Auth.QRSecret), broker, log),
		Vehicles:  vehicle_api.NewHandler(vehicleService, cat, log),
		Users:     user_api.NewHandler(userService, issuer, log),
		Verifier:  verifier,
		Customers: userService,
		Cache:     identityCache,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Servicing Service running on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Servicing Service shutdown complete")
	}
}
