package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/api"
	"github.com/hackgods/ward-scheduling/internal/app"
	"github.com/hackgods/ward-scheduling/internal/appointment"
	"github.com/hackgods/ward-scheduling/internal/audit"
	"github.com/hackgods/ward-scheduling/internal/config"
	"github.com/hackgods/ward-scheduling/internal/db"
	"github.com/hackgods/ward-scheduling/internal/fleet"
	"github.com/hackgods/ward-scheduling/internal/people"
	redisclient "github.com/hackgods/ward-scheduling/internal/redis"
	"github.com/hackgods/ward-scheduling/internal/staffing"
	"github.com/hackgods/ward-scheduling/internal/ward"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up",
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("postgres", cfg.UsePostgres()),
		zap.Bool("redis", cfg.UseRedis()),
		zap.Bool("nats", cfg.UseNats()),
		zap.Duration("lock_ttl", cfg.LockTTL),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	var pgPool *pgxpool.Pool
	if cfg.UsePostgres() {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		cancelPg()
		if err != nil {
			logger.Fatal("postgres connection error", zap.Error(err))
		}
		defer pgPool.Close()
		logger.Info("connected to Postgres")

		if cfg.MigrationsEnabled {
			if err := db.Migrate(rootCtx, pgPool, logger); err != nil {
				logger.Fatal("migration error", zap.Error(err))
			}
		}
	}

	// Connect Redis
	var rdb *redis.Client
	if cfg.UseRedis() {
		rdb, err = redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", zap.Error(err))
			}
		}()
		logger.Info("connected to Redis")
	}

	// Connect NATS
	var nc *nats.Conn
	if cfg.UseNats() {
		nc, err = audit.ConnectNats(cfg.NatsURL, "ward-api-server")
		if err != nil {
			logger.Fatal("nats connection error", zap.Error(err))
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("error draining nats", zap.Error(err))
			}
		}()
		logger.Info("connected to NATS")
	}

	// Stores
	var (
		repo   appointment.Repository
		sink   audit.Sink
		reader audit.Reader
		locker = redisclient.NewLocalLocker()
	)
	if pgPool != nil {
		pgSink := audit.NewPgSink(pgPool)
		repo, sink, reader = appointment.NewPgRepository(pgPool), pgSink, pgSink
	} else {
		mem := audit.NewMemorySink()
		repo, sink, reader = appointment.NewMemoryRepository(), audit.FanOut{audit.NewLogSink(logger), mem}, mem
	}
	if rdb != nil {
		locker = redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	}
	if nc != nil {
		sink = audit.FanOut{sink, audit.NewNatsSink(nc)}
	}

	events := audit.NewRecorder(sink, logger)
	staff := people.NewDirectory()
	rooms := ward.NewRegistry(logger.Named("ward"), events)

	router := api.NewRouter(api.RouterConfig{
		Staff:        staff,
		Rooms:        rooms,
		Authority:    ward.NewAuthority(rooms, logger.Named("ward"), events),
		Doctors:      staffing.NewDesk(staff, logger.Named("staffing"), events),
		Appointments: appointment.NewService(repo, locker, events, logger.Named("appointment")),
		Fleet:        fleet.NewFleet(logger.Named("fleet"), events),
		Events:       reader,
		PgPool:       pgPool,
		Redis:        rdb,
		Nats:         nc,
		Logger:       logger.Named("http"),
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server error", zap.Error(err))
		}
	}

	logger.Info("shutting down api-server", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
