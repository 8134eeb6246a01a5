package main

import (
	"github.com/chucky-1/papertrade/internal/config"
	"github.com/chucky-1/papertrade/internal/grpc/server"
	"github.com/chucky-1/papertrade/internal/metrics"
	"github.com/chucky-1/papertrade/internal/oracle"
	"github.com/chucky-1/papertrade/internal/repository"
	"github.com/chucky-1/papertrade/internal/service"
	"github.com/chucky-1/papertrade/protocol"
	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Configuration
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("%v", err)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	rep, closeStore := newLedger(ctx, cfg)
	defer closeStore()

	// Redis cache
	opts := &cache.Options{LocalCache: cache.NewTinyLFU(1000, cfg.PriceCacheTTL)}
	if cfg.EnabledRedisCache {
		opts.Redis = redis.NewRing(&redis.RingOptions{Addrs: map[string]string{cfg.ServerRedisCache: cfg.RedisAddr()}})
	}
	cch := repository.NewCache(cache.New(opts), cfg.OracleCurrency, cfg.PriceCacheTTL)
	prices := oracle.NewCached(oracle.NewCoinGecko(cfg.OracleURL, cfg.OracleCurrency, cfg.OracleTimeout), cch)

	srv := service.NewService(rep, prices, cfg.StartingBalance, cfg.OracleTimeout)

	// Metrics
	reg := metrics.Init()
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(reg)}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err)
		}
	}()

	// Grpc
	lis, err := net.Listen("tcp", cfg.GrpcAddr())
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	s := grpc.NewServer()
	protocol.RegisterLedgerServer(s, server.NewServer(srv))
	go func() {
		<-ctx.Done()
		s.GracefulStop()
		if err := metricsServer.Close(); err != nil {
			log.Error(err)
		}
	}()

	log.WithFields(log.Fields{
		"grpc":    cfg.GrpcAddr(),
		"metrics": cfg.MetricsAddr,
		"store":   cfg.StoreDriver,
	}).Info("papertrade is running")
	if err = s.Serve(lis); err != nil {
		log.Error(err)
	}
}

// newLedger opens the configured store and returns it with its close func
func newLedger(ctx context.Context, cfg *config.Config) (repository.Ledger, func()) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.Connect(ctx, cfg.PostgresURL())
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		rep := repository.NewPostgres(pool)
		if err = rep.Migrate(ctx); err != nil {
			log.Fatalf("Unable to migrate database: %v", err)
		}
		return rep, pool.Close

	case config.DriverSQLite:
		db, err := sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Unable to open database: %v", err)
		}
		rep := repository.NewSQLite(db)
		if err = rep.Migrate(ctx); err != nil {
			log.Fatalf("Unable to migrate database: %v", err)
		}
		return rep, func() {
			if err := db.Close(); err != nil {
				log.Error(err)
			}
		}
	}
	return repository.NewMemory(), func() {}
}
