package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tienda-be/internal/article"
	"tienda-be/internal/cart"
	"tienda-be/internal/config"
	"tienda-be/internal/db"
	"tienda-be/internal/logger"
	"tienda-be/internal/order"
	"tienda-be/internal/payment"
	"tienda-be/internal/queue"
	"tienda-be/internal/reconcile"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database := db.InitDB(cfg)
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	gateway, err := payment.NewMercadoPagoGateway(cfg.MercadoPago)
	if err != nil {
		log.Fatalf("payment gateway: %v", err)
	}

	articleRepo := article.NewRepository(database)
	cartStore := cart.NewRedisStore(rdb)
	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, articleRepo, cartStore)
	paymentRepo := payment.NewRepository(database)

	engine := reconcile.NewEngine(gateway, orderSvc, paymentRepo)

	group := getenv("RECONCILE_GROUP", "reconcile-worker")
	workers := mustAtoi(os.Getenv("RECONCILE_WORKERS"), 4)
	cons := queue.NewConsumer(cfg.KafkaBrokers, group, queue.TopicReconcileJobs, workers)

	go func() {
		logger.L().Info("reconcile consumer started",
			zap.String("group", group),
			zap.String("topic", queue.TopicReconcileJobs),
			zap.Int("workers", workers))
		if err := cons.Start(ctx, engine.HandleMessage); err != nil {
			logger.L().Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.L().Info("shutting down consumer...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
