package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tienda-be/internal/article"
	"tienda-be/internal/cart"
	"tienda-be/internal/config"
	"tienda-be/internal/db"
	"tienda-be/internal/httpx"
	"tienda-be/internal/logger"
	"tienda-be/internal/order"
	"tienda-be/internal/payment"
	"tienda-be/internal/payment/webhook"
	"tienda-be/internal/queue"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	producer := queue.NewProducer(cfg.KafkaBrokers, queue.TopicReconcileJobs)
	defer producer.Close()

	gateway, err := payment.NewMercadoPagoGateway(cfg.MercadoPago)
	if err != nil {
		log.Fatalf("payment gateway: %v", err)
	}

	articleRepo := article.NewRepository(database)
	cartStore := cart.NewRedisStore(rdb)
	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, articleRepo, cartStore)

	paymentRepo := payment.NewRepository(database)
	prefSvc := payment.NewPreferenceService(gateway, paymentRepo, cfg.MercadoPago)

	h := &httpx.Handler{
		Orders:   orderSvc,
		Prefs:    prefSvc,
		Payments: paymentRepo,
		Carts:    cartStore,
		Articles: articleRepo,
		Webhook:  webhook.NewWebhookHandler(producer, paymentRepo),
	}
	router := httpx.NewRouter([]byte(cfg.JWTSecret), h)

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: router}

	go func() {
		logger.L().Info("HTTP server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.L().Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
