package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/handler"
	"storefront/internal/infra/auth"
	"storefront/internal/infra/db"
	"storefront/internal/infra/events"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/metrics"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/spf13/cobra"
)

// storefront serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, gdb, log, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		if err := db.Migrate(gdb); err != nil {
			return err
		}

		// heartbeatはリクエスト処理とは別goroutine
		go db.Heartbeat(ctx, gdb, cfg.DBHeartbeatInterval, log)

		//イベント送信先
		var publisher interface {
			usecase.EventPublisher
			Close() error
		} = events.NoopPublisher{}
		if len(cfg.KafkaBrokers) > 0 {
			publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic)
			log.Info("order events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.OrderEventsTopic)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("close event publisher", "error", err)
			}
		}()

		m := metrics.New()

		//Repository（GORM実装）生成
		userRepo := infraRepo.NewUserGormRepository(gdb)
		auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
		txm := infraRepo.NewTxManagerGorm(gdb)
		productRepo := infraRepo.NewProductGormRepository(gdb)

		issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

		//Usecase生成
		accountUC := usecase.NewAccountUsecase(
			userRepo,
			auditRepo,
			validator.NewAuthValidator(userRepo),
			auth.NewBcryptHasher(12),
			issuer,
		)
		catalogUC := usecase.NewCatalogUsecase(txm, productRepo, infraRepo.NewCategoryGormRepository(gdb))
		cartUC := usecase.NewCartUsecase(infraRepo.NewCartGormRepository(gdb), productRepo)
		orderRepo := infraRepo.NewOrderGormRepository(gdb)
		itemRepo := infraRepo.NewOrderItemGormRepository(gdb)
		orderUC := usecase.NewOrderUsecase(txm, orderRepo, itemRepo,
			usecase.WithShippingPolicy(usecase.ShippingPolicy{
				FreeThreshold: cfg.FreeShippingThreshold,
				FlatFee:       cfg.FlatShippingFee,
			}),
			usecase.WithEventPublisher(publisher),
			usecase.WithOrderMetrics(m),
		)
		adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, itemRepo, publisher, m)
		addressUC := usecase.NewAddressUsecase(infraRepo.NewAddressGormRepository(gdb))
		auditUC := usecase.NewAuditUsecase(auditRepo)

		//Handler生成
		e := server.New(server.Deps{
			Logger:  log,
			Metrics: m,
			Ping: func(ctx context.Context) error {
				return db.Ping(ctx, gdb)
			},
			AllowOrigins: cfg.FEURLs,
			Guards:       handler.NewGuards(issuer, userRepo),
			Handlers: server.Handlers{
				Auth:         handler.NewAuthHandler(accountUC),
				Product:      handler.NewProductHandler(catalogUC),
				Cart:         handler.NewCartHandler(cartUC),
				Order:        handler.NewOrderHandler(orderUC),
				Address:      handler.NewAddressHandler(addressUC),
				AdminProduct: handler.NewAdminProductHandler(catalogUC),
				AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
				AdminUser:    handler.NewAdminUserHandler(accountUC, auditUC),
			},
		})

		return server.Run(ctx, e, ":"+strings.TrimPrefix(cfg.Port, ":"), log)
	},
}
