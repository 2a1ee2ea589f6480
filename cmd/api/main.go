package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Facturas-api/internal/application/audit"
	"github.com/jhoicas/Facturas-api/internal/application/billing"
	"github.com/jhoicas/Facturas-api/internal/domain/repository"
	"github.com/jhoicas/Facturas-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Facturas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Facturas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Facturas-api/internal/interfaces/http"
	"github.com/jhoicas/Facturas-api/pkg/config"
	"github.com/jhoicas/Facturas-api/pkg/logger"
)

// stores repositorios seleccionados según STORE_DRIVER.
type stores struct {
	txRunner    billing.InvoiceTxRunner
	invoiceRepo repository.InvoiceRepository
	historyRepo repository.InvoiceHistoryRepository
	auditRepo   repository.AuditLogRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	// Publicación de eventos opcional: sin broker no se emite nada.
	var publisher billing.EventPublisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor kafka")
			}
		}()
		publisher = producer
		log.Info().Str("broker", cfg.Kafka.Broker).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	historySvc := audit.NewHistoryService(st.historyRepo, log)
	trailSvc := audit.NewTrailService(st.auditRepo, log)
	invoiceUC := billing.NewInvoiceLifecycleUseCase(
		st.txRunner, st.invoiceRepo, historySvc, trailSvc, publisher, log,
	)

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		InvoiceUC: invoiceUC,
		History:   historySvc,
		Trail:     trailSvc,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		store := memory.New()
		store.RegisterShipment(cfg.App.SeedShipments...)
		log.Warn().Int("shipments", len(cfg.App.SeedShipments)).Msg("almacenamiento en memoria: los datos no sobreviven al reinicio")
		return &stores{
			txRunner:    store,
			invoiceRepo: store.Invoices(),
			historyRepo: store.History(),
			auditRepo:   store.AuditLogs(),
			close:       func() {},
		}, nil
	}

	if cfg.DB.Migrate {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString(), postgres.MigrateUp); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		txRunner:    postgres.NewTxRunner(pool),
		invoiceRepo: postgres.NewInvoiceRepository(pool),
		historyRepo: postgres.NewInvoiceHistoryRepository(pool),
		auditRepo:   postgres.NewAuditLogRepository(pool),
		close:       pool.Close,
	}, nil
}
