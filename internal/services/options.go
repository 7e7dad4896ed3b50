package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/cache"
	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/guard"
	"github.com/light-bringer/promo-engine/internal/app/promotion/history"
	"github.com/light-bringer/promo-engine/internal/app/promotion/outbox"
	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/get_product_price"
	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/get_promotion"
	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/list_events"
	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/list_promotions"
	"github.com/light-bringer/promo-engine/internal/app/promotion/recalc"
	"github.com/light-bringer/promo-engine/internal/app/promotion/repo"
	"github.com/light-bringer/promo-engine/internal/app/promotion/usecases/create_promotion"
	"github.com/light-bringer/promo-engine/internal/app/promotion/usecases/delete_promotion"
	"github.com/light-bringer/promo-engine/internal/app/promotion/usecases/recalculate_all"
	"github.com/light-bringer/promo-engine/internal/app/promotion/usecases/update_promotion"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
	"github.com/light-bringer/promo-engine/internal/pkg/config"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
	httptransport "github.com/light-bringer/promo-engine/internal/transport/http"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	RedisClient   *redis.Client
	Metrics       *metrics.Registry
	Queue         recalc.Queue
	Engine        *recalc.Engine
	Worker        *recalc.Worker
	Repairer      *recalc.Repairer
	Relay         *outbox.Relay // nil without Kafka
	Router        *gin.Engine
}

// NewServiceOptions creates and wires up all application dependencies.
// Redis and Kafka are optional; without them the price cache and the job
// queue stay in process.
func NewServiceOptions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ServiceOptions, error) {
	// 1. Initialize Spanner client
	spannerClient, err := spanner.NewClient(ctx, cfg.Spanner.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spanner client: %w", err)
	}
	opts := &ServiceOptions{SpannerClient: spannerClient}

	// 2. Create infrastructure components
	clk := clock.NewRealClock()
	comm := committer.NewCommitter(spannerClient)
	opts.Metrics = metrics.NewRegistry()

	var priceCache contracts.PriceCache = cache.NewMemoryPriceCache(cfg.Redis.TTL, clk)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			opts.Close()
			return nil, err
		}
		opts.RedisClient = rdb
		priceCache = cache.NewRedisPriceCache(rdb, cfg.Redis.TTL, clk, logger)
	}

	if cfg.Kafka.Enabled() {
		opts.Queue = recalc.NewKafkaQueue(recalc.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, logger)
	} else {
		opts.Queue = recalc.NewMemoryQueue(cfg.Recalc.QueueSize)
	}

	// 3. Create repositories
	promotionRepo := repo.NewPromotionRepo(spannerClient)
	catalogRepo := repo.NewCatalogRepo(spannerClient, comm)
	orderRepo := repo.NewOrderRepo(spannerClient)
	historyRepo := repo.NewHistoryRepo(comm)
	outboxRepo := repo.NewOutboxRepo()
	readModel := repo.NewReadModel(spannerClient)
	eventsReadModel := repo.NewEventsReadModel(spannerClient)

	// 4. Recalculation engine, scheduler, worker and repairer
	opts.Engine = recalc.NewEngine(promotionRepo, catalogRepo, priceCache, clk, recalc.Config{
		ReadChunkSize:  cfg.Recalc.ReadChunkSize,
		WriteBatchSize: cfg.Recalc.WriteBatchSize,
	}, opts.Metrics, logger)
	scheduler := recalc.NewScheduler(opts.Queue, clk, opts.Metrics, logger)
	opts.Worker = recalc.NewWorker(opts.Queue, opts.Engine, cfg.Recalc.Workers, opts.Metrics, logger)
	opts.Repairer = recalc.NewRepairer(opts.Worker.Errors(), scheduler, clk, cfg.Recalc.RepairCooldown, opts.Metrics, logger)

	if cfg.Kafka.Enabled() {
		opts.Relay = outbox.NewRelay(
			eventsReadModel,
			outbox.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic),
			comm,
			clk,
			outbox.Config{
				PollInterval: cfg.Outbox.PollInterval,
				BatchSize:    cfg.Outbox.BatchSize,
				MaxRetries:   cfg.Outbox.MaxRetries,
			},
			opts.Metrics,
			logger,
		)
	}

	historyLogger := history.NewLogger(historyRepo, clk, opts.Metrics, logger)
	deletionGuard := guard.NewDeletionGuard(orderRepo)

	// 5. Create command use cases (write operations)
	createPromotionUseCase := create_promotion.NewInteractor(promotionRepo, outboxRepo, comm, historyLogger, scheduler, clk, logger)
	updatePromotionUseCase := update_promotion.NewInteractor(promotionRepo, outboxRepo, comm, historyLogger, scheduler, clk, logger)
	deletePromotionUseCase := delete_promotion.NewInteractor(promotionRepo, outboxRepo, comm, deletionGuard, historyLogger, scheduler, clk, logger)
	recalculateAllUseCase := recalculate_all.NewInteractor(scheduler, logger)

	// 6. Create query use cases (read operations)
	getPromotionQuery := get_promotion.NewQuery(readModel)
	listPromotionsQuery := list_promotions.NewQuery(readModel)
	getProductPriceQuery := get_product_price.NewQuery(catalogRepo, priceCache, clk, opts.Metrics, logger)
	listEventsQuery := list_events.NewQuery(eventsReadModel)

	// 7. Create HTTP handlers
	promotionHandler := httptransport.NewPromotionHandler(
		createPromotionUseCase,
		updatePromotionUseCase,
		deletePromotionUseCase,
		recalculateAllUseCase,
		getPromotionQuery,
		listPromotionsQuery,
	)
	priceHandler := httptransport.NewPriceHandler(getProductPriceQuery)
	eventsHandler := httptransport.NewEventsHandler(listEventsQuery)

	opts.Router = httptransport.NewRouter(httptransport.RouterConfig{
		ServiceName: cfg.App.Name,
		Tracing:     cfg.Telemetry.Enabled,
		Debug:       cfg.App.Env == "development",
	}, logger, opts.Metrics, promotionHandler, priceHandler, eventsHandler)

	return opts, nil
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.Relay != nil {
		_ = s.Relay.Close()
	}
	if s.Queue != nil {
		_ = s.Queue.Close()
	}
	if s.RedisClient != nil {
		_ = s.RedisClient.Close()
	}
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
