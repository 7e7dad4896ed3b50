package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/spanner"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/cache"
	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/recalc"
	"github.com/light-bringer/promo-engine/internal/app/promotion/repo"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
	"github.com/light-bringer/promo-engine/internal/pkg/config"
	"github.com/light-bringer/promo-engine/internal/pkg/logger"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

// fullRunner is what a synchronous run needs from the engine.
type fullRunner interface {
	RecalculateAll(ctx context.Context) (recalc.Result, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database := flag.String("database", cfg.Spanner.Database, "Spanner database path")
	dryRun := flag.Bool("dry-run", false, "List eligible promotions without writing snapshots")
	flag.Parse()

	zl, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *database, *dryRun, zl); err != nil {
		zl.Fatal("recalculation failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, database string, dryRun bool, zl *zap.Logger) error {
	client, err := spanner.NewClient(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to create Spanner client: %w", err)
	}
	defer client.Close()

	clk := clock.NewRealClock()
	promotions := repo.NewPromotionRepo(client)

	if dryRun {
		return listEligible(ctx, promotions, clk, os.Stdout)
	}

	// In-memory caches live inside the server processes; only Redis can be
	// invalidated from here.
	var priceCache contracts.PriceCache
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		priceCache = cache.NewRedisPriceCache(rdb, cfg.Redis.TTL, clk, zl)
	}

	engine := recalc.NewEngine(
		promotions,
		repo.NewCatalogRepo(client, committer.NewCommitter(client)),
		priceCache,
		clk,
		recalc.Config{ReadChunkSize: cfg.Recalc.ReadChunkSize, WriteBatchSize: cfg.Recalc.WriteBatchSize},
		metrics.NewRegistry(),
		zl,
	)
	return runFull(ctx, engine, zl)
}

func runFull(ctx context.Context, engine fullRunner, zl *zap.Logger) error {
	started := time.Now()
	res, err := engine.RecalculateAll(ctx)
	if err != nil {
		return err
	}

	zl.Info("full recalculation completed",
		zap.Int("affected", res.Affected),
		zap.Int("evaluated", res.Evaluated),
		zap.Int("upserts", res.Upserts),
		zap.Int("clears", res.Clears),
		zap.Int("batches", res.Batches),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

func listEligible(ctx context.Context, source recalc.PromotionSource, clk clock.Clock, out io.Writer) error {
	now := clk.Now()
	eligible, err := source.ListEligible(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to load eligible promotions: %w", err)
	}

	fmt.Fprintf(out, "%d eligible promotion(s) at %s\n", len(eligible), now.Format(time.RFC3339))
	for _, p := range eligible {
		fmt.Fprintln(out, describe(p))
	}
	return nil
}

func describe(p domain.PromotionSnapshot) string {
	return fmt.Sprintf("%s  %-24s %-10s %8s  scope=%s  %s .. %s",
		p.ID, p.Name, p.Kind, p.Value.String(), p.Scope.Kind(),
		p.StartDate.Format(time.DateOnly), p.EndDate.Format(time.DateOnly))
}
