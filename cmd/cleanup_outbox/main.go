package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/spanner"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/promo-engine/internal/models/m_outbox"
	"github.com/light-bringer/promo-engine/internal/pkg/config"
	"github.com/light-bringer/promo-engine/internal/pkg/logger"
)

// Options for one cleanup run.
type Options struct {
	Database               string
	CompletedRetentionDays int
	FailedRetentionDays    int
	DryRun                 bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	opts := Options{}
	flag.StringVar(&opts.Database, "database", cfg.Spanner.Database, "Spanner database (projects/PROJECT/instances/INSTANCE/databases/DATABASE)")
	flag.IntVar(&opts.CompletedRetentionDays, "completed-retention", 30, "Retention days for completed events")
	flag.IntVar(&opts.FailedRetentionDays, "failed-retention", 90, "Retention days for failed events")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be deleted without deleting")
	flag.Parse()

	zl, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := cleanupOutbox(context.Background(), opts, zl); err != nil {
		zl.Fatal("cleanup failed", zap.Error(err))
	}
	zl.Info("cleanup completed")
}

func cleanupOutbox(ctx context.Context, opts Options, zl *zap.Logger) error {
	if opts.CompletedRetentionDays <= 0 || opts.FailedRetentionDays <= 0 {
		return fmt.Errorf("retention days must be positive")
	}

	client, err := spanner.NewClient(ctx, opts.Database)
	if err != nil {
		return fmt.Errorf("failed to create Spanner client: %w", err)
	}
	defer client.Close()

	completedCutoff, failedCutoff := cutoffs(time.Now().UTC(), opts)
	zl.Info("starting outbox cleanup",
		zap.Time("completed_cutoff", completedCutoff),
		zap.Time("failed_cutoff", failedCutoff),
		zap.Bool("dry_run", opts.DryRun),
	)

	if opts.DryRun {
		return dryRunCleanup(ctx, client, completedCutoff, failedCutoff, zl)
	}
	return performCleanup(ctx, client, completedCutoff, failedCutoff, zl)
}

func cutoffs(now time.Time, opts Options) (completed, failed time.Time) {
	return now.AddDate(0, 0, -opts.CompletedRetentionDays), now.AddDate(0, 0, -opts.FailedRetentionDays)
}

// retentionStatement builds the statement over expired events; prefix is
// either a SELECT list or DELETE.
func retentionStatement(prefix string, completedCutoff, failedCutoff time.Time) spanner.Statement {
	return spanner.Statement{
		SQL: fmt.Sprintf(`%s FROM %s
		WHERE (%s = '%s' AND %s < @completedCutoff)
		   OR (%s = '%s' AND %s < @failedCutoff)`,
			prefix, m_outbox.TableName,
			m_outbox.Status, m_outbox.StatusCompleted, m_outbox.ProcessedAt,
			m_outbox.Status, m_outbox.StatusFailed, m_outbox.ProcessedAt,
		),
		Params: map[string]interface{}{
			"completedCutoff": completedCutoff,
			"failedCutoff":    failedCutoff,
		},
	}
}

func dryRunCleanup(ctx context.Context, client *spanner.Client, completedCutoff, failedCutoff time.Time, zl *zap.Logger) error {
	stmt := retentionStatement("SELECT "+m_outbox.Status+", COUNT(*)", completedCutoff, failedCutoff)
	stmt.SQL += " GROUP BY " + m_outbox.Status

	iter := client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var total int64
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to query events: %w", err)
		}

		var status string
		var count int64
		if err := row.Columns(&status, &count); err != nil {
			return fmt.Errorf("failed to parse row: %w", err)
		}
		zl.Info("would delete events", zap.String("status", status), zap.Int64("count", count))
		total += count
	}

	zl.Info("dry run finished", zap.Int64("total", total))
	return nil
}

func performCleanup(ctx context.Context, client *spanner.Client, completedCutoff, failedCutoff time.Time, zl *zap.Logger) error {
	// Partitioned DML is not bound by the per-transaction mutation limit.
	deleted, err := client.PartitionedUpdate(ctx, retentionStatement("DELETE", completedCutoff, failedCutoff))
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	zl.Info("deleted old outbox events", zap.Int64("count", deleted))
	return nil
}
