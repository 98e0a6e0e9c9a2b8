package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockChecker re-reads a product's stock when the task runs. The level
// may have recovered since the sale that triggered the check, so the task
// decides on current data, not on the snapshot at enqueue time.
type LowStockChecker struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	threshold int
}

// NewLowStockChecker builds LowStockChecker.
func NewLowStockChecker(pool *pgxpool.Pool, logger *slog.Logger, threshold int) *LowStockChecker {
	return &LowStockChecker{pool: pool, logger: logger, threshold: threshold}
}

// Handle processes TaskTypeLowStockCheck tasks.
func (c *LowStockChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var name string
	var stock int
	err := c.pool.QueryRow(ctx, `SELECT name, stock FROM products WHERE id=$1 AND deleted=FALSE`, payload.ProductID).Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Product deleted in the meantime, nothing to report.
			return asynq.SkipRetry
		}
		return err
	}

	if stock <= c.threshold {
		c.logger.Warn("product low on stock",
			slog.Int64("product_id", payload.ProductID),
			slog.String("name", name),
			slog.Int("stock", stock),
			slog.Int("threshold", c.threshold),
		)
	} else {
		c.logger.Info("product stock recovered",
			slog.Int64("product_id", payload.ProductID),
			slog.Int("stock", stock),
		)
	}
	return nil
}
