package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/farmcart/farmcart-backend/pkg/logger"
)

const expiryBatchSize = 200

type staleOrderExpirer interface {
	ExpireStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// OrderExpiryJob cancels pending orders that sat untouched past the
// configured staleness window, returning their stock.
type OrderExpiryJob struct {
	orders     staleOrderExpirer
	staleAfter time.Duration
	logg       *logger.Logger
}

// NewOrderExpiryJob builds the expiry sweep.
func NewOrderExpiryJob(orders staleOrderExpirer, staleAfter time.Duration, logg *logger.Logger) (*OrderExpiryJob, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if staleAfter <= 0 {
		return nil, fmt.Errorf("stale window must be positive")
	}
	return &OrderExpiryJob{orders: orders, staleAfter: staleAfter, logg: logg}, nil
}

// Name implements Job.
func (j *OrderExpiryJob) Name() string {
	return "order-expiry"
}

// Run implements Job.
func (j *OrderExpiryJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.staleAfter)
	expired, err := j.orders.ExpireStalePending(ctx, cutoff, expiryBatchSize)
	if j.logg != nil && expired > 0 {
		j.logg.Info(j.logg.WithField(ctx, "expired", expired), "stale pending orders cancelled")
	}
	return err
}
