package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/farmcart/farmcart-backend/pkg/logger"
)

type cancelledOrderPurger interface {
	PurgeCancelled(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderPurgeJob deletes cancelled orders once they age past the
// retention window.
type OrderPurgeJob struct {
	orders    cancelledOrderPurger
	retention time.Duration
	logg      *logger.Logger
}

// NewOrderPurgeJob builds the retention sweep.
func NewOrderPurgeJob(orders cancelledOrderPurger, retention time.Duration, logg *logger.Logger) (*OrderPurgeJob, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if retention <= 0 {
		return nil, fmt.Errorf("retention window must be positive")
	}
	return &OrderPurgeJob{orders: orders, retention: retention, logg: logg}, nil
}

// Name implements Job.
func (j *OrderPurgeJob) Name() string {
	return "order-purge"
}

// Run implements Job.
func (j *OrderPurgeJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.retention)
	deleted, err := j.orders.PurgeCancelled(ctx, cutoff)
	if err != nil {
		return err
	}
	if j.logg != nil {
		j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "old cancelled orders purged")
	}
	return nil
}
