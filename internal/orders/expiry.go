package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/farmcart/farmcart-backend/pkg/enums"
	pkgerrors "github.com/farmcart/farmcart-backend/pkg/errors"
	"github.com/farmcart/farmcart-backend/pkg/outbox"
	"github.com/farmcart/farmcart-backend/pkg/types"
)

// OrderExpiredEvent is emitted when the expiry sweep cancels a stale order.
type OrderExpiredEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	PendingFor string    `json:"pending_for"`
}

// ExpireStalePending cancels pending orders created before the cutoff,
// restoring their stock. Each order is handled in its own transaction so
// one bad row does not abort the sweep; failed rows are retried on the
// next cycle and their errors returned combined.
func (s *service) ExpireStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.repo.FindPendingOrdersBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stale orders")
	}

	expired := 0
	var sweepErr error
	for _, order := range stale {
		if err := s.expireOne(ctx, order.ID); err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "expire order failed", err)
			}
			sweepErr = multierr.Append(sweepErr, err)
			continue
		}
		expired++
		s.cache.Invalidate(ctx, order.ID.String())
	}
	return expired, sweepErr
}

func (s *service) expireOne(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if order.Status != enums.OrderStatusPending {
			return nil
		}

		backfillSellerStatuses(order)
		if err := s.inventory.RestockAll(ctx, tx, adjustments(order.Items)); err != nil {
			return err
		}

		now := time.Now().UTC()
		for key := range order.PerSellerStatus {
			order.PerSellerStatus[key] = enums.OrderStatusCancelled
		}
		order.StatusHistory = append(order.StatusHistory, types.StatusHistoryEntry{
			Status: enums.OrderStatusCancelled,
			At:     now,
			Note:   "expired by stale order sweep",
		})
		order.Status = enums.OrderStatusCancelled

		applied, err := repo.UpdateOrderGuarded(ctx, order, order.Version)
		if err != nil {
			return err
		}
		if !applied {
			return errVersionConflict
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderExpired,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: OrderExpiredEvent{
				OrderID:    order.ID,
				BuyerID:    order.BuyerID,
				PendingFor: now.Sub(order.CreatedAt).Round(time.Minute).String(),
			},
		})
	})
}

// PurgeCancelled removes cancelled orders older than the cutoff. Cached
// snapshots of purged orders age out on their own TTL.
func (s *service) PurgeCancelled(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := s.repo.DeleteCancelledBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge cancelled orders")
	}
	return deleted, nil
}
