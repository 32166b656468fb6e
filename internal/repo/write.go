package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/mrussa/orderhook/internal/orders"
)

func (r *OrdersRepo) InsertOrder(ctx context.Context, o orders.Order) error {
	if err := checkOrderID(o.OrderID); err != nil {
		return err
	}
	createdAt, err := tsArg("created_at", o.CreatedAt)
	if err != nil {
		return err
	}
	cancelledAt, err := tsArg("cancelled_at", o.CancelledAt)
	if err != nil {
		return err
	}

	ctxT, cancel := r.withQ(ctx)
	defer cancel()

	if _, err := r.Pool.Exec(ctxT, qInsertOrder,
		o.OrderID, o.OrderNumber, createdAt, o.Customer, o.ShippingName, o.ShippingPhone,
		o.ShippingCountry, o.FulfillmentStatus, o.FinancialStatus, cancelledAt,
	); err != nil {
		return fmt.Errorf("insert order %s: %w", o.OrderID, err)
	}
	return nil
}

func (r *OrdersRepo) InsertItem(ctx context.Context, it orders.Item) error {
	if err := checkOrderID(it.OrderID); err != nil {
		return err
	}

	ctxT, cancel := r.withQ(ctx)
	defer cancel()

	if _, err := r.Pool.Exec(ctxT, qInsertItem,
		it.OrderID, it.Title, it.SIMType, it.SIMNumber, it.Quantity, it.ActivationPlan,
	); err != nil {
		return fmt.Errorf("insert item %s/%q: %w", it.OrderID, it.Title, err)
	}
	return nil
}

func checkOrderID(id string) error {
	if id == "" || len(id) > maxOrderIDLen {
		return ErrBadOrderID
	}
	return nil
}

// tsArg turns a passthrough timestamp into a timestamptz argument; nil stays NULL.
func tsArg(field string, s *string) (any, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrBadTimestamp, field, *s)
	}
	return t.UTC(), nil
}
