package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mrussa/orderhook/internal/orders"
	"github.com/mrussa/orderhook/internal/shopify"
)

type Store interface {
	InsertOrder(ctx context.Context, o orders.Order) error
	InsertItem(ctx context.Context, it orders.Item) error
}

// Publisher is told about every order whose rows were all written.
type Publisher interface {
	Publish(ctx context.Context, o orders.Order, items []orders.Item) error
}

type Result struct {
	Order orders.Order
	Items []orders.Item
}

type Ingester struct {
	Store     Store
	Publisher Publisher
	Logf      func(string, ...any)
}

func New(store Store, pub Publisher, logf func(string, ...any)) *Ingester {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Ingester{Store: store, Publisher: pub, Logf: logf}
}

// Ingest parses a verified webhook body and writes the order followed by its
// items. Items are only attempted once the order row is stored; they are
// written concurrently and a failing item does not stop its siblings. Rows
// already written are never rolled back.
func (in *Ingester) Ingest(ctx context.Context, body []byte) (Result, error) {
	src, err := shopify.ParseOrder(body)
	if err != nil {
		return Result{}, err
	}

	o, items := orders.FromWebhook(src)

	if err := in.Store.InsertOrder(ctx, o); err != nil {
		return Result{}, fmt.Errorf("store order %s: %w", o.OrderID, err)
	}

	var g errgroup.Group
	for _, it := range items {
		g.Go(func() error {
			if err := in.Store.InsertItem(ctx, it); err != nil {
				return fmt.Errorf("store item %q of order %s: %w", it.Title, o.OrderID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if in.Publisher != nil {
		if err := in.Publisher.Publish(ctx, o, items); err != nil {
			in.Logf("[HOOK] publish %s: %v", o.OrderID, err)
		}
	}

	return Result{Order: o, Items: items}, nil
}
