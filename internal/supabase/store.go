package supabase

import (
	"context"

	"github.com/mrussa/orderhook/internal/orders"
)

type inserter interface {
	Insert(ctx context.Context, table string, payload any) error
}

// Store writes order rows through the PostgREST insert endpoint.
type Store struct {
	c inserter
}

func NewStore(c *Client) *Store {
	return &Store{c: c}
}

func (s *Store) InsertOrder(ctx context.Context, o orders.Order) error {
	return s.c.Insert(ctx, orders.TableOrders, o)
}

func (s *Store) InsertItem(ctx context.Context, it orders.Item) error {
	return s.c.Insert(ctx, orders.TableItems, it)
}
