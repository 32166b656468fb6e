package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mrussa/orderhook/internal/orders"
)

const (
	EventOrderStored = "order.stored"

	batchTimeout = 10 * time.Millisecond
	writeTimeout = 2 * time.Second
	maxAttempts  = 2

	// Publishing happens before the webhook is answered and Shopify gives up
	// after 5s, so a stuck broker must not hold the response past this.
	publishTimeout = 2 * time.Second
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var newWriter = func(brokers []string, topic string) writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		MaxAttempts:            maxAttempts,
		AllowAutoTopicCreation: false,
	}
}

// OrderStored is published once the order and all its items are written, so
// the fulfilment side knows which rows still need a sim_number.
type OrderStored struct {
	Event       string        `json:"event"`
	OrderID     string        `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	Items       []orders.Item `json:"items"`
	StoredAt    time.Time     `json:"stored_at"`
}

type Publisher struct {
	Brokers []string
	Topic   string

	w       writer
	Logf    func(string, ...any)
	Now     func() time.Time
	Timeout time.Duration
}

func NewPublisher(brokersCSV, topic string, logf func(string, ...any)) *Publisher {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	brokers := splitCSV(brokersCSV)
	return &Publisher{
		Brokers: brokers,
		Topic:   topic,
		w:       newWriter(brokers, topic),
		Logf:    logf,
		Now:     func() time.Time { return time.Now().UTC() },
		Timeout: publishTimeout,
	}
}

func (p *Publisher) Publish(ctx context.Context, o orders.Order, items []orders.Item) error {
	ev := OrderStored{
		Event:       EventOrderStored,
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		Items:       items,
		StoredAt:    p.Now(),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	msg := kafka.Message{Key: []byte(o.OrderID), Value: b}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", p.Topic, err)
	}
	p.Logf("[KAFKA] published %s %s (items=%d)", EventOrderStored, o.OrderID, len(items))
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
