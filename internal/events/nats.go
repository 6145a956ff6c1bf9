package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON encoded events to NATS subjects below a prefix.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to url with automatic reconnects.
func NewNATSPublisher(url, prefix string, opts ...nats.Option) (*NATSPublisher, error) {
	defaults := []nats.Option{
		nats.Name("nexus"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}

	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &NATSPublisher{conn: nc, prefix: prefix}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	return p.conn.Publish(Subject(p.prefix, topic), data) //nolint:wrapcheck
}

// Flush waits until the server processed everything published so far.
func (p *NATSPublisher) Flush() error {
	return p.conn.Flush() //nolint:wrapcheck
}

// Close implements Publisher. Pending messages are flushed first.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain() //nolint:wrapcheck
}
