package events

import "context"

// NoopPublisher drops every event. Used when no NATS url is configured.
type NoopPublisher struct{}

var _ Publisher = (*NoopPublisher)(nil)

// Publish implements Publisher.
func (n *NoopPublisher) Publish(context.Context, string, any) error {
	return nil
}

// Close implements Publisher.
func (n *NoopPublisher) Close() error {
	return nil
}

// New returns a NATSPublisher for url, or a NoopPublisher when url is empty.
func New(url, prefix string) (Publisher, error) {
	if url == "" {
		return &NoopPublisher{}, nil
	}

	return NewNATSPublisher(url, prefix)
}
