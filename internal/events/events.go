// Package events publishes dashboard change notifications.
package events

import (
	"context"
	"time"

	"github.com/nexus-dash/nexus/internal/dashboard"
)

// Topic suffixes. Publishers put the configured subject prefix in front.
const (
	TopicSettingsCreated = "settings.created"
	TopicSettingsSaved   = "settings.saved"
)

// SettingsChanged is the payload of both settings topics.
type SettingsChanged struct {
	Key      string             `json:"key"`
	Reason   string             `json:"reason"` // first-run, save, reset or restore
	Document dashboard.Document `json:"document"`
	At       time.Time          `json:"at"`
}

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subject joins prefix and topic.
func Subject(prefix, topic string) string {
	if prefix == "" {
		return topic
	}

	return prefix + "." + topic
}
