package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	catalogmodel "probrowse/internal/catalog/model"
	"probrowse/internal/common/mq"
)

// CatalogRefreshPublisher announces finished catalog syncs.
type CatalogRefreshPublisher struct {
	queue mq.MessageQueue
	topic string
}

// NewCatalogRefreshPublisher creates a new refresh event publisher.
func NewCatalogRefreshPublisher(queue mq.MessageQueue, topic string) *CatalogRefreshPublisher {
	return &CatalogRefreshPublisher{queue: queue, topic: topic}
}

// PublishRefreshed publishes a refresh event naming the resources that
// were replaced.
func (p *CatalogRefreshPublisher) PublishRefreshed(ctx context.Context, resources []string, syncedAt time.Time) error {
	if p == nil || p.queue == nil {
		return errors.New("refresh publisher is nil")
	}
	if p.topic == "" {
		return errors.New("refresh topic is empty")
	}
	event := catalogmodel.CatalogRefreshEvent{
		EventType: catalogmodel.CatalogRefreshedEvent,
		Resources: resources,
		SyncedAt:  syncedAt.UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal refresh event failed: %w", err)
	}
	message := mq.NewMessage(payload)
	message.ID = fmt.Sprintf("catalog-refresh-%d", syncedAt.UnixNano())
	if err := p.queue.Publish(ctx, p.topic, message); err != nil {
		return fmt.Errorf("publish refresh event failed: %w", err)
	}
	return nil
}
