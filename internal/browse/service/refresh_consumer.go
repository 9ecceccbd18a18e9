package service

import (
	"context"
	"encoding/json"
	"errors"

	catalogmodel "probrowse/internal/catalog/model"
	"probrowse/internal/common/mq"
	"probrowse/pkg/utils/logger"

	"go.uber.org/zap"
)

// CatalogRefreshConsumer drops listing caches when the sync service
// announces a refreshed catalog.
type CatalogRefreshConsumer struct {
	mqClient mq.MessageQueue
	browse   *BrowseService
}

// NewCatalogRefreshConsumer creates a refresh consumer.
func NewCatalogRefreshConsumer(mqClient mq.MessageQueue, browse *BrowseService) *CatalogRefreshConsumer {
	return &CatalogRefreshConsumer{mqClient: mqClient, browse: browse}
}

// Subscribe registers the refresh handler and starts consuming.
func (c *CatalogRefreshConsumer) Subscribe(ctx context.Context, topic, consumerGroup string) error {
	if c == nil || c.mqClient == nil {
		return errors.New("message queue is nil")
	}
	if topic == "" {
		return errors.New("refresh topic is required")
	}
	options := &mq.SubscribeOptions{ConsumerGroup: consumerGroup}
	if err := c.mqClient.SubscribeWithOptions(ctx, topic, c.handleMessage, options); err != nil {
		return err
	}
	return c.mqClient.Start()
}

// HandleMessage processes one refresh event message.
func (c *CatalogRefreshConsumer) HandleMessage(ctx context.Context, message *mq.Message) error {
	return c.handleMessage(ctx, message)
}

func (c *CatalogRefreshConsumer) handleMessage(ctx context.Context, message *mq.Message) error {
	var event catalogmodel.CatalogRefreshEvent
	if err := json.Unmarshal(message.Body, &event); err != nil {
		logger.Warn(ctx, "parse refresh event failed", zap.Error(err))
		return nil
	}
	if event.EventType != catalogmodel.CatalogRefreshedEvent {
		return nil
	}
	logger.Info(ctx, "catalog refreshed, dropping caches",
		zap.Strings("resources", event.Resources),
		zap.Time("synced_at", event.SyncedAt),
	)
	c.browse.InvalidateCatalogCaches(ctx)
	return nil
}
