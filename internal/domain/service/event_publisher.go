package service

import (
	"context"
	"time"
)

// Asset event types.
const (
	EventAssetCreated  = "asset.created"
	EventAssetUpdated  = "asset.updated"
	EventAssetDeleted  = "asset.deleted"
	EventAssetScanned  = "asset.scanned"
	EventTagGenerated  = "tag.generated"
	EventReportCreated = "report.exported"
)

// AssetEvent is published after the backend confirmed a change.
type AssetEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	Type       string    `json:"type"`
	AssetID    string    `json:"asset_id,omitempty"`
	TagID      string    `json:"tag_id,omitempty"`
	TagKind    string    `json:"tag_kind,omitempty"`
	Artifact   string    `json:"artifact,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAssetEvent publishes an asset event for downstream consumers
	PublishAssetEvent(ctx context.Context, event *AssetEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
