// Package events publishes upload summaries for downstream consumers.
package events

import (
	"context"
	"time"
)

// UploadProcessed summarises a processed upload. It carries counts only,
// never health values.
type UploadProcessed struct {
	UploadID    string         `json:"upload_id"`
	Range       string         `json:"range"`
	RecordCount int            `json:"record_count"`
	Skipped     int            `json:"skipped"`
	Filtered    int            `json:"filtered"`
	TypeCounts  map[string]int `json:"type_counts"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// Publisher delivers upload summaries.
type Publisher interface {
	Publish(ctx context.Context, event UploadProcessed) error
	Close() error
}

// NoopPublisher discards events. It is used when no brokers are configured.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, UploadProcessed) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }
