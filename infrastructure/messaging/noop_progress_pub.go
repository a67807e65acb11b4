package messaging

import (
	"context"

	"clipforge/domain/ports"
)

// NoopProgressPublisher discards progress updates. Used when NATS is
// not configured so the pipeline runs without a broker.
type NoopProgressPublisher struct{}

var _ ports.ProgressPublisherPort = (*NoopProgressPublisher)(nil)

func NewNoopProgressPublisher() ports.ProgressPublisherPort {
	return &NoopProgressPublisher{}
}

func (p *NoopProgressPublisher) PublishProgress(ctx context.Context, progress *ports.SegmentProgress) error {
	return nil
}
