package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"clipforge/domain/ports"
	"clipforge/pkg/logger"
	"clipforge/pkg/utils"
)

// Connect opens a NATS connection with reconnect handling
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1), // reconnect forever
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// NATSProgressPublisher implements ProgressPublisherPort using NATS Pub/Sub
type NATSProgressPublisher struct {
	conn *nats.Conn
}

var _ ports.ProgressPublisherPort = (*NATSProgressPublisher)(nil)

func NewNATSProgressPublisher(conn *nats.Conn) ports.ProgressPublisherPort {
	return &NATSProgressPublisher{conn: conn}
}

// PublishProgress sends a segment progress update on
// progress.{title-slug}
func (p *NATSProgressPublisher) PublishProgress(ctx context.Context, progress *ports.SegmentProgress) error {
	if progress == nil {
		return fmt.Errorf("progress cannot be nil")
	}
	if progress.ContentTitle == "" {
		return fmt.Errorf("content_title is required")
	}

	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	subject := fmt.Sprintf("progress.%s", utils.SanitizeTitle(progress.ContentTitle))
	return p.conn.Publish(subject, data)
}
