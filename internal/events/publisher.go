// Package events publishes run summaries to NATS for downstream consumers
// (dashboards, uploaders). Publishing is best effort and optional.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/reportgen/internal/generate"
)

// Publisher delivers run summaries somewhere. Implementations must be safe
// to call after each generation cycle.
type Publisher interface {
	PublishRunCompleted(summary *generate.RunSummary) error
	Close() error
}

// NATSPublisher publishes run summaries to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher initialized", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// PublishRunCompleted publishes one run summary as JSON.
func (p *NATSPublisher) PublishRunCompleted(summary *generate.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}
	slog.Debug("Published run summary", "run_id", summary.RunID, "generated", summary.Generated)
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
