package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu-news/internal/edu_news/metrics"
	"edu-news/internal/edu_news/model"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const DefaultCrawlSubject = "news.crawl.completed"

// CrawlCompleted is the message published after every aggregation run.
type CrawlCompleted struct {
	Summary   model.CrawlSummary `json:"summary"`
	Timestamp time.Time          `json:"timestamp"`
	Source    string             `json:"source"`
	Version   string             `json:"version"`
}

// NATSPublisher publishes crawl summaries to NATS.
type NATSPublisher struct {
	log     *zap.Logger
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(log *zap.Logger, url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("edu-news"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return NewNATSPublisherFromConn(log, nc, subject), nil
}

func NewNATSPublisherFromConn(log *zap.Logger, nc *nats.Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultCrawlSubject
	}
	return &NATSPublisher{
		log:     log.With(zap.String("component", "nats")),
		conn:    nc,
		subject: subject,
	}
}

func (p *NATSPublisher) PublishCrawlSummary(_ context.Context, s model.CrawlSummary) error {
	data, err := json.Marshal(CrawlCompleted{
		Summary:   s,
		Timestamp: time.Now().UTC(),
		Source:    "edu-news",
		Version:   "1.0",
	})
	if err != nil {
		return err
	}

	err = p.conn.Publish(p.subject, data)
	metrics.NatsMessagesPublished.WithLabelValues(p.subject, metrics.Status(err)).Inc()
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	p.log.Debug("Published crawl summary", zap.String("subject", p.subject))
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
