package event

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"edu-news/internal/edu_news/model"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Needs a running server; set NATS_TEST_URL to enable.
func TestNATSPublisher_PublishCrawlSummary(t *testing.T) {
	url := os.Getenv("NATS_TEST_URL")
	if url == "" {
		t.Skip("NATS_TEST_URL not set")
	}

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("test.crawl", msgs)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	pub, err := NewNATSPublisher(zap.NewNop(), url, "test.crawl")
	require.NoError(t, err)
	defer pub.Close()

	summary := model.CrawlSummary{Success: false, TotalNews: 12, NewNews: 3, Errors: []string{"KR source x: timeout"}}
	require.NoError(t, pub.PublishCrawlSummary(context.Background(), summary))

	select {
	case m := <-msgs:
		var got CrawlCompleted
		require.NoError(t, json.Unmarshal(m.Data, &got))
		assert.Equal(t, summary, got.Summary)
		assert.Equal(t, "edu-news", got.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
