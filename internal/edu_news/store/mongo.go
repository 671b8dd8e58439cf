package store

import (
	"context"
	"errors"
	"fmt"

	"edu-news/internal/edu_news/helper"
	"edu-news/internal/edu_news/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const duplicateKeyCode = 11000

type MongoStore struct {
	stores *helper.Stores
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(s *helper.Stores) *MongoStore {
	return &MongoStore{stores: s}
}

func (m *MongoStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	n, err := m.stores.RawNews.CountDocuments(ctx, bson.M{"url": url}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count raw_news by url: %w", err)
	}
	return n > 0, nil
}

// InsertRawNews issues one unordered InsertMany. Duplicate-key rejections are
// not errors; they just don't count.
func (m *MongoStore) InsertRawNews(ctx context.Context, articles []model.RawNews) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	docs := make([]any, len(articles))
	for i := range articles {
		docs[i] = articles[i]
	}

	_, err := m.stores.RawNews.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(articles), nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return 0, fmt.Errorf("insert raw_news: %w", err)
	}
	failed := 0
	var other []mongo.BulkWriteError
	for _, we := range bwe.WriteErrors {
		failed++
		if we.Code != duplicateKeyCode {
			other = append(other, we)
		}
	}
	inserted := len(articles) - failed
	if len(other) > 0 || bwe.WriteConcernError != nil {
		return inserted, fmt.Errorf("insert raw_news: %w", err)
	}
	return inserted, nil
}

func (m *MongoStore) AppendCrawlLog(ctx context.Context, log model.CrawlLog) error {
	if _, err := m.stores.CrawlLogs.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert crawl_logs: %w", err)
	}
	return nil
}

func (m *MongoStore) TodayNews(ctx context.Context, q model.NewsQuery) ([]model.RawNews, error) {
	filter := bson.M{"crawledAt": bson.M{"$gte": q.Since}}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Country != "" {
		filter["country"] = q.Country
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "crawledAt", Value: -1}}).
		SetLimit(int64(queryLimit(q.Limit)))
	cur, err := m.stores.RawNews.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find raw_news: %w", err)
	}
	out := []model.RawNews{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode raw_news: %w", err)
	}
	return out, nil
}

func (m *MongoStore) GetRawNews(ctx context.Context, id string) (*model.RawNews, error) {
	var n model.RawNews
	err := m.stores.RawNews.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find raw_news %s: %w", id, err)
	}
	return &n, nil
}

func (m *MongoStore) UpdateStatus(ctx context.Context, id string, to model.Status, from ...model.Status) error {
	filter := bson.M{"_id": id}
	if len(from) > 0 {
		filter["status"] = bson.M{"$in": from}
	}
	res, err := m.stores.RawNews.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return fmt.Errorf("update raw_news %s: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if len(from) == 0 {
		return ErrNotFound
	}

	// tell a missing document from one in the wrong state
	n, err := m.stores.RawNews.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count raw_news %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return fmt.Errorf("raw news %s: %w", id, ErrConflict)
}

func (m *MongoStore) ListCrawlLogs(ctx context.Context, limit int) ([]model.CrawlLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "crawledAt", Value: -1}}).
		SetLimit(int64(queryLimit(limit)))
	cur, err := m.stores.CrawlLogs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find crawl_logs: %w", err)
	}
	out := []model.CrawlLog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode crawl_logs: %w", err)
	}
	return out, nil
}

func (m *MongoStore) SaveFeynman(ctx context.Context, a model.FeynmanArticle) error {
	_, err := m.stores.Feynman.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("raw news %s already has an article: %w", a.RawNewsID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert feynman_articles: %w", err)
	}
	return nil
}

func (m *MongoStore) FeynmanByRawNews(ctx context.Context, rawID string) (*model.FeynmanArticle, error) {
	var a model.FeynmanArticle
	err := m.stores.Feynman.FindOne(ctx, bson.M{"rawNewsId": rawID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find feynman_articles by raw %s: %w", rawID, err)
	}
	return &a, nil
}

func (m *MongoStore) GetFeynman(ctx context.Context, id string) (*model.FeynmanArticle, error) {
	var a model.FeynmanArticle
	err := m.stores.Feynman.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find feynman_articles %s: %w", id, err)
	}
	return &a, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.stores.Disconnect(ctx)
}
