package helper

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RawNewsCollName   = "raw_news"
	FeynmanCollName   = "feynman_articles"
	CrawlLogsCollName = "crawl_logs"
)

type Stores struct {
	Client    *mongo.Client
	DB        *mongo.Database
	RawNews   *mongo.Collection
	Feynman   *mongo.Collection
	CrawlLogs *mongo.Collection
}

type MongoOptions struct {
	URI        string // takes precedence over Host
	Host       string
	DBName     string
	Username   string
	Password   string
	AuthSource string
}

func (o MongoOptions) clientOptions() *options.ClientOptions {
	uri := o.URI
	if uri == "" {
		uri = "mongodb://" + o.Host
	}
	opts := options.Client().ApplyURI(uri)
	if o.Username != "" {
		opts.SetAuth(options.Credential{
			Username:   o.Username,
			Password:   o.Password,
			AuthSource: o.AuthSource,
		})
	}
	return opts
}

// ConnectMongo dials, pings and makes sure every collection has its indexes.
func ConnectMongo(ctx context.Context, o MongoOptions) (*Stores, error) {
	cli, err := mongo.Connect(ctx, o.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := cli.Database(o.DBName)
	s := &Stores{
		Client:    cli,
		DB:        db,
		RawNews:   db.Collection(RawNewsCollName),
		Feynman:   db.Collection(FeynmanCollName),
		CrawlLogs: db.Collection(CrawlLogsCollName),
	}
	if err := ensureIndexes(ctx, s); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func MustMongo(ctx context.Context, o MongoOptions) *Stores {
	s, err := ConnectMongo(ctx, o)
	if err != nil {
		panic(err)
	}
	return s
}

func ensureIndexes(ctx context.Context, s *Stores) error {
	// raw_news: url is the dedup key
	_, err := s.RawNews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "crawledAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "country", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("raw_news indexes: %w", err)
	}

	// feynman_articles: one derived article per raw article
	_, err = s.Feynman.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "rawNewsId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("feynman_articles indexes: %w", err)
	}

	_, err = s.CrawlLogs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "crawledAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("crawl_logs indexes: %w", err)
	}
	return nil
}

func (s *Stores) Disconnect(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
