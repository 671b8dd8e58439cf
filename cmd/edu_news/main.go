package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu-news/internal/edu_news/api"
	"edu-news/internal/edu_news/crawler"
	"edu-news/internal/edu_news/event"
	"edu-news/internal/edu_news/feynman"
	"edu-news/internal/edu_news/helper"
	"edu-news/internal/edu_news/pipeline"
	"edu-news/internal/edu_news/queue"
	"edu-news/internal/edu_news/scheduler"
	"edu-news/internal/edu_news/source"
	"edu-news/internal/edu_news/store"
	"edu-news/internal/middleware/logger"
	"edu-news/pkg/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	log        *zap.Logger
	cfg        *config.Config
	configPath string
	lang       string
)

var rootCmd = &cobra.Command{
	Use:   "edu-news",
	Short: "edu-news - AI and education news crawler with Feynman-style rewrites",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		log, err = logger.NewLogger(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		helper.SetLocation(cfg.Location())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API, the crawl scheduler and the transform worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore(st)

		agg, closeAgg := buildAggregator(st)
		defer closeAgg()

		srv := &api.Server{
			Log:     log.With(zap.String("component", "api")),
			Store:   st,
			Crawler: agg,
		}

		svc, err := buildService(st)
		if err != nil {
			log.Warn("Feynman generation disabled", zap.Error(err))
		} else {
			srv.Processor = svc
		}

		switch {
		case svc == nil:
		case cfg.Redis.Addr != "":
			q, err := queue.NewRedisQueue(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
			if err != nil {
				return err
			}
			defer q.Close()
			srv.Queue = q
			go scheduler.NewTransformWorker(log, q, svc).Start(ctx)
		default:
			log.Info("Redis not configured, selection queue disabled")
		}

		if cfg.Scheduler.Enabled {
			w := &scheduler.Worker{
				Log:        log.With(zap.String("component", "scheduler")),
				Crawler:    agg,
				Location:   cfg.Location(),
				Anchors:    cfg.Scheduler.Anchors,
				MaxRetries: cfg.Scheduler.MaxRetries,
				RetryDelay: cfg.Scheduler.RetryDelay,
			}
			go w.Run(ctx)
		}

		r := srv.Router()
		_ = r.SetTrustedProxies(nil)
		httpSrv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r}
		go func() {
			<-ctx.Done()
			log.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		log.Info("edu-news is running", zap.String("address", cfg.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one aggregation over every feed and print the summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore(st)

		agg, closeAgg := buildAggregator(st)
		defer closeAgg()

		summary := agg.CrawlAllNews(ctx)
		return printJSON(summary)
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform [raw-id]",
	Short: "Generate the Feynman article for one stored raw article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lang != "" {
			if _, err := feynman.ParseLanguage(lang); err != nil {
				return err
			}
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore(st)

		svc, err := buildService(st)
		if err != nil {
			return err
		}
		article, err := svc.Process(ctx, args[0], lang)
		if err != nil {
			return err
		}
		return printJSON(article)
	},
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "badger":
		st, err := store.NewBadgerStore(cfg.Store.Badger.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		m := cfg.Store.Mongo
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		stores, err := helper.ConnectMongo(connectCtx, helper.MongoOptions{
			URI:        m.URI,
			Host:       m.Host,
			DBName:     m.DBName,
			Username:   m.Username,
			Password:   m.Password,
			AuthSource: m.AuthSource,
		})
		if err != nil {
			return nil, err
		}
		return store.NewMongoStore(stores), nil
	}
}

func closeStore(st store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		log.Warn("Failed to close store", zap.Error(err))
	}
}

func buildAggregator(st store.Store) (*pipeline.Aggregator, func()) {
	fetcher := crawler.NewHTTPFetcher(nil, cfg.Crawler.UserAgent, cfg.Crawler.Timeout)

	var countries []pipeline.CountrySource
	for _, reg := range source.Defaults() {
		countries = append(countries, crawler.NewCountryCrawler(log, reg, fetcher, cfg.Crawler.Concurrency))
	}
	agg := pipeline.NewAggregator(log, pipeline.NewGateway(log, st), countries...)

	if cfg.NATS.URL == "" {
		return agg, func() {}
	}
	pub, err := event.NewNATSPublisher(log, cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		log.Warn("NATS unavailable, crawl events disabled", zap.Error(err))
		return agg, func() {}
	}
	agg.Publisher = pub
	return agg, pub.Close
}

func buildService(st store.Store) (*feynman.Service, error) {
	llm := cfg.LLM
	newClient := func(p config.ProviderConfig) *feynman.ChatClient {
		return feynman.NewChatClient(feynman.ChatConfig{
			Name:        p.Name,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			APIKey:      p.APIKey,
			Timeout:     llm.Timeout,
			InputPrice:  p.InputPrice,
			OutputPrice: p.OutputPrice,
		})
	}

	var primary, fallback feynman.Provider
	switch {
	case llm.Primary.Enabled():
		primary = newClient(llm.Primary)
		if llm.Fallback.Enabled() {
			fallback = newClient(llm.Fallback)
		}
	case llm.Fallback.Enabled():
		log.Warn("Primary LLM provider not configured, using fallback only", zap.String("provider", llm.Fallback.Name))
		primary = newClient(llm.Fallback)
	default:
		return nil, fmt.Errorf("no LLM provider configured: set XAI_API_KEY or OPENAI_API_KEY")
	}

	t := feynman.NewTransformer(log, primary, fallback)
	t.Temperature = llm.Temperature
	t.MaxTokens = llm.MaxTokens
	t.Timeout = llm.Timeout
	return feynman.NewService(log, st, t), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file (default $EDU_NEWS_CONFIG, then config/config.yaml)")
	transformCmd.Flags().StringVar(&lang, "lang", "", "Output language (ko|en); defaults from the article's country")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(transformCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
