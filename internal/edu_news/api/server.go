package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"edu-news/internal/edu_news/feynman"
	"edu-news/internal/edu_news/helper"
	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/metrics"
	"edu-news/internal/edu_news/queue"
	"edu-news/internal/edu_news/store"
	"edu-news/internal/middleware/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Crawler interface {
	CrawlAllNews(ctx context.Context) model.CrawlSummary
}

type Processor interface {
	Process(ctx context.Context, rawID, lang string) (*model.FeynmanArticle, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

type Server struct {
	Log       *zap.Logger
	Store     store.Store
	Crawler   Crawler
	Processor Processor // nil disables generation
	Queue     Enqueuer  // optional
	Now       func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Gin(s.Log), metrics.GinMiddleware())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "edu-news"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/news/today", s.todayNews) // ?category=&country=&status=
	r.GET("/news/:id", s.getNews)
	r.POST("/news/:id/select", s.selectNews)
	r.POST("/news/:id/feynman", s.generate) // ?lang=ko|en

	r.GET("/feynman/:id", s.getFeynman)

	r.POST("/crawl", s.crawl)
	r.GET("/crawl-logs", s.crawlLogs) // ?limit=
	return r
}

func (s *Server) todayNews(c *gin.Context) {
	q := model.NewsQuery{Since: helper.StartOfDay(s.now(), helper.Location())}

	var err error
	if v := c.Query("category"); v != "" {
		if q.Category, err = model.ParseCategory(v); err != nil {
			badRequest(c, err)
			return
		}
	}
	if v := c.Query("country"); v != "" {
		if q.Country, err = model.ParseCountry(v); err != nil {
			badRequest(c, err)
			return
		}
	}
	if v := c.Query("status"); v != "" {
		if q.Status, err = model.ParseStatus(v); err != nil {
			badRequest(c, err)
			return
		}
	}

	out, err := s.Store.TodayNews(c, q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "count": len(out)})
}

func (s *Server) getNews(c *gin.Context) {
	n, err := s.Store.GetRawNews(c, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": n})
}

// selectNews moves a pending article to selected; any other status is a 409.
func (s *Server) selectNews(c *gin.Context) {
	id := c.Param("id")
	lang, ok := queryLang(c)
	if !ok {
		return
	}
	if err := s.Store.UpdateStatus(c, id, model.StatusSelected, model.StatusPending); err != nil {
		s.fail(c, err)
		return
	}

	queued := false
	if s.Queue != nil {
		job := queue.Job{RawNewsID: id, Lang: lang, EnqueuedAt: s.now().UTC()}
		if err := s.Queue.Enqueue(c, job); err != nil {
			s.Log.Error("Enqueue failed", zap.String("rawNewsId", id), zap.Error(err))
		} else {
			queued = true
		}
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": model.StatusSelected, "queued": queued})
}

func (s *Server) generate(c *gin.Context) {
	lang, ok := queryLang(c)
	if !ok {
		return
	}

	if s.Processor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no LLM provider configured"})
		return
	}
	article, err := s.Processor.Process(c, c.Param("id"), lang)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": article})
}

func (s *Server) getFeynman(c *gin.Context) {
	a, err := s.Store.GetFeynman(c, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

func (s *Server) crawl(c *gin.Context) {
	summary := s.Crawler.CrawlAllNews(c.Request.Context())
	c.JSON(http.StatusOK, summary)
}

func (s *Server) crawlLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := s.Store.ListCrawlLogs(c, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

// queryLang validates ?lang=; empty means the article's default.
func queryLang(c *gin.Context) (string, bool) {
	lang := c.Query("lang")
	if lang == "" {
		return "", true
	}
	if _, err := feynman.ParseLanguage(lang); err != nil {
		badRequest(c, err)
		return "", false
	}
	return lang, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) fail(c *gin.Context, err error) {
	var genErr *feynman.GenerationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &genErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
