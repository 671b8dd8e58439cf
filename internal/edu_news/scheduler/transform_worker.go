package scheduler

import (
	"context"
	"errors"
	"time"

	"edu-news/internal/edu_news/metrics"
	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/queue"

	"go.uber.org/zap"
)

type JobSource interface {
	Pop(ctx context.Context, timeout time.Duration) (queue.Job, error)
}

type Processor interface {
	Process(ctx context.Context, rawID, lang string) (*model.FeynmanArticle, error)
}

// TransformWorker consumes selected articles and generates their derived article.
type TransformWorker struct {
	Log         *zap.Logger
	Queue       JobSource
	Processor   Processor
	PollTimeout time.Duration
	Backoff     time.Duration // wait after a queue error
}

func NewTransformWorker(log *zap.Logger, q JobSource, p Processor) *TransformWorker {
	return &TransformWorker{
		Log:         log.With(zap.String("component", "transform-worker")),
		Queue:       q,
		Processor:   p,
		PollTimeout: 5 * time.Second,
		Backoff:     time.Second,
	}
}

func (w *TransformWorker) errorBackoff() time.Duration {
	if w.Backoff <= 0 {
		return time.Second
	}
	return w.Backoff
}

func (w *TransformWorker) Start(ctx context.Context) {
	w.Log.Info("Worker started. Waiting for jobs...")

	for {
		if ctx.Err() != nil {
			w.Log.Info("Worker shutting down")
			return
		}
		job, err := w.Queue.Pop(ctx, w.PollTimeout)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				w.Log.Info("Worker shutting down")
				return
			}
			w.Log.Error("Queue error", zap.Error(err))
			select {
			case <-ctx.Done():
				w.Log.Info("Worker shutting down")
				return
			case <-time.After(w.errorBackoff()):
			}
			continue
		}

		w.processJob(ctx, job)
	}
}

func (w *TransformWorker) processJob(ctx context.Context, job queue.Job) {
	log := w.Log.With(zap.String("rawNewsId", job.RawNewsID))
	log.Info("Processing started")

	article, err := w.Processor.Process(ctx, job.RawNewsID, job.Lang)
	if err != nil {
		metrics.QueueJobsTotal.WithLabelValues("error").Inc()
		log.Error("Job failed", zap.Error(err))
		return
	}
	metrics.QueueJobsTotal.WithLabelValues("success").Inc()
	log.Info("Processing complete", zap.String("articleId", article.ID), zap.String("title", article.Title))
}
