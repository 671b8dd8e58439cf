package feynman

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service turns a stored raw article into a stored draft FeynmanArticle.
type Service struct {
	Log         *zap.Logger
	Store       store.Store
	Transformer *Transformer
	Now         func() time.Time
}

func NewService(log *zap.Logger, st store.Store, t *Transformer) *Service {
	return &Service{
		Log:         log.With(zap.String("component", "feynman-service")),
		Store:       st,
		Transformer: t,
		Now:         time.Now,
	}
}

// transformable are the raw statuses Process accepts.
var transformable = []model.Status{model.StatusPending, model.StatusSelected}

// Process generates the derived article for rawID. lang "" uses the
// article's country default. Nothing is stored when generation fails.
// A raw article gets at most one derived article; a second call returns
// store.ErrConflict without calling any provider.
func (s *Service) Process(ctx context.Context, rawID, lang string) (*model.FeynmanArticle, error) {
	raw, err := s.Store.GetRawNews(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("load raw news %s: %w", rawID, err)
	}
	if !slices.Contains(transformable, raw.Status) {
		return nil, fmt.Errorf("raw news %s is %s: %w", rawID, raw.Status, store.ErrConflict)
	}
	existing, err := s.Store.FeynmanByRawNews(ctx, rawID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("raw news %s already has article %s: %w", rawID, existing.ID, store.ErrConflict)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("look up article for %s: %w", rawID, err)
	}
	if lang == "" {
		lang = raw.Country.Language()
	}

	res, err := s.Transformer.Generate(ctx, *raw, lang)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	article := model.FeynmanArticle{
		ID:              uuid.NewString(),
		RawNewsID:       raw.ID,
		FeynmanContent:  res.Content,
		Slug:            Slug(res.Content.Title, raw.ID),
		MetaDescription: MetaDescription(res.Content.Summary, res.Content.Content),
		Language:        lang,
		Provider:        res.Provider,
		CreatedAt:       now().UTC(),
		Status:          model.ArticleDraft,
	}
	if err := s.Store.SaveFeynman(ctx, article); err != nil {
		return nil, fmt.Errorf("save feynman article: %w", err)
	}

	if err := s.Store.UpdateStatus(ctx, raw.ID, model.StatusProcessed, transformable...); err != nil {
		s.Log.Warn("Failed to mark raw news processed",
			zap.String("rawNewsId", raw.ID),
			zap.Error(err),
		)
	}
	s.Log.Info("Stored feynman article",
		zap.String("id", article.ID),
		zap.String("rawNewsId", raw.ID),
		zap.String("provider", res.Provider),
		zap.String("lang", lang),
	)
	return &article, nil
}
