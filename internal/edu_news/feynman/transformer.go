package feynman

import (
	"context"
	"fmt"
	"time"

	"edu-news/internal/edu_news/metrics"
	"edu-news/internal/edu_news/model"

	"go.uber.org/zap"
)

const (
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 2000
)

// GenerationError is returned when no provider produced a valid article.
type GenerationError struct {
	PrimaryErr  error
	FallbackErr error // nil when no fallback is configured
}

func (e *GenerationError) Error() string {
	if e.FallbackErr == nil {
		return fmt.Sprintf("feynman generation failed: primary: %v", e.PrimaryErr)
	}
	return fmt.Sprintf("feynman generation failed: primary: %v; fallback: %v", e.PrimaryErr, e.FallbackErr)
}

func (e *GenerationError) Unwrap() []error {
	if e.FallbackErr == nil {
		return []error{e.PrimaryErr}
	}
	return []error{e.PrimaryErr, e.FallbackErr}
}

type Result struct {
	Content  model.FeynmanContent
	Provider string
}

type costEstimator interface {
	Cost(Completion) float64
}

// Transformer asks the primary provider first and the fallback on any primary
// failure, including a payload that does not validate.
type Transformer struct {
	Log         *zap.Logger
	Primary     Provider
	Fallback    Provider // optional
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // per provider call
}

func NewTransformer(log *zap.Logger, primary, fallback Provider) *Transformer {
	return &Transformer{
		Log:         log.With(zap.String("component", "feynman")),
		Primary:     primary,
		Fallback:    fallback,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// BuildRequest is the request both providers receive.
func (t *Transformer) BuildRequest(raw model.RawNews, lang string) Request {
	return Request{
		SystemInstruction: SystemPrompt(lang),
		UserPrompt:        UserPrompt(raw, lang),
		Temperature:       t.Temperature,
		MaxOutputTokens:   t.MaxTokens,
		JSONOutput:        true,
	}
}

func (t *Transformer) Generate(ctx context.Context, raw model.RawNews, lang string) (*Result, error) {
	if t.Primary == nil {
		return nil, &GenerationError{PrimaryErr: fmt.Errorf("no primary provider configured")}
	}
	req := t.BuildRequest(raw, lang)

	content, perr := t.attempt(ctx, t.Primary, req, raw.ID)
	if perr == nil {
		return &Result{Content: content, Provider: t.Primary.Name()}, nil
	}
	if t.Fallback == nil {
		return nil, &GenerationError{PrimaryErr: perr}
	}

	t.Log.Warn("Primary provider failed, falling back",
		zap.String("rawNewsId", raw.ID),
		zap.String("primary", t.Primary.Name()),
		zap.String("fallback", t.Fallback.Name()),
		zap.Error(perr),
	)
	content, ferr := t.attempt(ctx, t.Fallback, req, raw.ID)
	if ferr == nil {
		return &Result{Content: content, Provider: t.Fallback.Name()}, nil
	}

	t.Log.Error("Feynman generation failed",
		zap.String("rawNewsId", raw.ID),
		zap.NamedError("primaryError", perr),
		zap.NamedError("fallbackError", ferr),
	)
	return nil, &GenerationError{PrimaryErr: perr, FallbackErr: ferr}
}

func (t *Transformer) attempt(ctx context.Context, p Provider, req Request, rawID string) (model.FeynmanContent, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	start := time.Now()
	comp, err := p.Complete(ctx, req)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(p.Name(), "provider_error").Inc()
		return model.FeynmanContent{}, fmt.Errorf("%s: %w", p.Name(), err)
	}

	content, err := Validate(comp.Content)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(p.Name(), "invalid").Inc()
		return model.FeynmanContent{}, fmt.Errorf("%s: %w", p.Name(), err)
	}
	metrics.GenerationsTotal.WithLabelValues(p.Name(), "success").Inc()

	fields := []zap.Field{
		zap.String("rawNewsId", rawID),
		zap.String("provider", p.Name()),
		zap.Int("promptTokens", comp.PromptTokens),
		zap.Int("completionTokens", comp.CompletionTokens),
		zap.Duration("took", time.Since(start)),
	}
	if ce, ok := p.(costEstimator); ok {
		fields = append(fields, zap.Float64("costUSD", ce.Cost(comp)))
	}
	t.Log.Info("Generated feynman article", fields...)
	return content, nil
}
