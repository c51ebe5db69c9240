package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/observability/metrics"
	"einvoice-news/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Document names as published next to each other.
const (
	NewsDocument    = "news.json"
	RegionsDocument = "regions.json"
	SourcesDocument = "sources.json"
)

// Documents lists every document a load needs.
var Documents = []string{NewsDocument, RegionsDocument, SourcesDocument}

// Fetcher returns the raw bytes of a named document.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, name string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

// Loader fetches the three documents concurrently and builds a Dataset.
type Loader struct {
	fetcher Fetcher
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock overrides the clock used for Dataset.LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader reading documents from fetcher.
func NewLoader(fetcher Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and decodes news, regions and sources in parallel. Any failure
// cancels the remaining fetches and returns a *LoadError naming the document.
func (l *Loader) Load(ctx context.Context) (*entity.Dataset, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "dataset.Load")
	defer span.End()

	start := time.Now()
	var (
		news    entity.NewsData
		regions entity.RegionsData
		sources entity.SourcesData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.fetchInto(gctx, NewsDocument, &news) })
	g.Go(func() error { return l.fetchInto(gctx, RegionsDocument, &regions) })
	g.Go(func() error { return l.fetchInto(gctx, SourcesDocument, &sources) })

	if err := g.Wait(); err != nil {
		metrics.RecordDatasetLoad(false, time.Since(start), 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "dataset load failed")
		l.logger.ErrorContext(ctx, "dataset load failed", slog.Any("error", err))
		return nil, err
	}

	if news.TotalArticles == 0 {
		news.TotalArticles = len(news.Articles)
	}
	l.reportInvalid(ctx, news.Articles)

	ds := &entity.Dataset{
		News:       news,
		Regions:    regions.Regions,
		Sources:    sources.Sources,
		Categories: sources.Categories,
		Flags:      entity.NewFlagLookup(regions.Regions),
		LoadedAt:   l.now(),
	}

	metrics.RecordDatasetLoad(true, time.Since(start), ds.ArticleCount())
	span.SetAttributes(
		attribute.Int("dataset.articles", ds.ArticleCount()),
		attribute.Int("dataset.regions", len(ds.Regions)),
		attribute.Int("dataset.sources", len(ds.Sources)),
	)
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("articles", ds.ArticleCount()),
		slog.Int("regions", len(ds.Regions)),
		slog.Int("sources", len(ds.Sources)),
		slog.Int("categories", len(ds.Categories)),
		slog.String("crawl_status", news.CrawlStatus),
		slog.Duration("duration", time.Since(start)))
	return ds, nil
}

func (l *Loader) fetchInto(ctx context.Context, name string, dst any) error {
	start := time.Now()
	raw, err := l.fetcher.Fetch(ctx, name)
	metrics.RecordDocumentFetch(name, time.Since(start))
	if err != nil {
		return &LoadError{Document: name, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &LoadError{Document: name, Err: ErrEmptyDocument}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &LoadError{Document: name, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// reportInvalid logs structurally broken articles. They are still served.
func (l *Loader) reportInvalid(ctx context.Context, articles []entity.Article) {
	invalid := 0
	for _, a := range articles {
		if err := entity.ValidateArticle(a); err != nil {
			invalid++
			l.logger.DebugContext(ctx, "article failed validation",
				slog.String("id", a.ID),
				slog.String("error", err.Error()))
		}
	}
	if invalid > 0 {
		l.logger.WarnContext(ctx, "dataset contains invalid articles",
			slog.Int("invalid", invalid),
			slog.Int("total", len(articles)))
	}
}
