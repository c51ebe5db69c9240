// Package dashboard holds the currently loaded dataset and answers filter
// queries against it.
//
// The dataset is swapped atomically: a reload either publishes a complete new
// snapshot or leaves the previous one in place, so readers never observe a
// partial load.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/observability/metrics"
	"einvoice-news/internal/usecase/filter"
	"einvoice-news/internal/usecase/view"
)

// DatasetLoader builds a complete dataset snapshot.
type DatasetLoader interface {
	Load(ctx context.Context) (*entity.Dataset, error)
}

// ReloadResult describes the article counts around a reload.
type ReloadResult struct {
	Old   int `json:"old"`
	New   int `json:"new"`
	Delta int `json:"delta"`
}

// Result is one projected query answer.
type Result struct {
	Criteria         entity.FilterCriteria `json:"criteria"`
	HasActiveFilters bool                  `json:"hasActiveFilters"`
	Articles         []entity.Article      `json:"articles"`
	Partitions       view.Partitions       `json:"partitions"`
	Countries        []view.CountryGroup   `json:"countries"`
	LastUpdated      time.Time             `json:"lastUpdated"`
	CrawlStatus      string                `json:"crawlStatus"`
}

// Service owns the current dataset.
type Service struct {
	loader DatasetLoader
	now    func() time.Time
	logger *slog.Logger

	current  atomic.Pointer[entity.Dataset]
	loading  atomic.Bool
	reloadMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for the recency filter.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a service with no dataset loaded.
func NewService(loader DatasetLoader, opts ...Option) *Service {
	s := &Service{
		loader: loader,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init performs the first load.
func (s *Service) Init(ctx context.Context) error {
	_, err := s.Reload(ctx)
	return err
}

// Reload loads a new dataset and publishes it. On failure the previous dataset
// stays current. Concurrent reloads run one after another.
func (s *Service) Reload(ctx context.Context) (ReloadResult, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.loading.Store(true)
	defer s.loading.Store(false)

	old := s.current.Load().ArticleCount()
	ds, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "dataset reload failed, keeping previous dataset",
			slog.Int("articles", old),
			slog.Any("error", err))
		return ReloadResult{}, err
	}
	s.current.Store(ds)

	res := ReloadResult{Old: old, New: ds.ArticleCount()}
	res.Delta = res.New - res.Old
	s.logger.InfoContext(ctx, "dataset published",
		slog.Int("old", res.Old),
		slog.Int("new", res.New),
		slog.Int("delta", res.Delta))
	return res, nil
}

// Dataset returns the current snapshot, or nil before the first load.
func (s *Service) Dataset() *entity.Dataset {
	return s.current.Load()
}

// Loading reports whether a reload is in progress.
func (s *Service) Loading() bool {
	return s.loading.Load()
}

// Query filters the current dataset and projects the result into sections.
// It returns entity.ErrNotLoaded before the first successful load.
func (s *Service) Query(c entity.FilterCriteria) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	ds := s.current.Load()
	if ds == nil {
		return Result{}, entity.ErrNotLoaded
	}

	articles := filter.Apply(ds.News.Articles, c, s.now())
	metrics.RecordFilterResult(len(articles))

	parts := view.Partition(articles)
	return Result{
		Criteria:         c,
		HasActiveFilters: c.HasActiveFilters(),
		Articles:         articles,
		Partitions:       parts,
		Countries:        view.GovernmentCountries(parts.Government, ds.Flags),
		LastUpdated:      ds.News.LastUpdated.Time,
		CrawlStatus:      ds.News.CrawlStatus,
	}, nil
}

// Clear resets every criterion and returns the all-pass result.
func (s *Service) Clear(c entity.FilterCriteria) (Result, error) {
	return s.Query(c.Clear())
}

// Country returns the government articles for one country code under the
// given criteria. The empty code selects articles without a country.
func (s *Service) Country(c entity.FilterCriteria, code string) ([]entity.Article, error) {
	res, err := s.Query(c)
	if err != nil {
		return nil, err
	}
	return view.ByCountry(res.Partitions.Government, code), nil
}
