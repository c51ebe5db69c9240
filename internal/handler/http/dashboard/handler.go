// Package dashboard serves the filtered article list, the sectioned views and
// the dataset metadata.
package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"einvoice-news/internal/common/pagination"
	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/handler/http/pathutil"
	"einvoice-news/internal/handler/http/respond"
	"einvoice-news/internal/observability/logging"
	"einvoice-news/internal/usecase/view"
	dashuc "einvoice-news/internal/usecase/dashboard"
)

// Service is the dashboard use case as the handlers use it.
type Service interface {
	Query(c entity.FilterCriteria) (dashuc.Result, error)
	Clear(c entity.FilterCriteria) (dashuc.Result, error)
	Country(c entity.FilterCriteria, code string) ([]entity.Article, error)
	Dataset() *entity.Dataset
	Loading() bool
}

// Handler groups the dashboard endpoints.
type Handler struct {
	Svc        Service
	Pagination pagination.Config
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h Handler) logger(r *http.Request) *slog.Logger {
	l := h.Logger
	if l == nil {
		l = slog.Default()
	}
	return logging.WithRequestID(r.Context(), l)
}

// Articles lists the filtered articles, newest first.
// @Summary      Filtered articles
// @Description  Applies region, source, category, time range and search filters and returns one page of articles, newest first.
// @Tags         dashboard
// @Produce      json
// @Param        region    query  []string  false  "Region codes (repeat or comma-separate)"  collectionFormat(multi)
// @Param        source    query  []string  false  "Source ids"  collectionFormat(multi)
// @Param        category  query  []string  false  "Category ids, any match"  collectionFormat(multi)
// @Param        days      query  int       false  "Only articles from the last N days"  minimum(1)
// @Param        q         query  string    false  "Case-insensitive search over title, summary, country and source"
// @Param        page      query  int       false  "Page number (1-based)"  default(1)  minimum(1)
// @Param        limit     query  int       false  "Items per page"  default(20)  minimum(1)  maximum(100)
// @Success      200  {object}  ArticlesResponse
// @Failure      400  {object}  respond.ErrorBody
// @Failure      401  {object}  respond.ErrorBody  "Login required"
// @Failure      503  {object}  respond.ErrorBody  "Dataset not loaded"
// @Router       /api/articles [get]
func (h Handler) Articles(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	params, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.Query(c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, ok := h.presenter(w)
	if !ok {
		return
	}

	page := pagination.Map(pagination.Paginate(res.Articles, params), p.article)
	respond.JSON(w, http.StatusOK, ArticlesResponse{
		Response:         page,
		Criteria:         res.Criteria,
		HasActiveFilters: res.HasActiveFilters,
		LastUpdated:      res.LastUpdated,
		CrawlStatus:      res.CrawlStatus,
	})
}

// Views returns the filtered articles split into sections.
// @Summary      Sectioned view
// @Description  Same filters as /api/articles; the result is split into government, other and vendor sections with the government countries.
// @Tags         dashboard
// @Produce      json
// @Param        region    query  []string  false  "Region codes"  collectionFormat(multi)
// @Param        source    query  []string  false  "Source ids"  collectionFormat(multi)
// @Param        category  query  []string  false  "Category ids"  collectionFormat(multi)
// @Param        days      query  int       false  "Only articles from the last N days"
// @Param        q         query  string    false  "Search text"
// @Success      200  {object}  ViewsResponse
// @Failure      400  {object}  respond.ErrorBody
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/views [get]
func (h Handler) Views(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.Svc.Query(c)
	h.writeViews(w, r, res, err)
}

// ClearFilters resets every filter and returns the all-pass view.
// @Summary      Clear filters
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  ViewsResponse
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/filters/clear [post]
func (h Handler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	c, _ := ParseCriteria(r)
	res, err := h.Svc.Clear(c)
	h.writeViews(w, r, res, err)
}

// Country lists the government articles of one country.
// @Summary      Government articles by country
// @Description  Use "_" as the code for articles without a country.
// @Tags         dashboard
// @Produce      json
// @Param        code  path  string  true  "Country code or _"
// @Success      200  {object}  CountryResponse
// @Failure      400  {object}  respond.ErrorBody
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/views/countries/{code} [get]
func (h Handler) Country(w http.ResponseWriter, r *http.Request) {
	code, err := pathutil.ParseCountryCode(r.PathValue("code"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := ParseCriteria(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	articles, err := h.Svc.Country(c, code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, ok := h.presenter(w)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, CountryResponse{
		Code:     code,
		Flag:     p.flags.Flag(code),
		Articles: p.articles(articles),
	})
}

// Meta describes the loaded dataset.
// @Summary      Dataset metadata
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  MetaResponse
// @Failure      503  {object}  respond.ErrorBody
// @Router       /api/meta [get]
func (h Handler) Meta(w http.ResponseWriter, r *http.Request) {
	ds := h.Svc.Dataset()
	if ds == nil {
		h.fail(w, r, entity.ErrNotLoaded)
		return
	}
	respond.JSON(w, http.StatusOK, MetaResponse{
		Regions:             ds.Regions,
		Sources:             ds.Sources,
		Categories:          ds.Categories,
		LastUpdated:         ds.News.LastUpdated.Time,
		LastUpdatedRelative: relativeOrEmpty(ds.News.LastUpdated.Time, h.now()),
		CrawlStatus:         ds.News.CrawlStatus,
		TotalArticles:       ds.ArticleCount(),
		LoadedAt:            ds.LoadedAt,
		Loading:             h.Svc.Loading(),
	})
}

func (h Handler) writeViews(w http.ResponseWriter, r *http.Request, res dashuc.Result, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, ok := h.presenter(w)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, ViewsResponse{
		Criteria:         res.Criteria,
		HasActiveFilters: res.HasActiveFilters,
		Total:            res.Partitions.Len(),
		Government:       p.articles(res.Partitions.Government),
		Other:            p.articles(res.Partitions.Other),
		Vendor:           p.articles(res.Partitions.Vendor),
		Countries:        res.Countries,
		LastUpdated:      res.LastUpdated,
		CrawlStatus:      res.CrawlStatus,
	})
}

// presenter snapshots the dataset for DTO conversion. A reload between Query
// and this call only changes category names and flags, never the articles.
func (h Handler) presenter(w http.ResponseWriter) (presenter, bool) {
	ds := h.Svc.Dataset()
	if ds == nil {
		respond.JSON(w, http.StatusServiceUnavailable, respond.ErrorBody{Error: entity.ErrNotLoaded.Error()})
		return presenter{}, false
	}
	return newPresenter(ds, h.now()), true
}

func (h Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrNotLoaded):
		respond.JSON(w, http.StatusServiceUnavailable, respond.ErrorBody{Error: err.Error()})
	case errors.Is(err, entity.ErrInvalidInput):
		respond.SafeError(w, http.StatusBadRequest, err)
	default:
		h.logger(r).Error("dashboard query failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

func relativeOrEmpty(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return view.FormatRelative(t, now)
}
