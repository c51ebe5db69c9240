package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"einvoice-news/internal/config"
	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/infra/datasource"
	dashUC "einvoice-news/internal/usecase/dashboard"
	datasetUC "einvoice-news/internal/usecase/dataset"
	"einvoice-news/internal/usecase/view"
)

// listFlag collects a repeatable, comma-separated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

func (c *cli) query(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var regions, sources, categories listFlag
	fs.Var(&regions, "region", "region code, repeatable or comma-separated")
	fs.Var(&sources, "source", "source id, repeatable or comma-separated")
	fs.Var(&categories, "category", "category id, repeatable or comma-separated")
	days := fs.Int("days", 0, "only articles from the last N days")
	q := fs.String("q", "", "search text")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := c.requireSession(ctx); err != nil {
		return err
	}

	criteria := entity.FilterCriteria{}.
		WithRegions(regions...).
		WithSources(sources...).
		WithCategories(categories...).
		WithSearch(*q)
	if *days < 0 {
		return &entity.ValidationError{Field: "days", Message: "must be a positive number of days"}
	}
	criteria = criteria.WithTimeRange(*days)

	dash, err := c.dashboard(ctx)
	if err != nil {
		return err
	}
	res, err := dash.Query(criteria)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(c.stdout, res, dash.Dataset(), time.Now())
	return nil
}

// dashboard loads the configured dataset into a fresh service.
func (c *cli) dashboard(ctx context.Context) (*dashUC.Service, error) {
	fetcher, err := newFetcher(c.cfg.Dataset)
	if err != nil {
		return nil, err
	}
	dash := dashUC.NewService(datasetUC.NewLoader(fetcher, datasetUC.WithLogger(c.logger)),
		dashUC.WithLogger(c.logger))
	if err := dash.Init(ctx); err != nil {
		return nil, err
	}
	return dash, nil
}

func newFetcher(cfg config.DatasetConfig) (datasetUC.Fetcher, error) {
	if cfg.Remote() {
		return datasource.NewHTTPFetcher(cfg.BaseURL)
	}
	return datasource.NewDirFetcher(cfg.Dir)
}

func printResult(w io.Writer, res dashUC.Result, ds *entity.Dataset, now time.Time) {
	fmt.Fprintf(w, "%d articles", res.Partitions.Len())
	if !res.LastUpdated.IsZero() {
		fmt.Fprintf(w, ", updated %s", view.FormatRelative(res.LastUpdated, now))
	}
	if res.CrawlStatus != "" {
		fmt.Fprintf(w, ", crawl %s", res.CrawlStatus)
	}
	fmt.Fprintln(w)

	sections := []struct {
		title    string
		articles []entity.Article
	}{
		{"Government", res.Partitions.Government},
		{"News & Analysis", res.Partitions.Other},
		{"Vendors", res.Partitions.Vendor},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "\n%s (%d)\n", s.title, len(s.articles))
		for _, a := range s.articles {
			fmt.Fprintf(w, "  %s %-12s %s [%s]\n",
				ds.Flags.Flag(a.CountryCode()),
				view.FormatDate(a.PublishedAt.Time),
				a.Title,
				a.Source.Name)
		}
	}
}
