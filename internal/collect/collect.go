// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect fetches theme-tagged papers from the OpenAlex works API.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-trends/internal/dataset"
	"github.com/pdiddy/research-trends/internal/httputil"
	"github.com/pdiddy/research-trends/internal/relevance"
	"github.com/pdiddy/research-trends/pkg/types"
)

// worksEndpoint is the OpenAlex works endpoint. Tests point it at an
// httptest server.
var worksEndpoint = "https://api.openalex.org/works"

const (
	// DefaultQueryKeywords is how many theme keywords go into a query.
	DefaultQueryKeywords = 8

	perPage       = 100
	domainTerms   = 8
	selectedField = "id,type,title,abstract_inverted_index,publication_date,publication_year,authorships,primary_location,doi,cited_by_count,concepts"
)

// domainContext steers full-text search toward technical work.
var domainContext = []string{
	"engineering", "technology", "system", "design", "development",
	"application", "implementation", "analysis", "control", "detection",
	"sensor", "hardware", "software", "platform", "infrastructure",
}

// BuildThemeQuery joins the first topN theme keywords with the leading
// domain-context terms. topN <= 0 uses DefaultQueryKeywords.
func BuildThemeQuery(theme types.ThemeDefinition, topN int) string {
	if topN <= 0 {
		topN = DefaultQueryKeywords
	}
	keywords := theme.Keywords
	if len(keywords) > topN {
		keywords = keywords[:topN]
	}
	parts := append(append([]string{}, keywords...), domainContext[:domainTerms]...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Collector pulls works for each theme of a taxonomy.
type Collector struct {
	client  *http.Client
	cfg     types.CollectorConfig
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(col *Collector) { col.client = c }
}

// WithLogger sets the collector's logger.
func WithLogger(l *zap.Logger) Option {
	return func(col *Collector) {
		if l != nil {
			col.log = l
		}
	}
}

// New returns a Collector. Zero config values fall back to one request per
// second and two concurrent themes.
func New(cfg types.CollectorConfig, opts ...Option) *Collector {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Collector{
		client:  &http.Client{Timeout: timeout},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchTheme pages through the works matching one theme's query, up to
// MaxPerTheme papers (0 means no cap).
func (c *Collector) FetchTheme(ctx context.Context, theme types.ThemeDefinition) ([]types.Paper, error) {
	if len(theme.Keywords) == 0 {
		return nil, fmt.Errorf("theme %s has no keywords", theme.Name)
	}
	query := BuildThemeQuery(theme, DefaultQueryKeywords)

	log := c.log.With(zap.String("theme", theme.Name))
	papers := []types.Paper{}
	cursor := "*"
	for cursor != "" {
		page, err := c.fetchPage(ctx, query, cursor)
		if err != nil {
			return papers, fmt.Errorf("fetching %s: %w", theme.Name, err)
		}

		skipped := 0
		for _, w := range page.Results {
			p, ok := parseWork(w, theme.Name)
			if !ok {
				skipped++
				continue
			}
			papers = append(papers, p)
			if c.cfg.MaxPerTheme > 0 && len(papers) >= c.cfg.MaxPerTheme {
				log.Debug("theme cap reached", zap.Int("papers", len(papers)))
				return papers, nil
			}
		}
		log.Debug("page fetched",
			zap.Int("results", len(page.Results)),
			zap.Int("skipped", skipped),
			zap.Int("total", page.Meta.Count),
		)

		if len(page.Results) == 0 {
			break
		}
		cursor = page.Meta.NextCursor
	}
	return papers, nil
}

func (c *Collector) fetchPage(ctx context.Context, query, cursor string) (*worksResponse, error) {
	filters := []string{"is_paratext:false", "type:journal-article"}
	if !c.cfg.StartDate.IsZero() {
		filters = append(filters, "from_publication_date:"+c.cfg.StartDate.Format("2006-01-02"))
	}
	if !c.cfg.EndDate.IsZero() {
		filters = append(filters, "to_publication_date:"+c.cfg.EndDate.Format("2006-01-02"))
	}

	params := url.Values{
		"search":   {query},
		"filter":   {strings.Join(filters, ",")},
		"select":   {selectedField},
		"sort":     {"cited_by_count:desc"},
		"per-page": {strconv.Itoa(perPage)},
		"cursor":   {cursor},
	}
	if c.cfg.Email != "" {
		params.Set("mailto", c.cfg.Email)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, worksEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var page worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return &page, nil
}

// Summary reports what FetchAll kept at each step.
type Summary struct {
	PerTheme     map[string]int
	Fetched      int
	Unique       int
	Relevant     int
	MinRelevance float64
}

// FetchAll fetches every theme (HIGH priority only when PriorityOnly is
// set) with bounded parallelism, merges results in taxonomy order,
// deduplicates, and drops papers under MinRelevance. Any theme failing
// cancels the rest and returns the error.
func (c *Collector) FetchAll(ctx context.Context, taxonomy types.Taxonomy, w io.Writer) ([]types.Paper, Summary, error) {
	themes := taxonomy.Themes
	if c.cfg.PriorityOnly {
		themes = taxonomy.ByPriority(types.PriorityHigh)
	}

	results := make([][]types.Paper, len(themes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, theme := range themes {
		i, theme := i, theme
		g.Go(func() error {
			papers, err := c.FetchTheme(gctx, theme)
			if err != nil {
				return err
			}
			results[i] = papers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{PerTheme: make(map[string]int, len(themes)), MinRelevance: c.cfg.MinRelevance}
	var all []types.Paper
	for i, theme := range themes {
		summary.PerTheme[theme.Name] = len(results[i])
		fmt.Fprintf(w, "fetched %-24s %d papers\n", theme.Name, len(results[i]))
		all = append(all, results[i]...)
	}
	summary.Fetched = len(all)

	unique := dataset.Deduplicate(all)
	summary.Unique = len(unique)

	kept, _ := relevance.NewFilter(taxonomy, c.log).FilterByRelevance(unique, c.cfg.MinRelevance)
	summary.Relevant = len(kept)

	fmt.Fprintf(w, "\nfetched: %d, unique: %d, relevant (>= %.2f): %d\n",
		summary.Fetched, summary.Unique, summary.MinRelevance, summary.Relevant)
	c.log.Info("collection finished",
		zap.Int("fetched", summary.Fetched),
		zap.Int("unique", summary.Unique),
		zap.Int("relevant", summary.Relevant),
	)
	return kept, summary, nil
}
