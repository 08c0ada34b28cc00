// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains relevance filtering, theme mapping, trend
// analysis, and emergingness scoring over one paper dataset and writes the
// resulting artifacts.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-trends/internal/dataset"
	"github.com/pdiddy/research-trends/internal/emerging"
	"github.com/pdiddy/research-trends/internal/relevance"
	"github.com/pdiddy/research-trends/internal/store"
	"github.com/pdiddy/research-trends/internal/taxonomy"
	"github.com/pdiddy/research-trends/internal/thememap"
	"github.com/pdiddy/research-trends/internal/topicmodel"
	"github.com/pdiddy/research-trends/internal/trend"
	"github.com/pdiddy/research-trends/pkg/types"
)

// Artifact file names written into the output directory.
const (
	MappingFile    = "topic_mapping.json"
	CrossThemeFile = "cross_theme_topics.json"
	TrendJSONFile  = "trend_analysis.json"
	TrendYAMLFile  = "trend_analysis.yaml"
	EmergingFile   = "emerging_topics.json"
)

// Deps are the optional collaborators of a run.
type Deps struct {
	// Store records the run, the papers, and the mapping, and caches labels.
	Store *store.Store

	// Generator produces topic labels; nil uses keyword fallbacks.
	Generator emerging.Generator

	Logger *zap.Logger

	// Out receives progress lines; nil discards them.
	Out io.Writer
}

// Result summarises a completed run.
type Result struct {
	RunID      string
	Relevance  relevance.FilterSummary
	Mapping    types.ThemeMapping
	CrossTheme []types.CrossThemeTopic
	Trends     types.TrendBundle
	Emerging   []types.EmergingTopicRecord
	Outputs    []string
}

// Run executes the analysis end to end. When deps.Store is set the run is
// recorded there, including failures.
func Run(ctx context.Context, cfg types.PipelineConfig, deps Deps) (res *Result, err error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w := deps.Out
	if w == nil {
		w = io.Discard
	}

	mapperOpts, err := MapperOptions(cfg.Mapping, log)
	if err != nil {
		return nil, err
	}
	weights, err := WeightsOf(cfg.Emerging)
	if err != nil {
		return nil, err
	}

	res = &Result{}
	if deps.Store != nil {
		if res.RunID, err = deps.Store.BeginRun(ctx); err != nil {
			return nil, err
		}
		log = log.With(zap.String("run", res.RunID))
		defer func() {
			rr := store.RunResult{
				Papers:   res.Relevance.After,
				Topics:   len(res.Mapping),
				Emerging: len(res.Emerging),
				Err:      err,
			}
			if ferr := deps.Store.FinishRun(context.WithoutCancel(ctx), res.RunID, rr); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return res, err
	}

	papers, err := dataset.Load(cfg.PapersPath)
	if err != nil {
		return res, err
	}
	fmt.Fprintf(w, "loaded %d papers from %s\n", len(papers), cfg.PapersPath)

	papers, res.Relevance = relevance.NewFilter(tax, log).FilterByRelevance(papers, cfg.Relevance.MinScore)
	fmt.Fprintf(w, "relevance >= %.2f: kept %d of %d\n", cfg.Relevance.MinScore, res.Relevance.After, res.Relevance.Before)

	model, err := topicmodel.Load(cfg.TopicModelPath)
	if err != nil {
		return res, err
	}

	mapper := thememap.New(tax, mapperOpts...)
	res.Mapping, err = mapper.CreateThemeMapping(model)
	if err != nil {
		return res, err
	}
	crossThreshold := cfg.Mapping.CrossThemeThreshold
	if crossThreshold <= 0 {
		crossThreshold = thememap.DefaultCrossThemeThreshold
	}
	res.CrossTheme = mapper.IdentifyCrossThemeTopics(res.Mapping, crossThreshold)
	fmt.Fprintf(w, "mapped %d topics (%d cross-theme)\n", len(res.Mapping), len(res.CrossTheme))

	papers = AssignThemes(papers, res.Mapping)

	res.Trends = trend.New(res.Mapping, tax, trend.WithLogger(log)).
		Bundle(papers, cfg.Trend.EmergingThreshold, cfg.Trend.RecentQuarters)
	fmt.Fprintf(w, "trend analysis: %d themes, %d emerging topics\n", len(res.Trends.ThemeTrends), len(res.Trends.EmergingTopics))

	scorer := emerging.New(papers, res.Mapping, emerging.WithWeights(weights), emerging.WithLogger(log))
	res.Emerging = scorer.IdentifyEmergingTopics(cfg.Emerging.MinEmergingness, cfg.Emerging.TopN)

	if cfg.Emerging.GenerateLabels {
		var cache emerging.LabelCache = emerging.NewMemoryCache()
		if deps.Store != nil {
			cache = deps.Store
		}
		labeler := emerging.NewLabeler(deps.Generator, cache,
			emerging.WithMaxRetries(cfg.Emerging.MaxRetries),
			emerging.WithLabelLogger(log),
		)
		if res.Emerging, err = labeler.LabelAll(ctx, res.Emerging); err != nil {
			return res, fmt.Errorf("labelling topics: %w", err)
		}
	}
	fmt.Fprintf(w, "emergingness >= %.2f: %d topics\n", cfg.Emerging.MinEmergingness, len(res.Emerging))

	if deps.Store != nil {
		if _, err := deps.Store.UpsertPapers(ctx, papers); err != nil {
			return res, err
		}
		if err := deps.Store.SaveMapping(ctx, res.RunID, res.Mapping); err != nil {
			return res, err
		}
	}

	if res.Outputs, err = writeArtifacts(cfg.OutputDir, res); err != nil {
		return res, err
	}
	for _, path := range res.Outputs {
		fmt.Fprintf(w, "wrote %s\n", path)
	}
	log.Info("pipeline finished",
		zap.Int("papers", len(papers)),
		zap.Int("topics", len(res.Mapping)),
		zap.Int("emerging", len(res.Emerging)),
	)
	return res, nil
}

// MapperOptions translates mapping config into thememap options. Zero
// values keep the mapper's defaults. An unknown weighting is an error.
func MapperOptions(cfg types.MappingConfig, log *zap.Logger) ([]thememap.Option, error) {
	if !cfg.Weighting.Valid() {
		return nil, fmt.Errorf("unknown weighting %q (want %s or %s)", cfg.Weighting, types.WeightingTF, types.WeightingTFIDF)
	}
	opts := []thememap.Option{thememap.WithLogger(log)}
	if cfg.DefaultThreshold > 0 {
		opts = append(opts, thememap.WithDefaultThreshold(cfg.DefaultThreshold))
	}
	if len(cfg.Thresholds) > 0 {
		opts = append(opts, thememap.WithThresholds(cfg.Thresholds))
	}
	if cfg.Weighting != "" {
		opts = append(opts, thememap.WithWeighting(cfg.Weighting))
	}
	return opts, nil
}

// WeightsOf returns the configured composite weights, or the defaults when
// none are set. Configured weights must be non-negative and sum to 1.
func WeightsOf(cfg types.EmergingConfig) (emerging.Weights, error) {
	if cfg.RecencyWeight == 0 && cfg.GrowthWeight == 0 && cfg.VolumeWeight == 0 {
		return emerging.DefaultWeights(), nil
	}
	w := emerging.Weights{Recency: cfg.RecencyWeight, Growth: cfg.GrowthWeight, Volume: cfg.VolumeWeight}
	if err := w.Validate(); err != nil {
		return emerging.Weights{}, fmt.Errorf("emerging config: %w", err)
	}
	return w, nil
}

// AssignThemes returns copies of papers where those without a theme take
// the theme of their mapped topic. Unmapped papers stay untagged.
func AssignThemes(papers []types.Paper, mapping types.ThemeMapping) []types.Paper {
	out := make([]types.Paper, len(papers))
	for i, p := range papers {
		if p.Theme == "" {
			p.Theme = mapping.ThemeOf(p.TopicID, "")
		}
		out[i] = p
	}
	return out
}

func writeArtifacts(dir string, res *Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := []string{
		filepath.Join(dir, MappingFile),
		filepath.Join(dir, CrossThemeFile),
		filepath.Join(dir, TrendJSONFile),
		filepath.Join(dir, TrendYAMLFile),
		filepath.Join(dir, EmergingFile),
	}
	crossTheme := res.CrossTheme
	if crossTheme == nil {
		crossTheme = []types.CrossThemeTopic{}
	}
	emergingTopics := res.Emerging
	if emergingTopics == nil {
		emergingTopics = []types.EmergingTopicRecord{}
	}

	if err := thememap.SaveMapping(paths[0], res.Mapping); err != nil {
		return nil, err
	}
	if err := WriteJSON(paths[1], crossTheme); err != nil {
		return nil, err
	}
	if err := WriteJSON(paths[2], res.Trends); err != nil {
		return nil, err
	}
	if err := WriteYAML(paths[3], res.Trends); err != nil {
		return nil, err
	}
	if err := WriteJSON(paths[4], emergingTopics); err != nil {
		return nil, err
	}
	return paths, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
