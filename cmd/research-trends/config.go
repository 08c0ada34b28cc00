// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-trends/pkg/types"
)

const envPrefix = "RESEARCH_TRENDS"

// setDefaults registers every scalar config key with its default so that
// environment overrides resolve for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()

	v.SetDefault("papers_path", d.PapersPath)
	v.SetDefault("topic_model_path", d.TopicModelPath)
	v.SetDefault("taxonomy_path", d.TaxonomyPath)
	v.SetDefault("output_dir", d.OutputDir)

	v.SetDefault("relevance.min_score", d.Relevance.MinScore)

	v.SetDefault("mapping.default_threshold", d.Mapping.DefaultThreshold)
	v.SetDefault("mapping.weighting", string(d.Mapping.Weighting))
	v.SetDefault("mapping.cross_theme_threshold", d.Mapping.CrossThemeThreshold)

	v.SetDefault("trend.emerging_threshold", d.Trend.EmergingThreshold)
	v.SetDefault("trend.recent_quarters", d.Trend.RecentQuarters)

	v.SetDefault("emerging.model", d.Emerging.Model)
	v.SetDefault("emerging.api_key", "")
	v.SetDefault("emerging.max_retries", d.Emerging.MaxRetries)
	v.SetDefault("emerging.min_emergingness", d.Emerging.MinEmergingness)
	v.SetDefault("emerging.top_n", d.Emerging.TopN)
	v.SetDefault("emerging.recency_weight", d.Emerging.RecencyWeight)
	v.SetDefault("emerging.growth_weight", d.Emerging.GrowthWeight)
	v.SetDefault("emerging.volume_weight", d.Emerging.VolumeWeight)
	v.SetDefault("emerging.generate_labels", d.Emerging.GenerateLabels)

	v.SetDefault("collector.timeout", d.Collector.Timeout)
	v.SetDefault("collector.user_agent", d.Collector.UserAgent)
	v.SetDefault("collector.email", d.Collector.Email)
	v.SetDefault("collector.start_date", "")
	v.SetDefault("collector.end_date", "")
	v.SetDefault("collector.max_per_theme", d.Collector.MaxPerTheme)
	v.SetDefault("collector.priority_only", d.Collector.PriorityOnly)
	v.SetDefault("collector.requests_per_second", d.Collector.RequestsPerSecond)
	v.SetDefault("collector.concurrency", d.Collector.Concurrency)
	v.SetDefault("collector.min_relevance", d.Collector.MinRelevance)
	v.SetDefault("collector.max_retries", d.Collector.MaxRetries)

	v.SetDefault("store.data_dir", d.Store.DataDir)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// bindEnv maps nested keys onto RESEARCH_TRENDS_SECTION_KEY variables.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig decodes the merged viper state into a PipelineConfig.
func loadConfig() (types.PipelineConfig, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToDateHook,
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// stringToDateHook accepts YYYY-MM-DD or RFC 3339 for time.Time fields;
// an empty string is the zero time.
func stringToDateHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// Flag override helpers apply a flag only when the user set it.

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func overrideFloat(cmd *cobra.Command, name string, dst *float64) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetFloat64(name)
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}
