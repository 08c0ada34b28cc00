package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-trends/0.1 (mailto:you@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RelevanceConfig holds settings for the relevance filter.
type RelevanceConfig struct {
	// MinScore is the inclusive relevance threshold (default 0.5).
	MinScore float64 `json:"min_score" yaml:"min_score" mapstructure:"min_score"`
}

// Weighting selects the term weighting used for topic/theme similarity.
type Weighting string

const (
	WeightingTF    Weighting = "tf"
	WeightingTFIDF Weighting = "tfidf"
)

// Valid reports whether w is a known weighting. Empty means the default.
func (w Weighting) Valid() bool {
	return w == "" || w == WeightingTF || w == WeightingTFIDF
}

// MappingConfig holds settings for topic-to-theme mapping.
type MappingConfig struct {
	// DefaultThreshold is the similarity below which a topic maps to Other (default 0.01).
	DefaultThreshold float64 `json:"default_threshold" yaml:"default_threshold" mapstructure:"default_threshold"`

	// Thresholds overrides DefaultThreshold per theme name.
	Thresholds map[string]float64 `json:"thresholds,omitempty" yaml:"thresholds,omitempty" mapstructure:"thresholds"`

	// Weighting is "tf" (default) or "tfidf".
	Weighting Weighting `json:"weighting" yaml:"weighting" mapstructure:"weighting"`

	// CrossThemeThreshold is the per-theme score a cross-theme topic must reach (default 0.6).
	CrossThemeThreshold float64 `json:"cross_theme_threshold" yaml:"cross_theme_threshold" mapstructure:"cross_theme_threshold"`
}

// TrendConfig holds settings for growth-based trend analysis.
type TrendConfig struct {
	// EmergingThreshold is the recent growth a topic must exceed (default 0.5).
	EmergingThreshold float64 `json:"emerging_threshold" yaml:"emerging_threshold" mapstructure:"emerging_threshold"`

	// RecentQuarters is the window for recent growth (default 2).
	RecentQuarters int `json:"recent_quarters" yaml:"recent_quarters" mapstructure:"recent_quarters"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// EmergingConfig holds settings for emergingness scoring and labelling.
type EmergingConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	MinEmergingness float64 `json:"min_emergingness" yaml:"min_emergingness" mapstructure:"min_emergingness"`
	TopN            int     `json:"top_n" yaml:"top_n" mapstructure:"top_n"`

	RecencyWeight float64 `json:"recency_weight" yaml:"recency_weight" mapstructure:"recency_weight"`
	GrowthWeight  float64 `json:"growth_weight" yaml:"growth_weight" mapstructure:"growth_weight"`
	VolumeWeight  float64 `json:"volume_weight" yaml:"volume_weight" mapstructure:"volume_weight"`

	// GenerateLabels enables human-readable topic labels.
	GenerateLabels bool `json:"generate_labels" yaml:"generate_labels" mapstructure:"generate_labels"`
}

// CollectorConfig holds settings for the OpenAlex collector.
type CollectorConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email" yaml:"email" mapstructure:"email"`

	StartDate time.Time `json:"start_date" yaml:"start_date" mapstructure:"start_date"`
	EndDate   time.Time `json:"end_date" yaml:"end_date" mapstructure:"end_date"`

	// MaxPerTheme caps the papers fetched per theme (0 = no cap).
	MaxPerTheme int `json:"max_per_theme" yaml:"max_per_theme" mapstructure:"max_per_theme"`

	// PriorityOnly restricts collection to HIGH priority themes.
	PriorityOnly bool `json:"priority_only" yaml:"priority_only" mapstructure:"priority_only"`

	// RequestsPerSecond is the API rate limit (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// Concurrency bounds how many themes are fetched at once (default 2).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// MinRelevance drops collected papers below this relevance score.
	MinRelevance float64 `json:"min_relevance" yaml:"min_relevance" mapstructure:"min_relevance"`

	// MaxRetries bounds 429 retries per request (0 = default).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig holds settings for the SQLite paper store.
type StoreConfig struct {
	// DataDir contains research-trends.db. Empty disables the store.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// LogConfig selects the structured logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	PapersPath     string `json:"papers_path" yaml:"papers_path" mapstructure:"papers_path"`
	TopicModelPath string `json:"topic_model_path" yaml:"topic_model_path" mapstructure:"topic_model_path"`
	TaxonomyPath   string `json:"taxonomy_path,omitempty" yaml:"taxonomy_path,omitempty" mapstructure:"taxonomy_path"`
	OutputDir      string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	Relevance RelevanceConfig `json:"relevance" yaml:"relevance" mapstructure:"relevance"`
	Mapping   MappingConfig   `json:"mapping" yaml:"mapping" mapstructure:"mapping"`
	Trend     TrendConfig     `json:"trend" yaml:"trend" mapstructure:"trend"`
	Emerging  EmergingConfig  `json:"emerging" yaml:"emerging" mapstructure:"emerging"`
	Collector CollectorConfig `json:"collector" yaml:"collector" mapstructure:"collector"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultPipelineConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		PapersPath:     "data/processed/papers.csv",
		TopicModelPath: "data/processed/topic_model.json",
		OutputDir:      "data/processed",
		Relevance:      RelevanceConfig{MinScore: 0.5},
		Mapping: MappingConfig{
			DefaultThreshold:    0.01,
			Weighting:           WeightingTF,
			CrossThemeThreshold: 0.6,
		},
		Trend: TrendConfig{EmergingThreshold: 0.5, RecentQuarters: 2},
		Emerging: EmergingConfig{
			AIConfig:        AIConfig{MaxRetries: 3},
			MinEmergingness: 0.5,
			TopN:            20,
			RecencyWeight:   0.4,
			GrowthWeight:    0.4,
			VolumeWeight:    0.2,
		},
		Collector: CollectorConfig{
			HTTPConfig:        HTTPConfig{Timeout: 30 * time.Second, UserAgent: "research-trends/0.1"},
			MaxPerTheme:       500,
			RequestsPerSecond: 1,
			Concurrency:       2,
			MinRelevance:      0.5,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}
