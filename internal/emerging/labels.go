// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emerging

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/pkg/types"
)

const (
	maxCleanKeywords  = 10
	promptKeywords    = 8
	minCleanKeywords  = 3
	minLabelWords     = 3
	countBucketSize   = 10
	growthBucketWidth = 25.0
)

// noiseWords never carry topic meaning.
var noiseWords = map[string]bool{
	"google": true, "scholar": true, "researchgate": true, "pubmed": true, "arxiv": true,
	"et": true, "al": true, "doi": true, "http": true, "https": true, "www": true,
	"paper": true, "study": true, "research": true, "analysis": true, "approach": true,
	"method": true, "results": true, "data": true, "using": true, "based": true,
	"review": true, "systematic": true, "meta": true,
	"journal": true, "conference": true, "proceedings": true, "article": true,
	"abstract": true, "introduction": true, "conclusion": true, "discussion": true,
}

var urlFragments = []string{"http", "www", ".com", ".org"}

// labelPrefixes are stripped from generated labels.
var labelPrefixes = []string{"Topic:", "Label:", "Research Topic:", "Emerging Topic:"}

// FilterNoisyKeywords drops generic words, words of two characters or
// fewer, and URL fragments, keeping at most ten.
func FilterNoisyKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		if noiseWords[lower] || len([]rune(kw)) <= 2 {
			continue
		}
		if containsAny(lower, urlFragments) {
			continue
		}
		out = append(out, kw)
		if len(out) == maxCleanKeywords {
			break
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// LabelRequest describes the topic to name.
type LabelRequest struct {
	TopicID    int
	Keywords   []string
	Theme      string
	SubTheme   string
	PaperCount int

	// GrowthRate is in percent.
	GrowthRate float64
}

// RequestFor builds a LabelRequest from an emergingness record.
func RequestFor(rec types.EmergingTopicRecord) LabelRequest {
	return LabelRequest{
		TopicID:    rec.TopicID,
		Keywords:   rec.Keywords,
		Theme:      rec.Theme,
		SubTheme:   rec.SubTheme,
		PaperCount: rec.PaperCount,
		GrowthRate: rec.GrowthRate,
	}
}

// CacheKey is the hex SHA-256 of the ordered keywords, theme, sub-theme,
// paper-count bucket, and growth-rate bucket. Topics that differ only by a
// few papers or a few points of growth share a key.
func CacheKey(req LabelRequest) string {
	h := sha256.New()
	for _, kw := range req.Keywords {
		h.Write([]byte(kw))
		h.Write([]byte{0x1f})
	}
	h.Write([]byte{0x1e})
	h.Write([]byte(req.Theme))
	h.Write([]byte{0x1e})
	h.Write([]byte(req.SubTheme))
	h.Write([]byte{0x1e})
	h.Write([]byte(strconv.Itoa(req.PaperCount / countBucketSize)))
	h.Write([]byte{0x1e})
	h.Write([]byte(strconv.Itoa(int(math.Floor(req.GrowthRate / growthBucketWidth)))))
	return hex.EncodeToString(h.Sum(nil))
}

// LabelCache stores generated labels by CacheKey.
type LabelCache interface {
	GetLabel(ctx context.Context, key string) (string, bool, error)
	PutLabel(ctx context.Context, key, label string) error
}

// MemoryCache is an in-process LabelCache.
type MemoryCache struct {
	mu     sync.RWMutex
	labels map[string]string
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{labels: make(map[string]string)}
}

// GetLabel implements LabelCache.
func (c *MemoryCache) GetLabel(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.labels[key]
	return l, ok, nil
}

// PutLabel implements LabelCache.
func (c *MemoryCache) PutLabel(_ context.Context, key, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels[key] = label
	return nil
}

// Len returns the number of cached labels.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.labels)
}

// Generator produces a label from a rendered prompt. AnthropicGenerator is
// the production implementation; tests supply their own.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var labelPromptTmpl = template.Must(template.New("label").Parse(`You are a research analyst identifying emerging topics in academic research.

Domain: {{.Domain}}{{if .SubTheme}}
Sub-area: {{.SubTheme}}{{end}}
Keywords from research papers: {{.Keywords}}
Publication volume: {{.PaperCount}} papers
Growth trend: {{printf "%.0f" .GrowthRate}}% growth rate

Create a single, clear research topic label of 4 to 8 words that names the specific research focus using the field's own terminology. Do not list keywords and do not be generic.

Examples of good labels:
- Deep Learning for Medical Image Segmentation
- Edge AI for IoT Security

Reply with the label only. No quotes, no explanation.
`))

type promptData struct {
	Domain     string
	SubTheme   string
	Keywords   string
	PaperCount int
	GrowthRate float64
}

func renderPrompt(req LabelRequest, keywords []string) (string, error) {
	if len(keywords) > promptKeywords {
		keywords = keywords[:promptKeywords]
	}
	var buf bytes.Buffer
	err := labelPromptTmpl.Execute(&buf, promptData{
		Domain:     spaced(req.Theme),
		SubTheme:   spaced(req.SubTheme),
		Keywords:   strings.Join(keywords, ", "),
		PaperCount: req.PaperCount,
		GrowthRate: req.GrowthRate,
	})
	return buf.String(), err
}

func spaced(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// Labeler names topics, preferring cached labels, then the generator, then
// a keyword fallback.
type Labeler struct {
	gen        Generator
	cache      LabelCache
	maxRetries int
	log        *zap.Logger
}

// LabelerOption configures a Labeler.
type LabelerOption func(*Labeler)

// WithMaxRetries sets how many times a failed generation is retried.
func WithMaxRetries(n int) LabelerOption {
	return func(l *Labeler) { l.maxRetries = n }
}

// WithLabelLogger sets the logger. A nil logger discards output.
func WithLabelLogger(log *zap.Logger) LabelerOption {
	return func(l *Labeler) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLabeler returns a Labeler. Both gen and cache may be nil.
func NewLabeler(gen Generator, cache LabelCache, opts ...LabelerOption) *Labeler {
	l := &Labeler{gen: gen, cache: cache, log: zap.NewNop()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Label returns a label for the topic. It never fails: cache and generator
// errors are logged and the keyword fallback is used.
func (l *Labeler) Label(ctx context.Context, req LabelRequest) string {
	key := CacheKey(req)
	if l.cache != nil {
		label, ok, err := l.cache.GetLabel(ctx, key)
		if err != nil {
			l.log.Warn("label cache read failed", zap.Int("topic", req.TopicID), zap.Error(err))
		} else if ok {
			return label
		}
	}
	if l.gen == nil {
		return FallbackLabel(req)
	}

	clean := FilterNoisyKeywords(req.Keywords)
	if len(clean) < minCleanKeywords {
		clean = req.Keywords
		if len(clean) > maxCleanKeywords {
			clean = clean[:maxCleanKeywords]
		}
	}

	prompt, err := renderPrompt(req, clean)
	if err != nil {
		l.log.Warn("rendering label prompt", zap.Int("topic", req.TopicID), zap.Error(err))
		return errorFallback(req)
	}

	raw, err := callWithRetry(ctx, l.gen, prompt, l.maxRetries)
	if err != nil {
		l.log.Warn("label generation failed", zap.Int("topic", req.TopicID), zap.Error(err))
		return errorFallback(req)
	}

	label := cleanLabel(raw)
	if len(strings.Fields(label)) < minLabelWords {
		l.log.Debug("generated label too short", zap.String("label", label))
		short := clean
		if len(short) > 3 {
			short = short[:3]
		}
		label = fmt.Sprintf("%s: %s", spaced(req.Theme), strings.Join(short, " "))
	}

	if l.cache != nil {
		if err := l.cache.PutLabel(ctx, key, label); err != nil {
			l.log.Warn("label cache write failed", zap.Int("topic", req.TopicID), zap.Error(err))
		}
	}
	l.log.Debug("label generated", zap.Int("topic", req.TopicID), zap.String("label", label))
	return label
}

// LabelAll returns copies of records with Label set. It stops early only
// when ctx is done.
func (l *Labeler) LabelAll(ctx context.Context, records []types.EmergingTopicRecord) ([]types.EmergingTopicRecord, error) {
	out := make([]types.EmergingTopicRecord, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec.Label = l.Label(ctx, RequestFor(rec))
		out[i] = rec
	}
	l.log.Info("topic labels assigned", zap.Int("count", len(out)), zap.Bool("generator", l.gen != nil))
	return out, nil
}

// FallbackLabel names a topic from its keywords alone:
// "<Theme>: kw1 & kw2", or "Topic <id>" with fewer than two clean keywords.
func FallbackLabel(req LabelRequest) string {
	clean := FilterNoisyKeywords(req.Keywords)
	if len(clean) >= 2 {
		return fmt.Sprintf("%s: %s", spaced(req.Theme), strings.Join(clean[:2], " & "))
	}
	return fmt.Sprintf("Topic %d", req.TopicID)
}

func errorFallback(req LabelRequest) string {
	clean := FilterNoisyKeywords(req.Keywords)
	if len(clean) >= 2 {
		return fmt.Sprintf("%s: %s", spaced(req.Theme), strings.Join(clean[:2], " & "))
	}
	return spaced(req.Theme) + " Research Topic"
}

func cleanLabel(raw string) string {
	label := strings.TrimSpace(raw)
	label = strings.Trim(label, "\"'`")
	label = strings.TrimSpace(label)
	for _, p := range labelPrefixes {
		if strings.HasPrefix(label, p) {
			label = strings.TrimSpace(label[len(p):])
		}
	}
	return label
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

func callWithRetry(ctx context.Context, gen Generator, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := gen.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
