// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of one-value files
// (file name = key, trimmed contents = value), with environment variables
// as a fallback.
//
// Known keys: anthropic-api-key, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Key names understood by the CLI, with the environment variable each falls
// back to.
const (
	AnthropicAPIKey = "anthropic-api-key"
	OpenAlexEmail   = "openalex-email"
)

var envFallback = map[string]string{
	AnthropicAPIKey: "ANTHROPIC_API_KEY",
	OpenAlexEmail:   "OPENALEX_EMAIL",
}

// Set is a loaded secrets directory.
type Set map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty Set. Unreadable files are logged and skipped.
func Load(dir string, log *zap.Logger) (Set, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// Get returns the named secret, falling back to its environment variable.
func (s Set) Get(name string) string {
	if v, ok := s[name]; ok {
		return v
	}
	if env, ok := envFallback[name]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// Names lists the loaded keys, sorted. Values are never exposed.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
