// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy loads and validates the strategic theme taxonomy.
// A built-in taxonomy of nine themes with sub-themes is embedded for runs
// that do not supply their own file.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-trends/pkg/types"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid taxonomy")

// Default returns a fresh copy of the built-in taxonomy.
func Default() types.Taxonomy {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in taxonomy: %v", err))
	}
	return t
}

// Load reads a taxonomy YAML file and validates it. An empty path returns
// the built-in taxonomy.
func Load(path string) (types.Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Taxonomy{}, fmt.Errorf("reading taxonomy: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates taxonomy YAML.
func Parse(data []byte) (types.Taxonomy, error) {
	var t types.Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return types.Taxonomy{}, fmt.Errorf("parsing taxonomy: %w", err)
	}
	for i := range t.Themes {
		if t.Themes[i].Priority == "" {
			t.Themes[i].Priority = types.PriorityMedium
		}
	}
	if err := Validate(t); err != nil {
		return types.Taxonomy{}, err
	}
	return t, nil
}

// Write saves a taxonomy as YAML.
func Write(path string, t types.Taxonomy) error {
	data, err := yaml.Marshal(&t)
	if err != nil {
		return fmt.Errorf("marshaling taxonomy: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that theme names are present and unique, every theme has
// at least one keyword, and every tier is HIGH, MEDIUM, or LOW.
func Validate(t types.Taxonomy) error {
	seen := make(map[string]bool, len(t.Themes))
	for i, th := range t.Themes {
		name := strings.TrimSpace(th.Name)
		if name == "" {
			return fmt.Errorf("theme %d has no name: %w", i, ErrInvalid)
		}
		if seen[name] {
			return fmt.Errorf("duplicate theme %q: %w", name, ErrInvalid)
		}
		seen[name] = true

		if !hasKeyword(th.Keywords) {
			return fmt.Errorf("theme %q has no keywords: %w", name, ErrInvalid)
		}
		if !th.Priority.Valid() {
			return fmt.Errorf("theme %q has unknown priority %q: %w", name, th.Priority, ErrInvalid)
		}

		subSeen := make(map[string]bool, len(th.SubThemes))
		for _, st := range th.SubThemes {
			if st.Name == "" {
				return fmt.Errorf("theme %q has an unnamed sub-theme: %w", name, ErrInvalid)
			}
			if subSeen[st.Name] {
				return fmt.Errorf("theme %q repeats sub-theme %q: %w", name, st.Name, ErrInvalid)
			}
			subSeen[st.Name] = true
			if !hasKeyword(st.Keywords) {
				return fmt.Errorf("sub-theme %q has no keywords: %w", st.Name, ErrInvalid)
			}
		}
	}
	return nil
}

func hasKeyword(kws []string) bool {
	for _, k := range kws {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// ParentOf returns the theme that owns the named sub-theme.
func ParentOf(t types.Taxonomy, subTheme string) (string, bool) {
	for _, th := range t.Themes {
		for _, st := range th.SubThemes {
			if st.Name == subTheme {
				return th.Name, true
			}
		}
	}
	return "", false
}

// AllKeywords returns the sorted, de-duplicated keyword set across all
// themes, lowercased.
func AllKeywords(t types.Taxonomy) []string {
	set := make(map[string]bool)
	for _, th := range t.Themes {
		for _, k := range th.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				set[k] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Counts reports the number of themes and sub-themes.
type Counts struct {
	Themes    int `json:"themes" yaml:"themes"`
	SubThemes int `json:"sub_themes" yaml:"sub_themes"`
}

// Count tallies themes and sub-themes.
func Count(t types.Taxonomy) Counts {
	c := Counts{Themes: len(t.Themes)}
	for _, th := range t.Themes {
		c.SubThemes += len(th.SubThemes)
	}
	return c
}
