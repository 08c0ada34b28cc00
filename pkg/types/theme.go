// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Priority is a strategic-priority tier. It labels both the static tier of a
// theme and the computed category of a StrategicPriority.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Weight returns the strategic-priority multiplier for the tier. Unknown tiers
// weigh the same as MEDIUM.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityHigh:
		return 1.5
	case PriorityLow:
		return 0.5
	default:
		return 1.0
	}
}

// Valid reports whether p is one of the three known tiers.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// SubTheme is an optional second-level category inside a theme.
type SubTheme struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// ThemeDefinition is one entry of the static theme taxonomy.
type ThemeDefinition struct {
	// Name is the theme identifier (e.g. "Marine_Naval").
	Name string `json:"name" yaml:"name"`

	// Keywords is the ordered, non-empty keyword phrase list.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Priority is the static strategic tier.
	Priority Priority `json:"strategic_priority" yaml:"strategic_priority"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// SubThemes is optional; most themes have none.
	SubThemes []SubTheme `json:"sub_themes,omitempty" yaml:"sub_themes,omitempty"`
}

// Taxonomy is the ordered set of themes. Its order is the tie-break order
// for every ranking that depends on theme iteration.
type Taxonomy struct {
	Themes []ThemeDefinition `json:"themes" yaml:"themes"`
}

// Names returns theme names in taxonomy order.
func (t Taxonomy) Names() []string {
	names := make([]string, len(t.Themes))
	for i, th := range t.Themes {
		names[i] = th.Name
	}
	return names
}

// Lookup returns the theme with the given name.
func (t Taxonomy) Lookup(name string) (ThemeDefinition, bool) {
	for _, th := range t.Themes {
		if th.Name == name {
			return th, true
		}
	}
	return ThemeDefinition{}, false
}

// ByPriority returns the themes of a given tier in taxonomy order.
func (t Taxonomy) ByPriority(p Priority) []ThemeDefinition {
	var out []ThemeDefinition
	for _, th := range t.Themes {
		if th.Priority == p {
			out = append(out, th)
		}
	}
	return out
}

// Len returns the number of themes.
func (t Taxonomy) Len() int { return len(t.Themes) }
