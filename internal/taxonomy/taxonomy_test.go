// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-trends/pkg/types"
)

func TestDefault(t *testing.T) {
	tax := Default()

	assert.Equal(t, []string{
		"Defense_Security",
		"Autonomous_Systems",
		"Cybersecurity",
		"Energy_Sustainability",
		"Advanced_Manufacturing",
		"AI_Machine_Learning",
		"Marine_Naval",
		"Space_Aerospace",
		"Digital_Transformation",
	}, tax.Names())
	assert.Equal(t, Counts{Themes: 9, SubThemes: 40}, Count(tax))
	assert.Len(t, tax.ByPriority(types.PriorityHigh), 5)
	assert.Len(t, tax.ByPriority(types.PriorityMedium), 4)

	naval, ok := tax.Lookup("Marine_Naval")
	require.True(t, ok)
	assert.Equal(t, "marine", naval.Keywords[0])
	assert.Equal(t, "Naval_Systems", naval.SubThemes[0].Name)

	energy, ok := tax.Lookup("Energy_Sustainability")
	require.True(t, ok)
	assert.Contains(t, energy.Keywords, "solar")
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a.Themes[0].Name = "mutated"
	assert.Equal(t, "Defense_Security", Default().Themes[0].Name)
}

func TestParentOf(t *testing.T) {
	tax := Default()
	parent, ok := ParentOf(tax, "Drones_UAVs")
	assert.True(t, ok)
	assert.Equal(t, "Autonomous_Systems", parent)

	_, ok = ParentOf(tax, "Nope")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := types.ThemeDefinition{Name: "A", Keywords: []string{"a"}, Priority: types.PriorityLow}

	tests := []struct {
		name    string
		themes  []types.ThemeDefinition
		wantErr bool
	}{
		{name: "empty taxonomy", themes: nil},
		{name: "valid", themes: []types.ThemeDefinition{valid}},
		{name: "missing name", themes: []types.ThemeDefinition{{Keywords: []string{"a"}, Priority: types.PriorityHigh}}, wantErr: true},
		{name: "duplicate", themes: []types.ThemeDefinition{valid, valid}, wantErr: true},
		{name: "blank keywords", themes: []types.ThemeDefinition{{Name: "B", Keywords: []string{" "}, Priority: types.PriorityHigh}}, wantErr: true},
		{name: "bad priority", themes: []types.ThemeDefinition{{Name: "B", Keywords: []string{"b"}, Priority: "URGENT"}}, wantErr: true},
		{
			name: "sub-theme without keywords",
			themes: []types.ThemeDefinition{{
				Name: "B", Keywords: []string{"b"}, Priority: types.PriorityHigh,
				SubThemes: []types.SubTheme{{Name: "S"}},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(types.Taxonomy{Themes: tt.themes})
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseDefaultsPriority(t *testing.T) {
	tax, err := Parse([]byte("themes:\n  - name: X\n    keywords: [x, y]\n"))
	require.NoError(t, err)
	require.Equal(t, 1, tax.Len())
	assert.Equal(t, types.PriorityMedium, tax.Themes[0].Priority)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("themes: [unterminated"))
	assert.Error(t, err)
}

func TestLoadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	require.NoError(t, Write(path, Default()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAllKeywords(t *testing.T) {
	tax := types.Taxonomy{Themes: []types.ThemeDefinition{
		{Name: "A", Keywords: []string{"Radar", "sonar"}},
		{Name: "B", Keywords: []string{"radar", "drone"}},
	}}
	assert.Equal(t, []string{"drone", "radar", "sonar"}, AllKeywords(tax))
}
