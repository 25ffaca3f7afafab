package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{"gruvbox", "tokyo-night"}, ThemeNames())
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)
	SetTheme(p)

	assert.Equal(t, p, CurrentPalette)
	assert.Equal(t, "#83a598", *GlamourStyle().H2.Color)
}

func TestBadge(t *testing.T) {
	assert.Contains(t, Badge("done"), "done")
	assert.Equal(t, "unknown", Badge("unknown"))
}
