package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogModes(t *testing.T) {
	c := DefaultCatalog()

	assert.ElementsMatch(t, []string{"1v1", "2v2", "3v3", "5v5"}, c.Modes())

	for mode, want := range map[string]int{"1v1": 1, "2v2": 2, "3v3": 3, "5v5": 5} {
		assert.True(t, c.ValidMode(mode))
		size, ok := c.TeamSize(mode)
		require.True(t, ok)
		assert.Equal(t, want, size, mode)
	}

	assert.False(t, c.ValidMode("4v4"))
	_, ok := c.TeamSize("4v4")
	assert.False(t, ok)
}

func TestDefaultCatalogServers(t *testing.T) {
	c := DefaultCatalog()
	servers := c.Servers()
	require.Len(t, servers, 17)
	assert.Equal(t, "Majestic RP #1", servers[0])
	assert.Equal(t, "Majestic RP #17", servers[16])
}

func TestCanonicalServer(t *testing.T) {
	c := DefaultCatalog()

	got, ok := c.CanonicalServer("majestic rp #7")
	require.True(t, ok)
	assert.Equal(t, "Majestic RP #7", got)

	got, ok = c.CanonicalServer("  MAJESTIC RP #17 ")
	require.True(t, ok)
	assert.Equal(t, "Majestic RP #17", got)

	// Номер вне каталога не подменяется ближайшим.
	_, ok = c.CanonicalServer("Majestic RP #18")
	assert.False(t, ok)
	_, ok = c.CanonicalServer("Paradise RP #1")
	assert.False(t, ok)
	_, ok = c.CanonicalServer("")
	assert.False(t, ok)
}

func TestCanonicalServerCoversWholeCatalog(t *testing.T) {
	c := DefaultCatalog()
	for i := 1; i <= 17; i++ {
		name := fmt.Sprintf("mAjEsTiC rP #%d", i)
		got, ok := c.CanonicalServer(name)
		require.True(t, ok, name)
		assert.Equal(t, fmt.Sprintf("Majestic RP #%d", i), got)
	}
}

func TestDefaultRatingRules(t *testing.T) {
	r := DefaultCatalog().Rating
	assert.Equal(t, 50, r.WinDelta)
	assert.Equal(t, -25, r.LossDelta)
	assert.Equal(t, 0, r.Floor)
	assert.Equal(t, 1000, r.LevelThreshold)
	assert.Equal(t, 10, r.MaxLevel)
	assert.Equal(t, 250, r.SearchRange)
}
