package assets

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestIsSeasonal(t *testing.T) {
	assert.True(t, IsSeasonal("Best New Year party"))
	assert.True(t, IsSeasonal("XMAS sweater contest"))
	assert.True(t, IsSeasonal("Новий Рік 2025"))
	assert.True(t, IsSeasonal("новорічна ялинка"))
	assert.False(t, IsSeasonal("Go Programming"))
}

func TestPicker_MissingPoolsYieldNothing(t *testing.T) {
	p := NewPicker(filepath.Join(t.TempDir(), "absent"), rand.New(rand.NewSource(1)))

	assert.Empty(t, p.Badge("anything"))
	assert.Empty(t, p.Signature())
}

func TestPicker_EmptyPool(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, PoolSignatures), 0o755))

	assert.Empty(t, NewPicker(root, nil).Signature())
}

func TestPicker_FiltersNonImages(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, PoolSignatures), "notes.txt", "sig.PNG", "sig2.jpg")
	require.NoError(t, os.MkdirAll(filepath.Join(root, PoolSignatures, "nested.png"), 0o755))

	assert.Equal(t, []string{"sig.PNG", "sig2.jpg"}, NewPicker(root, nil).List(PoolSignatures))
}

func TestPicker_SeasonalBadges(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, PoolBadges), "gold.png", "silver.png", "new-year-tree.png")
	p := NewPicker(root, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, filepath.Join(root, PoolBadges, "new-year-tree.png"), p.Badge("Christmas market"))
		assert.NotContains(t, p.Badge("Go course"), SeasonalPrefix)
	}
}

func TestPicker_SeasonalWithoutSeasonalBadges(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, PoolBadges), "gold.png")

	assert.Empty(t, NewPicker(root, nil).Badge("new year resolution"))
}

func TestPicker_DeterministicWithSeed(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, PoolSignatures), "a.png", "b.png", "c.png", "d.png")

	first := NewPicker(root, rand.New(rand.NewSource(42)))
	second := NewPicker(root, rand.New(rand.NewSource(42)))

	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Signature(), second.Signature())
	}
}
