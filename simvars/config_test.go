package simvars

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.toml")

	c := DefaultConfig()
	c.Telemetry = "localhost:10000"
	require.NoError(t, SaveConfig(path, c))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
	assert.Equal(t, []string{"Oil", "VSI"}, got.Names())
}

func TestLoadConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
enable_shadows = false
asset_dir = "art"

[instruments.Left]
kind = "vsi"
x = 10
y = 20
size = 300
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, c.EnableShadows)
	assert.Equal(t, "art", c.AssetDir)
	assert.Equal(t, Placement{Kind: "vsi", X: 10, Y: 20, Size: 300}, c.Instruments["Left"])
}

func TestLoadConfigRejects(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"syntax.toml": "enable_shadows = ",
		"nokind.toml": "[instruments.A]\nsize = 100\n",
		"size.toml":   "[instruments.A]\nkind = \"oil\"\nsize = 0\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err, name)
	}

	_, err := LoadConfig(filepath.Join(dir, "size.toml"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadOrCreateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.toml")

	c, err := LoadOrCreateConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.FileExists(t, path)

	c.EnableShadows = false
	require.NoError(t, SaveConfig(path, c))
	c, err = LoadOrCreateConfig(path)
	require.NoError(t, err)
	assert.False(t, c.EnableShadows)
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.toml")
	require.NoError(t, SaveConfig(path, DefaultConfig()))

	store := NewStore()
	store.ApplyConfig(DefaultConfig())

	changed := make(chan Config, 4)
	w, err := Watch(path, store, nil, func(c Config) { changed <- c })
	require.NoError(t, err)
	defer w.Close()

	c := DefaultConfig()
	c.EnableShadows = false
	c.Instruments["VSI"] = Placement{Kind: "vsi", X: 50, Y: 60, Size: 250}
	require.NoError(t, SaveConfig(path, c))

	require.Eventually(t, func() bool {
		st, _ := store.Settings("VSI")
		return !store.Shadows() && st.Size == 250
	}, 5*time.Second, 10*time.Millisecond)

	select {
	case got := <-changed:
		assert.Equal(t, 50, got.Instruments["VSI"].X)
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called")
	}
}

func TestWatcherKeepsSettingsOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.toml")
	require.NoError(t, SaveConfig(path, DefaultConfig()))

	store := NewStore()
	store.ApplyConfig(DefaultConfig())
	w, err := Watch(path, store, nil, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[instruments.VSI]\nkind = \"vsi\"\nsize = -1\n"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, w.Close())

	st, ok := store.Settings("VSI")
	require.True(t, ok)
	assert.Equal(t, 400, st.Size)
	assert.True(t, store.Shadows())
}
