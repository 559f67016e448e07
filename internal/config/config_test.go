package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luna.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
name = "test-world"
bind_address = "127.0.0.1:50000"

[game]
tick_rate = "300ms"
login_workers = 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-world", cfg.Server.Name)
	assert.Equal(t, "127.0.0.1:50000", cfg.Server.BindAddress)
	assert.Equal(t, 300*time.Millisecond, cfg.Game.TickRate)
	assert.Equal(t, 4, cfg.Game.LoginWorkers)

	// Untouched fields keep their defaults.
	assert.Equal(t, 3222, cfg.Server.StartingX)
	assert.Equal(t, 25, cfg.Game.MaxLoginsPerTick)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luna.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
