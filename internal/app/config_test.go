package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CMDGRID_CONFIG", "")
	t.Setenv("CMDGRID_ROOT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CMDGRID_CONFIG", "")
	t.Setenv("CMDGRID_ROOT", "/srv/units")
	t.Setenv("CMDGRID_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/units", cfg.Root)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestNewConfig_RequiresRoot(t *testing.T) {
	_, err := NewConfig(Config{LogFormat: "text", LogLevel: "info"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Root")

	cfg, err := NewConfig(Config{Root: "/srv/units", LogFormat: "text", LogLevel: "info"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/units", cfg.Root)
}
