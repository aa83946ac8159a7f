package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "toughpos", cfg.System.Appid)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, 24, cfg.Web.TokenExpireHr)
	assert.Equal(t, "postgres", cfg.Database.Type)
}

func TestLoadConfigYamlAndEnvOverride(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "toughpos.yml")
	yml := "web:\n  port: 9090\n  secret: yaml-secret\ndatabase:\n  type: sqlite\n"
	require.NoError(t, os.WriteFile(cfile, []byte(yml), 0o644))

	t.Setenv("TOUGHPOS_WEB_SECRET", "env-secret")
	cfg := LoadConfig(cfile)

	assert.Equal(t, 9090, cfg.Web.Port)
	// env beats the file
	assert.Equal(t, "env-secret", cfg.Web.Secret)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	// sections the file does not mention keep their defaults
	assert.Equal(t, "toughpos", cfg.System.Appid)
	assert.Equal(t, 24, cfg.Web.TokenExpireHr)
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	cfg := LoadConfig("/nonexistent/toughpos.yml")
	assert.Equal(t, DefaultAppConfig.Web.Port, cfg.Web.Port)
}
