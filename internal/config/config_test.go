package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8077, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Server.LoadTimeout, "loads of large sessions need room")

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)

	assert.Equal(t, "data/input", cfg.Data.InputDir)
	assert.Equal(t, "data/exports", cfg.Data.ExportsDir)
	assert.Equal(t, "data/bundles", cfg.Data.BundlesDir)

	assert.True(t, cfg.Security.EnableCORS)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, float64(100), cfg.Security.RateLimit.RPS)

	assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ESPRESSO_SERVER_PORT", "9000")
	t.Setenv("ESPRESSO_SERVER_LOAD_TIMEOUT", "2m")
	t.Setenv("ESPRESSO_LOGGING_LEVEL", "debug")
	t.Setenv("ESPRESSO_DATA_INPUT_DIR", "/srv/espresso/input")
	t.Setenv("ESPRESSO_SECURITY_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.LoadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/srv/espresso/input", cfg.Data.InputDir)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"negative port", "-1"},
		{"port zero", "0"},
		{"port above range", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ESPRESSO_SERVER_PORT", tt.port)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadRejectsMalformedEnvValue(t *testing.T) {
	t.Setenv("ESPRESSO_SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to load config from env")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  port: 9100
logging:
  level: warn
data:
  input_dir: file/input
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "file/input", cfg.Data.InputDir)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := loadFromFile(path)
	require.Error(t, err)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := loadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestMergeConfigs(t *testing.T) {
	var fileCfg Config
	fileCfg.Server.Port = 9100
	fileCfg.Server.ReadTimeout = 20 * time.Second
	fileCfg.Data.InputDir = "file/input"
	fileCfg.Logging.Level = "warn"

	t.Run("env values win when set", func(t *testing.T) {
		var envCfg Config
		envCfg.Server.Port = 9200
		envCfg.Logging.Level = "debug"

		merged := mergeConfigs(fileCfg, envCfg)
		assert.Equal(t, 9200, merged.Server.Port)
		assert.Equal(t, "debug", merged.Logging.Level)
		assert.Equal(t, 20*time.Second, merged.Server.ReadTimeout, "unset env field filled from file")
	})

	t.Run("file fills zero env values", func(t *testing.T) {
		merged := mergeConfigs(fileCfg, Config{})
		assert.Equal(t, 9100, merged.Server.Port)
		assert.Equal(t, 20*time.Second, merged.Server.ReadTimeout)
		assert.Equal(t, "file/input", merged.Data.InputDir)
		assert.Equal(t, "warn", merged.Logging.Level)
	})
}

func TestValidateCoercesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "discard"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format, "structured records only")
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/espresso.log", cfg.Logging.FilePath)
}

func TestValidateKeepsSupportedOutputs(t *testing.T) {
	for _, output := range []string{"both", "file", "console"} {
		cfg := Default()
		cfg.Logging.Output = output
		require.NoError(t, cfg.validate())
		assert.Equal(t, output, cfg.Logging.Output)
	}
}

func TestValidateRejectsOutOfRangeTimeouts(t *testing.T) {
	cfg := Default()
	cfg.Server.ReadTimeout = -1 * time.Second

	require.Error(t, cfg.validate())
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8077, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Server.LoadTimeout)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, []string{"http://localhost:8077"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

	assert.NoError(t, cfg.validate(), "defaults must validate")
}
