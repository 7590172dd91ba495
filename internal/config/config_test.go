package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
binance:
  testnet: true
dashboard:
  symbols: [ethusdt, " SOLUSDT ", ETHUSDT]
  default_symbol: solusdt
ui:
  chart_height: 12
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Binance.Testnet)
	assert.Equal(t, 10, cfg.Binance.TimeoutSeconds)
	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, cfg.Dashboard.Symbols)
	assert.Equal(t, "SOLUSDT", cfg.Dashboard.DefaultSymbol)
	assert.Equal(t, 12, cfg.UI.ChartHeight)
	assert.Equal(t, 6, cfg.UI.LogLines)
	assert.Equal(t, "app.json.log", cfg.Log.JSONFile)
}

func TestLoadFallsBackToFirstSymbol(t *testing.T) {
	path := writeConfig(t, `
dashboard:
  symbols: [XRPUSDT, BNBUSDT]
  default_symbol: DOGEUSDT
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "XRPUSDT", cfg.Dashboard.DefaultSymbol)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://relay.local")
	t.Setenv(EnvDefaultSymbol, "ETHUSDT")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(writeConfig(t, "binance:\n  base_url: https://fapi.binance.com\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://relay.local", cfg.Binance.BaseURL)
	assert.Equal(t, "ETHUSDT", cfg.Dashboard.DefaultSymbol)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "dashboard: [oops"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "dashboard:\n  symbols: [\"  \"]\n"))
	assert.ErrorContains(t, err, "dashboard.symbols")
}

func TestNormalizeClampsChartHeight(t *testing.T) {
	cfg := Default()
	cfg.UI.ChartHeight = 1
	cfg.UI.LogLines = 0

	require.NoError(t, cfg.normalize())
	assert.Equal(t, 3, cfg.UI.ChartHeight)
	assert.Equal(t, 6, cfg.UI.LogLines)
}
