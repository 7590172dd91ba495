package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/skalibog/bfsd/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Переменные окружения, переопределяющие файл конфигурации
const (
	EnvBaseURL       = "BFSD_BASE_URL"
	EnvDefaultSymbol = "BFSD_DEFAULT_SYMBOL"
	EnvLogLevel      = "BFSD_LOG_LEVEL"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Binance   BinanceConfig   `yaml:"binance"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	UI        UIConfig        `yaml:"ui"`
	Log       LogConfig       `yaml:"log"`
}

// BinanceConfig содержит настройки подключения к Binance
type BinanceConfig struct {
	APIKey         string `yaml:"api_key"`
	APISecret      string `yaml:"api_secret"`
	Testnet        bool   `yaml:"testnet"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DashboardConfig список символов и символ по умолчанию
type DashboardConfig struct {
	Symbols       []string `yaml:"symbols"`
	DefaultSymbol string   `yaml:"default_symbol"`
}

// UIConfig настройки пользовательского интерфейса
type UIConfig struct {
	ChartHeight int `yaml:"chart_height"`
	LogLines    int `yaml:"log_lines"`
}

// LogConfig настройки логирования
type LogConfig struct {
	File     string `yaml:"file"`
	JSONFile string `yaml:"json_file"`
	Level    string `yaml:"level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Binance: BinanceConfig{
			TimeoutSeconds: 10,
		},
		Dashboard: DashboardConfig{
			Symbols:       []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"},
			DefaultSymbol: "BTCUSDT",
		},
		UI: UIConfig{
			ChartHeight: 8,
			LogLines:    6,
		},
		Log: LogConfig{
			File:     "app.log",
			JSONFile: "app.json.log",
			Level:    "debug",
		},
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}

	// .env необязателен
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}
	config.applyEnv()

	if err := config.normalize(); err != nil {
		return nil, err
	}

	logger.Debug("Загружена конфигурация", zap.String("path", path), zap.Any("config", config))
	logger.Info("Загружена конфигурация", zap.Strings("symbols", config.Dashboard.Symbols))
	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv(EnvDefaultSymbol); v != "" {
		c.Dashboard.DefaultSymbol = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) normalize() error {
	symbols := make([]string, 0, len(c.Dashboard.Symbols))
	seen := make(map[string]bool)
	for _, s := range c.Dashboard.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	if len(symbols) == 0 {
		return fmt.Errorf("не задан ни один символ в dashboard.symbols")
	}
	c.Dashboard.Symbols = symbols

	def := strings.ToUpper(strings.TrimSpace(c.Dashboard.DefaultSymbol))
	if !seen[def] {
		if def != "" {
			logger.Warn("Символ по умолчанию не найден в списке, используется первый",
				zap.String("default_symbol", def), zap.String("fallback", symbols[0]))
		}
		def = symbols[0]
	}
	c.Dashboard.DefaultSymbol = def

	if c.UI.ChartHeight < 3 {
		c.UI.ChartHeight = 3
	}
	if c.UI.LogLines <= 0 {
		c.UI.LogLines = Default().UI.LogLines
	}
	return nil
}
