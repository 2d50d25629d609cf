// Package config assembles the engine's full configuration surface: one
// struct per concern, JSON tags throughout, a Load function that reads an
// optional file and then applies environment overrides field-by-field.
// Grounded on the teacher repo's config/config.go (the same file-then-env
// layering, the same getEnvOrDefault/getEnvIntOrDefault/
// getEnvFloatOrDefault/getEnvDurationOrDefault helper set), trimmed from
// the teacher's web/auth/billing/SaaS surface to the decision engine's
// own concerns plus the ambient stack (logging, secrets, storage).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/conflux-quant/decision-engine/internal/confluence"
	"github.com/conflux-quant/decision-engine/internal/engineerr"
	"github.com/conflux-quant/decision-engine/internal/position"
	"github.com/conflux-quant/decision-engine/internal/volumefilter"
)

// Config is the root of the engine's configuration tree.
type Config struct {
	Engine       EngineConfig       `json:"engine"`
	VolumeFilter VolumeFilterConfig `json:"volume_filter"`
	MarketContext MarketContextConfig `json:"market_context"`
	Backtest     BacktestConfig     `json:"backtest"`
	RealTime     RealTimeConfig     `json:"realtime"`
	DataProvider DataProviderConfig `json:"data_provider"`
	Logging      LoggingConfig      `json:"logging"`
	Vault        VaultConfig        `json:"vault"`
	Postgres     PostgresConfig     `json:"postgres"`
	Redis        RedisConfig        `json:"redis"`
	Advisor      AdvisorConfig      `json:"advisor"`
}

// EngineConfig holds the ConfluenceEngine's regime gate and vote
// thresholds (§4.3 catalogue).
type EngineConfig struct {
	BuyThreshold    float64          `json:"buy_threshold"`
	SellThreshold   float64          `json:"sell_threshold"`
	ConflictPenalty float64          `json:"conflict_penalty"`
	Regime          RegimeConfig     `json:"regime"`
	DetectorWeights map[string]float64 `json:"detector_weights"`
}

// RegimeConfig mirrors confluence.RegimeConfig's JSON shape.
type RegimeConfig struct {
	ADXPeriod  int     `json:"adx_period"`
	ADXMin     float64 `json:"adx_min"`
	ADXMax     float64 `json:"adx_max"`
	ATRPeriod  int     `json:"atr_period"`
	ATRMin     float64 `json:"atr_min"`
	BBPeriod   int     `json:"bb_period"`
	BBStdDev   float64 `json:"bb_std_dev"`
	BBWidthMin float64 `json:"bb_width_min"`
}

// VolumeFilterConfig mirrors the §4.2 catalogue defaults.
type VolumeFilterConfig struct {
	RejectThreshold float64 `json:"reject_threshold"`
	BoostThreshold  float64 `json:"boost_threshold"`
	BoostFactor     float64 `json:"boost_factor"`
	Lookback        int     `json:"lookback"`
}

// MarketContextConfig controls the regime classifier's lookback window.
type MarketContextConfig struct {
	Enabled      bool `json:"enabled"`
	LookbackDays int  `json:"lookback_days"`
}

// BacktestConfig mirrors position.Config's JSON shape plus the driver's
// own symbol/timeframe/mode fields (§6's Backtest config table).
type BacktestConfig struct {
	Symbol             string  `json:"symbol"`
	Timeframe          string  `json:"timeframe"`
	InitialCapital     float64 `json:"initial_capital"`
	PositionSizePct    float64 `json:"position_size_pct"`
	Compound           bool    `json:"compound"`
	MaxDrawdownPct     float64 `json:"max_drawdown_pct"`
	StopMult           float64 `json:"stop_mult"`
	TPMult             float64 `json:"tp_mult"`
	MaxPositionSizePct float64 `json:"max_position_size_pct"`
	MaxDailyTrades     int     `json:"max_daily_trades"`
	ShadowMode         bool    `json:"shadow_mode"`
}

// RealTimeConfig mirrors driver.RealTimeConfig's JSON shape.
type RealTimeConfig struct {
	Symbol     string `json:"symbol"`
	Timeframe  string `json:"timeframe"`
	WindowSize int    `json:"window_size"`
	ShadowMode bool   `json:"shadow_mode"`
}

// DataProviderConfig configures the live Binance adapter.
type DataProviderConfig struct {
	RESTBaseURL   string `json:"rest_base_url"`
	StreamBaseURL string `json:"stream_base_url"`
}

// LoggingConfig mirrors logging.Config's JSON shape, plus the hot-path
// zerolog level shared by the live driver and the WebSocket reader.
type LoggingConfig struct {
	Level       string `json:"level"`
	Output      string `json:"output"`
	JSONFormat  bool   `json:"json_format"`
	IncludeFile bool   `json:"include_file"`
	ZerologLevel string `json:"zerolog_level"`
}

// VaultConfig mirrors the teacher's VaultConfig shape, trimmed to the
// fields secrets.VaultConfig actually uses.
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`
	SecretPath string `json:"secret_path"`
}

// PostgresConfig mirrors postgres.Config's JSON shape.
type PostgresConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig mirrors the teacher's RedisConfig shape.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// AdvisorConfig configures the optional post-hoc LLM summary.
type AdvisorConfig struct {
	Enabled        bool          `json:"enabled"`
	Provider       string        `json:"provider"` // "claude", "openai", "deepseek"
	APIKey         string        `json:"api_key"`
	Model          string        `json:"model"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	Timeout        time.Duration `json:"timeout"`
}

// Default returns the catalogue defaults from spec.md §4's tables, with
// no external services enabled.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			BuyThreshold:    0.5,
			SellThreshold:   -0.5,
			ConflictPenalty: 0.3,
			Regime: RegimeConfig{
				ADXPeriod: 14, ADXMin: 15, ADXMax: 100,
				ATRPeriod: 14, ATRMin: 0.0001,
				BBPeriod: 20, BBStdDev: 2.0, BBWidthMin: 0.01,
			},
		},
		VolumeFilter: VolumeFilterConfig{
			RejectThreshold: 0.5,
			BoostThreshold:  1.5,
			BoostFactor:     1.3,
			Lookback:        50,
		},
		MarketContext: MarketContextConfig{
			Enabled:      true,
			LookbackDays: 60,
		},
		Backtest: BacktestConfig{
			Symbol: "BTCUSDT", Timeframe: "1h",
			InitialCapital: 10000, PositionSizePct: 0.10, Compound: true,
			MaxDrawdownPct: 0.5, StopMult: 1.5, TPMult: 2.5,
			MaxPositionSizePct: 0.10, MaxDailyTrades: 0,
		},
		RealTime: RealTimeConfig{
			Symbol: "BTCUSDT", Timeframe: "1h", WindowSize: 0,
		},
		DataProvider: DataProviderConfig{
			RESTBaseURL:   "https://api.binance.com",
			StreamBaseURL: "wss://stream.binance.com:9443",
		},
		Logging: LoggingConfig{
			Level: "INFO", Output: "stdout", JSONFormat: true,
			ZerologLevel: "info",
		},
		Vault: VaultConfig{
			Enabled: false, Address: "http://localhost:8200",
			MountPath: "secret", SecretPath: "conflux-engine/api-keys",
		},
		Postgres: PostgresConfig{
			Enabled: false, Host: "localhost", Port: 5432,
			Database: "conflux_engine", SSLMode: "disable",
		},
		Redis: RedisConfig{
			Enabled: false, Address: "localhost:6379",
		},
		Advisor: AdvisorConfig{
			Enabled: false, Provider: "claude",
			Model: "claude-sonnet-4-20250514", MaxTokens: 1024,
			Temperature: 0.3, Timeout: 30 * time.Second,
		},
	}
}

// Load reads path (if non-empty and present) as a JSON config file layered
// over Default, then applies environment variable overrides, then
// validates. Env vars always win, matching the teacher's layering.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Engine.BuyThreshold = getEnvFloatOrDefault("ENGINE_BUY_THRESHOLD", cfg.Engine.BuyThreshold)
	cfg.Engine.SellThreshold = getEnvFloatOrDefault("ENGINE_SELL_THRESHOLD", cfg.Engine.SellThreshold)
	cfg.Engine.ConflictPenalty = getEnvFloatOrDefault("ENGINE_CONFLICT_PENALTY", cfg.Engine.ConflictPenalty)

	cfg.VolumeFilter.RejectThreshold = getEnvFloatOrDefault("VOLUME_FILTER_REJECT_THRESHOLD", cfg.VolumeFilter.RejectThreshold)
	cfg.VolumeFilter.BoostThreshold = getEnvFloatOrDefault("VOLUME_FILTER_BOOST_THRESHOLD", cfg.VolumeFilter.BoostThreshold)
	cfg.VolumeFilter.BoostFactor = getEnvFloatOrDefault("VOLUME_FILTER_BOOST_FACTOR", cfg.VolumeFilter.BoostFactor)
	cfg.VolumeFilter.Lookback = getEnvIntOrDefault("VOLUME_FILTER_LOOKBACK", cfg.VolumeFilter.Lookback)

	cfg.MarketContext.Enabled = getEnvBoolOrDefault("MARKET_CONTEXT_ENABLED", cfg.MarketContext.Enabled)
	cfg.MarketContext.LookbackDays = getEnvIntOrDefault("MARKET_CONTEXT_LOOKBACK_DAYS", cfg.MarketContext.LookbackDays)

	cfg.Backtest.Symbol = getEnvOrDefault("BACKTEST_SYMBOL", cfg.Backtest.Symbol)
	cfg.Backtest.Timeframe = getEnvOrDefault("BACKTEST_TIMEFRAME", cfg.Backtest.Timeframe)
	cfg.Backtest.InitialCapital = getEnvFloatOrDefault("BACKTEST_INITIAL_CAPITAL", cfg.Backtest.InitialCapital)
	cfg.Backtest.PositionSizePct = getEnvFloatOrDefault("BACKTEST_POSITION_SIZE_PCT", cfg.Backtest.PositionSizePct)
	cfg.Backtest.Compound = getEnvBoolOrDefault("BACKTEST_COMPOUND", cfg.Backtest.Compound)
	cfg.Backtest.MaxDrawdownPct = getEnvFloatOrDefault("BACKTEST_MAX_DRAWDOWN_PCT", cfg.Backtest.MaxDrawdownPct)
	cfg.Backtest.StopMult = getEnvFloatOrDefault("BACKTEST_STOP_MULT", cfg.Backtest.StopMult)
	cfg.Backtest.TPMult = getEnvFloatOrDefault("BACKTEST_TP_MULT", cfg.Backtest.TPMult)
	cfg.Backtest.MaxPositionSizePct = getEnvFloatOrDefault("BACKTEST_MAX_POSITION_SIZE_PCT", cfg.Backtest.MaxPositionSizePct)
	cfg.Backtest.MaxDailyTrades = getEnvIntOrDefault("BACKTEST_MAX_DAILY_TRADES", cfg.Backtest.MaxDailyTrades)
	cfg.Backtest.ShadowMode = getEnvBoolOrDefault("BACKTEST_SHADOW_MODE", cfg.Backtest.ShadowMode)

	cfg.RealTime.Symbol = getEnvOrDefault("REALTIME_SYMBOL", cfg.RealTime.Symbol)
	cfg.RealTime.Timeframe = getEnvOrDefault("REALTIME_TIMEFRAME", cfg.RealTime.Timeframe)
	cfg.RealTime.WindowSize = getEnvIntOrDefault("REALTIME_WINDOW_SIZE", cfg.RealTime.WindowSize)
	cfg.RealTime.ShadowMode = getEnvBoolOrDefault("REALTIME_SHADOW_MODE", cfg.RealTime.ShadowMode)

	cfg.DataProvider.RESTBaseURL = getEnvOrDefault("BINANCE_REST_BASE_URL", cfg.DataProvider.RESTBaseURL)
	cfg.DataProvider.StreamBaseURL = getEnvOrDefault("BINANCE_STREAM_BASE_URL", cfg.DataProvider.StreamBaseURL)

	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Output = getEnvOrDefault("LOG_OUTPUT", cfg.Logging.Output)
	cfg.Logging.JSONFormat = getEnvBoolOrDefault("LOG_JSON", cfg.Logging.JSONFormat)
	cfg.Logging.IncludeFile = getEnvBoolOrDefault("LOG_INCLUDE_FILE", cfg.Logging.IncludeFile)
	cfg.Logging.ZerologLevel = getEnvOrDefault("LOG_ZEROLOG_LEVEL", cfg.Logging.ZerologLevel)

	cfg.Vault.Enabled = getEnvBoolOrDefault("VAULT_ENABLED", cfg.Vault.Enabled)
	cfg.Vault.Address = getEnvOrDefault("VAULT_ADDR", cfg.Vault.Address)
	cfg.Vault.Token = getEnvOrDefault("VAULT_TOKEN", cfg.Vault.Token)
	cfg.Vault.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", cfg.Vault.MountPath)
	cfg.Vault.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", cfg.Vault.SecretPath)

	cfg.Postgres.Enabled = getEnvBoolOrDefault("POSTGRES_ENABLED", cfg.Postgres.Enabled)
	cfg.Postgres.Host = getEnvOrDefault("POSTGRES_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = getEnvIntOrDefault("POSTGRES_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = getEnvOrDefault("POSTGRES_USER", cfg.Postgres.User)
	cfg.Postgres.Password = getEnvOrDefault("POSTGRES_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Database = getEnvOrDefault("POSTGRES_DATABASE", cfg.Postgres.Database)
	cfg.Postgres.SSLMode = getEnvOrDefault("POSTGRES_SSL_MODE", cfg.Postgres.SSLMode)

	cfg.Redis.Enabled = getEnvBoolOrDefault("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.Redis.Address)
	cfg.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvIntOrDefault("REDIS_DB", cfg.Redis.DB)

	cfg.Advisor.Enabled = getEnvBoolOrDefault("ADVISOR_ENABLED", cfg.Advisor.Enabled)
	cfg.Advisor.Provider = getEnvOrDefault("ADVISOR_PROVIDER", cfg.Advisor.Provider)
	cfg.Advisor.Model = getEnvOrDefault("ADVISOR_MODEL", cfg.Advisor.Model)
	cfg.Advisor.MaxTokens = getEnvIntOrDefault("ADVISOR_MAX_TOKENS", cfg.Advisor.MaxTokens)
	cfg.Advisor.Temperature = getEnvFloatOrDefault("ADVISOR_TEMPERATURE", cfg.Advisor.Temperature)
	cfg.Advisor.Timeout = getEnvDurationOrDefault("ADVISOR_TIMEOUT", cfg.Advisor.Timeout)
	switch cfg.Advisor.Provider {
	case "claude":
		cfg.Advisor.APIKey = getEnvOrDefault("ADVISOR_CLAUDE_API_KEY", cfg.Advisor.APIKey)
	case "openai":
		cfg.Advisor.APIKey = getEnvOrDefault("ADVISOR_OPENAI_API_KEY", cfg.Advisor.APIKey)
	case "deepseek":
		cfg.Advisor.APIKey = getEnvOrDefault("ADVISOR_DEEPSEEK_API_KEY", cfg.Advisor.APIKey)
	}
}

// Validate checks the threshold inversions, unknown-mode strings, and
// negative weights §7 requires ConfigError to catch at construction time.
func (c *Config) Validate() error {
	if c.Engine.BuyThreshold <= c.Engine.SellThreshold {
		return engineerr.NewConfigError("engine.buy_threshold", "must be greater than sell_threshold")
	}
	if c.Engine.ConflictPenalty < 0 {
		return engineerr.NewConfigError("engine.conflict_penalty", "must be non-negative")
	}
	for name, w := range c.Engine.DetectorWeights {
		if w < 0 {
			return engineerr.NewConfigError(fmt.Sprintf("engine.detector_weights.%s", name), "must be non-negative")
		}
	}
	if c.VolumeFilter.RejectThreshold < 0 || c.VolumeFilter.BoostThreshold < 0 {
		return engineerr.NewConfigError("volume_filter", "thresholds must be non-negative")
	}
	if c.VolumeFilter.RejectThreshold >= c.VolumeFilter.BoostThreshold {
		return engineerr.NewConfigError("volume_filter", "reject_threshold must be less than boost_threshold")
	}
	if c.Backtest.InitialCapital <= 0 {
		return engineerr.NewConfigError("backtest.initial_capital", "must be positive")
	}
	if c.Backtest.PositionSizePct <= 0 || c.Backtest.PositionSizePct > 1 {
		return engineerr.NewConfigError("backtest.position_size_pct", "must be in (0, 1]")
	}
	if c.Backtest.MaxPositionSizePct < 0 || c.Backtest.MaxPositionSizePct > 1 {
		return engineerr.NewConfigError("backtest.max_position_size_pct", "must be in [0, 1]")
	}
	if c.Backtest.MaxDailyTrades < 0 {
		return engineerr.NewConfigError("backtest.max_daily_trades", "must be non-negative")
	}
	if c.Advisor.Enabled {
		switch c.Advisor.Provider {
		case "claude", "openai", "deepseek":
		default:
			return engineerr.NewConfigError("advisor.provider", "must be one of claude, openai, deepseek")
		}
	}
	return nil
}

// ToEngineConfig converts the engine section to confluence.Config.
func (c *Config) ToEngineConfig() confluence.Config {
	return confluence.Config{
		Regime: confluence.RegimeConfig{
			ADXPeriod:  c.Engine.Regime.ADXPeriod,
			ADXMin:     c.Engine.Regime.ADXMin,
			ADXMax:     c.Engine.Regime.ADXMax,
			ATRPeriod:  c.Engine.Regime.ATRPeriod,
			ATRMin:     c.Engine.Regime.ATRMin,
			BBPeriod:   c.Engine.Regime.BBPeriod,
			BBStdDev:   c.Engine.Regime.BBStdDev,
			BBWidthMin: c.Engine.Regime.BBWidthMin,
		},
		BuyThreshold:    c.Engine.BuyThreshold,
		SellThreshold:   c.Engine.SellThreshold,
		ConflictPenalty: c.Engine.ConflictPenalty,
	}
}

// ToVolumeFilter builds a volumefilter.Filter from the configured
// thresholds.
func (c *Config) ToVolumeFilter() *volumefilter.Filter {
	return volumefilter.New(
		c.VolumeFilter.RejectThreshold,
		c.VolumeFilter.BoostThreshold,
		c.VolumeFilter.BoostFactor,
		c.VolumeFilter.Lookback,
	)
}

// ToPositionConfig converts the backtest section to position.Config.
func (c *Config) ToPositionConfig() position.Config {
	return position.Config{
		InitialCapital:     c.Backtest.InitialCapital,
		PositionSizePct:    c.Backtest.PositionSizePct,
		Compound:           c.Backtest.Compound,
		MaxDrawdownPct:     c.Backtest.MaxDrawdownPct,
		StopMult:           c.Backtest.StopMult,
		TPMult:             c.Backtest.TPMult,
		MaxPositionSizePct: c.Backtest.MaxPositionSizePct,
		MaxDailyTrades:     c.Backtest.MaxDailyTrades,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
