package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	LLM        LLMConfig        `mapstructure:"llm"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Cron       CronConfig       `mapstructure:"cron"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type LLMConfig struct {
	APIKeyEnv       string        `mapstructure:"api_key_env"`
	FastModel       string        `mapstructure:"fast_model"`
	DeepModel       string        `mapstructure:"deep_model"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxOutputTokens int64         `mapstructure:"max_output_tokens"`
}

type MarketDataConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IndexTicker string        `mapstructure:"index_ticker"`
	VolTicker   string        `mapstructure:"vol_ticker"`
}

type CacheConfig struct {
	Backend   string `mapstructure:"backend"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
}

type CronConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	PatternMining string `mapstructure:"pattern_mining"`
	MarketSync    string `mapstructure:"market_sync"`
}

type AnalysisConfig struct {
	QualitativeMinEntries  int `mapstructure:"qualitative_min_entries"`
	QualitativeWindowDays  int `mapstructure:"qualitative_window_days"`
	DraftCandidateLimit    int `mapstructure:"draft_candidate_limit"`
	ReminderHistoryLimit   int `mapstructure:"reminder_history_limit"`
	ReportTopPatternsLimit int `mapstructure:"report_top_patterns_limit"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("llm.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("llm.fast_model", "gpt-4o-mini")
	v.SetDefault("llm.deep_model", "gpt-4o")
	v.SetDefault("llm.timeout", "45s")
	v.SetDefault("llm.max_output_tokens", 4096)
	v.SetDefault("market_data.base_url", "http://localhost:5000")
	v.SetDefault("market_data.timeout", "15s")
	v.SetDefault("market_data.index_ticker", "SPY")
	v.SetDefault("market_data.vol_ticker", "^VIX")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.pattern_mining", "0 0 6 * * *")
	v.SetDefault("cron.market_sync", "0 30 22 * * 1-5")
	v.SetDefault("analysis.qualitative_min_entries", 20)
	v.SetDefault("analysis.qualitative_window_days", 90)
	v.SetDefault("analysis.draft_candidate_limit", 50)
	v.SetDefault("analysis.reminder_history_limit", 20)
	v.SetDefault("analysis.report_top_patterns_limit", 5)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
