package configs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/songzhibin97/merchant/internal/risk"
	"github.com/songzhibin97/merchant/internal/trading"
)

const (
	ExchangeChatex  = "chatex"
	ExchangeBinance = "binance"

	defaultRefreshInterval = "10s"
	defaultBookDepth       = 30
	defaultRetryCount      = 3
	defaultTimeout         = "15s"
)

type Config struct {
	// 基础配置
	Exchange        string   `json:"exchange" yaml:"exchange"`                 // chatex 或 binance
	Proxy           string   `json:"proxy" yaml:"proxy"`                       // HTTP(S) 代理
	Pairs           []string `json:"pairs" yaml:"pairs"`                       // 交易对列表, eg: TON/USDT
	RefreshInterval string   `json:"refresh_interval" yaml:"refresh_interval"` // 行情刷新间隔
	MetricsAddr     string   `json:"metrics_addr" yaml:"metrics_addr"`         // prometheus 监听地址, 空则不启动

	Log Log `json:"log" yaml:"log"`

	// 风险控制参数, max_position_size 为 0 时不启用
	RiskParams risk.RiskParameters `json:"risk_parameters" yaml:"risk_params"`

	// 交易参数
	TradingConfig TradingConfig `json:"trading_config" yaml:"trading_config"`

	// 交易所配置
	Chatex         Chatex         `json:"chatex" yaml:"chatex"`
	ExchangeConfig ExchangeConfig `json:"exchange_config" yaml:"exchange_config"`
}

type Log struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

type TradingConfig struct {
	Epsilon   float64 `json:"epsilon" yaml:"epsilon"`       // 价格匹配容差
	BookDepth int     `json:"book_depth" yaml:"book_depth"` // 市价单扫描的挂单数量
}

type Chatex struct {
	BaseURL      string `json:"base_url" yaml:"base_url"`
	RefreshToken string `json:"refresh_token" yaml:"refresh_token"`
	RetryCount   int    `json:"retry_count" yaml:"retry_count"` // 仅对 GET 生效
	Timeout      string `json:"timeout" yaml:"timeout"`
}

// ExchangeConfig holds the Binance credentials.
type ExchangeConfig struct {
	Debug     bool   `json:"debug" yaml:"debug"`
	APIKey    string `json:"api_key" yaml:"api_key"`       // 交易所API密钥
	SecretKey string `json:"secret_key" yaml:"secret_key"` // 交易所密钥
}

// Load reads the configuration at path, JSON or YAML by extension, applies
// .env and environment overrides and validates the result. An empty path
// yields the defaults plus the environment.
func Load(path string) (*Config, error) {
	config := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshal(path, data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func unmarshal(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// applyEnv lets secrets live outside the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("MERCHANT_EXCHANGE"); v != "" {
		c.Exchange = v
	}
	if v := os.Getenv("MERCHANT_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CHATEX_REFRESH_TOKEN"); v != "" {
		c.Chatex.RefreshToken = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.ExchangeConfig.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.ExchangeConfig.SecretKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Exchange == "" {
		c.Exchange = ExchangeChatex
	}
	if c.RefreshInterval == "" {
		c.RefreshInterval = defaultRefreshInterval
	}
	if c.TradingConfig.Epsilon == 0 {
		c.TradingConfig.Epsilon = trading.DefaultEpsilon
	}
	if c.TradingConfig.BookDepth == 0 {
		c.TradingConfig.BookDepth = defaultBookDepth
	}
	if c.Chatex.RetryCount == 0 {
		c.Chatex.RetryCount = defaultRetryCount
	}
	if c.Chatex.Timeout == "" {
		c.Chatex.Timeout = defaultTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Exchange {
	case ExchangeChatex, ExchangeBinance:
	default:
		return fmt.Errorf("unsupported exchange: %s", c.Exchange)
	}
	if _, err := c.TradingPairs(); err != nil {
		return err
	}
	if _, err := c.RefreshDuration(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Chatex.Timeout); err != nil {
		return fmt.Errorf("invalid chatex timeout: %w", err)
	}
	if c.TradingConfig.Epsilon < 0 {
		return errors.New("invalid epsilon: must be positive")
	}
	if c.TradingConfig.BookDepth < 0 {
		return errors.New("invalid book depth: must be positive")
	}
	if c.Chatex.RetryCount < 0 {
		return errors.New("invalid retry count: must not be negative")
	}
	if c.RiskEnabled() {
		if err := c.RiskParams.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RiskEnabled reports whether orders go through the risk manager.
func (c *Config) RiskEnabled() bool {
	return c.RiskParams.MaxPositionSize > 0
}

// TradingPairs parses Pairs.
func (c *Config) TradingPairs() ([]trading.CoinPairID, error) {
	ids := make([]trading.CoinPairID, 0, len(c.Pairs))
	for _, p := range c.Pairs {
		id, err := trading.ParseCoinPairID(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pairs: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Config) RefreshDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid refresh interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid refresh interval: %s", c.RefreshInterval)
	}
	return d, nil
}

func (c *Config) ChatexTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Chatex.Timeout)
	return d
}
