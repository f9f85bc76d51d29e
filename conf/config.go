package conf

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

// 配置加载（数据库、Binance、引擎参数等）

type Db struct {
	DbName   string `yaml:"dbname"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

// RedisConfig is used to configure redis
type RedisConfig struct {
	Addr         string `yaml:"address"`
	Password     string `yaml:"password"`
	Db           int    `yaml:"db"`
	PoolSize     int    `yaml:"pool-size"`
	MinIdleConns int    `yaml:"min-idle-conns"`
	IdleTimeout  int    `yaml:"idle-timeout"`
}

type JwtConfig struct {
	Secret                  string `yaml:"secret"`
	JwtTtl                  int64  `yaml:"ttl"`              // token 有效期（秒）
	JwtBlacklistGracePeriod int64  `yaml:"blacklistperiod" ` // 黑名单宽限时间（秒）
}

type KafkaConfig struct {
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`
}

type EmailConfig struct {
	Host     string `yaml:"smtp_host"`
	Port     int    `yaml:"smtp_port"`
	Username string `yaml:"smtp_user"`
	Password string `yaml:"smtp_password"`
	Sender   string `yaml:"smtp_sender"`
	PreCheck bool   `yaml:"precheck"` // 注册时是否校验邮箱可达
}

// Duration 让yaml里可以写 "30s" "1h" 这种时长
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		// 裸数字按秒处理
		var n int64
		if err2 := value.Decode(&n); err2 != nil {
			return err
		}
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// BinanceConfig 行情数据源配置
type BinanceConfig struct {
	BaseURL        string   `yaml:"base_url"`
	RequestTimeout Duration `yaml:"request_timeout"`
	RatePerSec     int      `yaml:"rate_per_sec"` // 每秒请求数上限
	MaxRetries     int      `yaml:"max_retries"`
	RetryDelay     Duration `yaml:"retry_delay"`
}

// EngineConfig 止损引擎参数
type EngineConfig struct {
	SweepInterval   Duration `yaml:"sweep_interval"`   // 止损检查间隔
	RefreshInterval Duration `yaml:"refresh_interval"` // 均线刷新间隔
	Symbols         []string `yaml:"symbols"`
}

type Config struct {
	AppName      string `yaml:"app_name"`
	Listen       string `yaml:"listen"`
	Mode         string `yaml:"mode"`
	Language     string `yaml:"language"`
	MaxPingCount int    `yaml:"max-ping-count"`
	ExternalURL  string `yaml:"external_url"`

	Db      `yaml:"database"`
	Log     LogConfig     `yaml:"log"`
	Jwt     JwtConfig     `yaml:"jwt"`
	Redis   RedisConfig   `yaml:"redis"`
	Email   EmailConfig   `yaml:"email"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Binance BinanceConfig `yaml:"binance"`
	Engine  EngineConfig  `yaml:"engine"`
}

var AppConfig Config

func LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Read config file error %w", err)
	}
	if err := yaml.Unmarshal(data, &AppConfig); err != nil {
		return fmt.Errorf("Unmarshal config yaml error: %w", err)
	}
	applyDefaults(&AppConfig)
	return nil
}

func applyDefaults(c *Config) {
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com/api/v3"
	}
	if c.Binance.RequestTimeout == 0 {
		c.Binance.RequestTimeout = Duration(10 * time.Second)
	}
	if c.Binance.RatePerSec == 0 {
		c.Binance.RatePerSec = 10
	}
	if c.Binance.MaxRetries == 0 {
		c.Binance.MaxRetries = 2
	}
	if c.Binance.RetryDelay == 0 {
		c.Binance.RetryDelay = Duration(time.Second)
	}
	if c.Engine.SweepInterval == 0 {
		c.Engine.SweepInterval = Duration(30 * time.Second)
	}
	if c.Engine.RefreshInterval == 0 {
		c.Engine.RefreshInterval = Duration(time.Hour)
	}
	if len(c.Engine.Symbols) == 0 {
		c.Engine.Symbols = []string{"BTC", "ETH", "XRP"}
	}
}
