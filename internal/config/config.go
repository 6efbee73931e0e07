package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 CROWDFUND_SERVER_PORT
const EnvPrefix = "CROWDFUND"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 文件路径或 DSN
}

// OracleConfig 支付预言机配置
type OracleConfig struct {
	Driver         string          `mapstructure:"driver"`          // http, static
	BaseURL        string          `mapstructure:"base_url"`        // http 预言机地址
	TimeoutSeconds int             `mapstructure:"timeout_seconds"` // 单次查询超时
	Payments       []StaticPayment `mapstructure:"payments"`        // static 预言机的支付数据
}

// Timeout 查询超时时间
func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// StaticPayment 本地开发用的固定支付记录
type StaticPayment struct {
	TxHash          string `mapstructure:"tx_hash"`
	SenderAddress   string `mapstructure:"sender_address"`
	ReceiverAddress string `mapstructure:"receiver_address"`
	InvoiceAmount   string `mapstructure:"invoice_amount"`
	Memo            string `mapstructure:"memo"`
}

// ChainConfig 链上回执校验配置
type ChainConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ChainType     string `mapstructure:"chain_type"`    // ethereum, polygon, base, etc.
	RpcUrl        string `mapstructure:"rpc_url"`       // RPC节点URL
	Confirmations uint64 `mapstructure:"confirmations"` // 需要的确认数
}

type SchedulerConfig struct {
	StatsInterval int `mapstructure:"stats_interval"` // 秒，0 表示不启动
	Workers       int `mapstructure:"workers"`        // 统计协程池大小
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// Load 从默认路径加载配置
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom 加载配置，path 为空时在默认目录中查找 config.yaml
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/crowdfund")
	}

	setDefaults(v)

	// 自动读取环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置组合是否可用
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Oracle.Driver {
	case "http":
		if c.Oracle.BaseURL == "" {
			return errors.New("oracle.base_url is required for the http oracle")
		}
	case "static":
	default:
		return fmt.Errorf("unsupported oracle driver %q", c.Oracle.Driver)
	}
	if c.Oracle.TimeoutSeconds <= 0 {
		return errors.New("oracle.timeout_seconds must be positive")
	}
	if c.Chain.Enabled && c.Chain.RpcUrl == "" {
		return errors.New("chain.rpc_url is required when chain verification is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "crowdfunding")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "crowdfund.db")
	v.SetDefault("oracle.driver", "http")
	v.SetDefault("oracle.base_url", "https://tx.yodl.me/api/v1")
	v.SetDefault("oracle.timeout_seconds", 10)
	v.SetDefault("chain.enabled", false)
	v.SetDefault("chain.chain_type", "ethereum")
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.confirmations", 1)
	v.SetDefault("scheduler.stats_interval", 60)
	v.SetDefault("scheduler.workers", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}
