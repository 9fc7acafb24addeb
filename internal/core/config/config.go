package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 非空则额外写文件并按大小切割
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type JWT struct {
	Secret  string
	Issuer  string
	TTLDays int
}

type Upload struct {
	Dir string
}

type Redis struct {
	Addr            string `mapstructure:"addr"`
	Password        string `mapstructure:"password"`
	DB              int    `mapstructure:"db"`
	AnalyticsTTLSec int    `mapstructure:"analytics_ttl_sec"` // >0 才启用 analytics 缓存
}

type Store struct {
	Driver             string // memory / postgres / mysql
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	Upload Upload
	Store  Store
	Redis  Redis `mapstructure:"redis"`
}

// Load 读 YAML + APP_ 前缀环境变量。配置文件缺失不是错误：
// 默认值保证裸启动可用（对齐原始服务不带任何配置就能跑的行为）。
func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "civicsync")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5001)
	v.SetDefault("app.http.readtimeoutsec", 15)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 3)
	v.SetDefault("log.maxagedays", 7)
	v.SetDefault("jwt.secret", "civicsync-secret-key-2024")
	v.SetDefault("jwt.issuer", "civicsync")
	v.SetDefault("jwt.ttldays", 7)
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.maxopenconns", 20)
	v.SetDefault("store.maxidleconns", 10)
	v.SetDefault("store.connmaxlifetimemin", 30)
	v.SetDefault("store.automigrate", true)
	v.SetDefault("store.loglevel", "warn")

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !os.IsNotExist(err) {
			log.Fatalf("read config: %v", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
