// Package config 提供应用程序配置加载功能
// 使用viper从配置文件和环境变量中读取配置
// 支持服务器、数据库、内容存储和日志等配置项
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`        // 服务器配置
	Database     DatabaseConfig     `mapstructure:"database"`      // 关系型数据库配置
	ContentStore ContentStoreConfig `mapstructure:"content_store"` // 内容文档存储配置
	Logger       LoggerConfig       `mapstructure:"logger"`        // 日志配置
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Port         int `mapstructure:"port"`          // 监听端口
	ReadTimeout  int `mapstructure:"read_timeout"`  // 读超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"` // 写超时（秒）
}

// DatabaseConfig 关系型数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // 数据库驱动，目前支持sqlite
	DSN             string `mapstructure:"dsn"`               // 数据源名称
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // 最大打开连接数
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大存活时间（秒）
}

// ContentStoreConfig 笔记内容文档存储配置
// 笔记正文存放在独立的文档存储中，通过content_ref关联
type ContentStoreConfig struct {
	Driver     string `mapstructure:"driver"`     // 存储驱动（mongo、memory）
	URI        string `mapstructure:"uri"`        // MongoDB连接URI
	Database   string `mapstructure:"database"`   // 文档数据库名称
	Collection string `mapstructure:"collection"` // 笔记内容集合名称
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level    string `mapstructure:"level"`     // 日志级别
	Format   string `mapstructure:"format"`    // 日志格式（json、text）
	Output   string `mapstructure:"output"`    // 输出方式（console、file、both）
	FilePath string `mapstructure:"file_path"` // 日志文件路径
}

// Load 加载应用程序配置
// 返回值:
//
//	*Config - 配置实例
//	error - 加载失败时返回错误信息
//
// 加载顺序: 默认值 -> 配置文件(config.yaml) -> 环境变量(NOTEDECK_前缀)
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("NOTEDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 配置文件缺失时使用默认值，其他读取错误直接失败
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "notedeck.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)

	// 内容存储默认配置
	v.SetDefault("content_store.driver", "memory")
	v.SetDefault("content_store.uri", "mongodb://localhost:27017")
	v.SetDefault("content_store.database", "notedeck")
	v.SetDefault("content_store.collection", "note_contents")

	// 日志默认配置
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "console")
	v.SetDefault("logger.file_path", "logs/app.log")
}
