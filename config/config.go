package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Host string `mapstructure:"host" json:"host,omitempty"`
		Port int64  `mapstructure:"port" json:"port,omitempty"`
		// EncryptionSecret re-encrypts wallet records at rest; it never
		// protects wallet key material itself.
		EncryptionSecret string `mapstructure:"encryption_secret" json:"encryption_secret,omitempty"`
	} `mapstructure:"server" json:"server"`

	Redis struct {
		Host     string `mapstructure:"host" json:"host,omitempty"`
		Port     string `mapstructure:"port" json:"port,omitempty"`
		User     string `mapstructure:"user" json:"user,omitempty"`
		Password string `mapstructure:"password" json:"password,omitempty"`
		DB       int    `mapstructure:"db" json:"db,omitempty"`
	} `mapstructure:"redis" json:"redis,omitempty"`

	BlockStorage struct {
		Host      string `mapstructure:"host" json:"host,omitempty"`
		Region    string `mapstructure:"region" json:"region,omitempty"`
		AccessKey string `mapstructure:"access_key" json:"access_key,omitempty"`
		SecretKey string `mapstructure:"secret" json:"secret,omitempty"`
		Bucket    string `mapstructure:"bucket" json:"bucket,omitempty"`
		// RecordsFilePath is the local fallback directory when S3 is unreachable.
		RecordsFilePath string `mapstructure:"records_file_path" json:"records_file_path,omitempty"`
	} `mapstructure:"block_storage" json:"block_storage,omitempty"`

	Datadog struct {
		Host string `mapstructure:"host" json:"host,omitempty"`
		Port string `mapstructure:"port" json:"port,omitempty"`
	} `mapstructure:"datadog" json:"datadog,omitempty"`
}

// ReadConfig reads the named config file from the working directory, with
// environment variables taking precedence.
func ReadConfig(nameOfConfig string) (*Config, error) {
	viper.SetConfigName(nameOfConfig)
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("datadog.host", "localhost")
	viper.SetDefault("datadog.port", "8125")
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
