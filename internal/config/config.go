package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Port      int    `mapstructure:"PORT"`
	MongoURI  string `mapstructure:"MONGODB_URI"`
	MongoDB   string `mapstructure:"MONGODB_NAME"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Mail is optional; when Driver is empty no welcome email is sent.
	MailDriver       string `mapstructure:"MAIL_DRIVER"` // "smtp" or "mailersend"
	MailFrom         string `mapstructure:"MAIL_FROM"`
	MailFromName     string `mapstructure:"MAIL_FROM_NAME"`
	SMTPHost         string `mapstructure:"SMTP_HOST"`
	SMTPPort         int    `mapstructure:"SMTP_PORT"`
	SMTPUsername     string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword     string `mapstructure:"SMTP_PASSWORD"`
	MailerSendAPIKey string `mapstructure:"MAILERSEND_API_KEY"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", 5000)
	viper.SetDefault("MONGODB_URI", "")
	viper.SetDefault("MONGODB_NAME", "admin_users")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAIL_DRIVER", "")
	viper.SetDefault("MAIL_FROM", "")
	viper.SetDefault("MAIL_FROM_NAME", "")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("MAILERSEND_API_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Both are mandatory; the process must not start without them.
	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return &cfg, nil
}
