package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	SiteTitle string `mapstructure:"siteTitle" validate:"required"`
	OutputDir string `mapstructure:"outputDir" validate:"required"`
	SourceDir string `mapstructure:"sourceDir" validate:"required"`
	BaseURL   string `mapstructure:"baseURL" validate:"omitempty,url"`
	LogLevel  string `mapstructure:"logLevel" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`

	Medium MediumConfig `mapstructure:"medium"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Deploy DeployConfig `mapstructure:"deploy"`
}

// MediumConfig drives the writing section. An empty Username turns it off.
type MediumConfig struct {
	Username string        `mapstructure:"username"`
	Source   string        `mapstructure:"source" validate:"omitempty,oneof=json rss"`
	BaseURL  string        `mapstructure:"baseURL" validate:"omitempty,url"`
	Limit    int           `mapstructure:"limit" validate:"gte=1,lte=50"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redisURL"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type DeployConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey" validate:"required_with=AccessKeyID"`
	CacheControl    string `mapstructure:"cacheControl"`
}

// MediumEnabled reports whether a Medium user is configured.
func (c Config) MediumEnabled() bool {
	return strings.TrimSpace(c.Medium.Username) != ""
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
