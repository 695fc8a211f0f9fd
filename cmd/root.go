package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/madelynarsenault/portfolio/internal/config"
	"github.com/madelynarsenault/portfolio/internal/logger"
	"github.com/madelynarsenault/portfolio/internal/model"
	"github.com/madelynarsenault/portfolio/internal/writing"
)

var cfgFile string
var appConfig config.Config
var siteData *model.SiteData

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Builds a static personal portfolio site",
	Long: `portfolio renders a personal portfolio site (landing, about, projects and
a writing section fed by Medium) from markdown content and HTML layouts into
a static output directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute(site *model.SiteData) {
	siteData = site

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("outputDir", "public")
	v.SetDefault("sourceDir", ".")
	v.SetDefault("baseURL", "")
	v.SetDefault("siteTitle", "My Portfolio")
	v.SetDefault("logLevel", "info")

	v.SetDefault("medium.username", "")
	v.SetDefault("medium.source", "json")
	v.SetDefault("medium.baseURL", "")
	v.SetDefault("medium.limit", writing.DefaultLimit)
	v.SetDefault("medium.timeout", 30*time.Second)

	v.SetDefault("cache.redisURL", "")
	v.SetDefault("cache.prefix", "portfolio:")
	v.SetDefault("cache.ttl", time.Hour)

	v.SetDefault("deploy.bucket", "")
	v.SetDefault("deploy.prefix", "")
	v.SetDefault("deploy.region", "us-east-1")
	v.SetDefault("deploy.endpoint", "")
	v.SetDefault("deploy.accessKeyID", "")
	v.SetDefault("deploy.secretAccessKey", "")
	v.SetDefault("deploy.cacheControl", "public, max-age=300")
}

func initializeConfig(_ *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			configFound = false
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  appConfig.LogLevel,
		Output: "stderr",
		Pretty: isatty.IsTerminal(os.Stderr.Fd()),
	}); err != nil {
		return err
	}

	if !configFound {
		logger.Info().Msg("no config file found, using defaults and environment variables")
	} else {
		logger.Info().Str("file", v.ConfigFileUsed()).Msg("using config file")
		if err := loadSiteParams(v.ConfigFileUsed(), siteData); err != nil {
			return err
		}
	}
	return nil
}

// loadSiteParams exposes the raw config file to templates as .Site.Param.
func loadSiteParams(filename string, site *model.SiteData) error {
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", filename, err)
	}

	params := map[string]interface{}{}
	if err := yaml.Unmarshal(yamlFile, &params); err != nil {
		return fmt.Errorf("error unmarshalling config file %s: %w", filename, err)
	}
	site.Config = params
	return nil
}
