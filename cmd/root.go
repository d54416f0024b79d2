package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/maganghub/internal/dashboard"
	"github.com/spigell/maganghub/internal/logger"
	"github.com/spigell/maganghub/internal/maganghub"
	"github.com/spigell/maganghub/internal/secrets"
)

const (
	app       = "maganghub"
	envPrefix = "MAGANGHUB"
)

type Config struct {
	APIURL     string        `mapstructure:"api-url"`
	UserAgent  string        `mapstructure:"user-agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max-retries"`
	RetryDelay time.Duration `mapstructure:"retry-delay"`
	BatchSize  int           `mapstructure:"batch-size"`

	List *struct {
		maganghub.PageFilter `mapstructure:",squash"`
		Exclude              *struct {
			Companies []string `mapstructure:"companies"`
		} `mapstructure:"exclude"`
	} `mapstructure:"list"`
	Dashboard *dashboard.StatisticsRequest `mapstructure:"dashboard"`
	Cache     *CacheConfig                 `mapstructure:"cache"`
	Serve     *struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"serve"`
}

type CacheConfig struct {
	RedisURL     string        `mapstructure:"redis-url"`
	RedisURLFile string        `mapstructure:"redis-url-file"`
	TTL          time.Duration `mapstructure:"ttl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "maganghub is a cli for browsing MagangHub internship vacancies and their statistics",
		// errors past flag parsing are runtime failures, not usage mistakes
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is maganghub.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api-url", "https://maganghub.kemnaker.go.id/be/v1/api/list")
	v.SetDefault("user-agent", "")
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("max-retries", 0)
	v.SetDefault("retry-delay", 500*time.Millisecond)
	v.SetDefault("batch-size", 0)

	v.SetDefault("list.province", "")
	v.SetDefault("list.keyword", "")
	v.SetDefault("list.order-by", "")
	v.SetDefault("list.order-direction", "")
	v.SetDefault("list.limit", maganghub.DefaultPageSize)
	v.SetDefault("list.opportunity", "")
	v.SetDefault("list.exclude.companies", []string{})

	v.SetDefault("dashboard.province", "")
	v.SetDefault("dashboard.pages", dashboard.DefaultStatisticsPages)
	v.SetDefault("dashboard.page-size", dashboard.DefaultStatisticsPageSize)

	v.SetDefault("cache.redis-url", "")
	v.SetDefault("cache.redis-url-file", "")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("serve.addr", ":8080")
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Only an explicitly requested config must exist.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("empty configuration")
	}

	return config, nil
}

// setup builds the logger and the config shared by every command.
func setup() (*zap.Logger, *Config, error) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("getting a config: %w", err)
	}

	logger.Debug("starting with config", zap.Any("config", config))

	return logger, config, nil
}

// newClient returns the API client and a closer releasing the province cache.
func newClient(ctx context.Context, config *Config, logger *zap.Logger) (*maganghub.Client, func(), error) {
	client := maganghub.New(logger)
	closer := func() {}

	if config.APIURL != "" {
		client.APIURL = strings.TrimRight(config.APIURL, "/")
	}
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}
	client.MaxRetries = max(config.MaxRetries, 0)
	if config.RetryDelay > 0 {
		client.RetryDelay = config.RetryDelay
	}

	if config.Cache == nil {
		return client, closer, nil
	}

	redisURL, err := secrets.Optional(secrets.Source{
		Name:  "redis url",
		Value: config.Cache.RedisURL,
		File:  config.Cache.RedisURLFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading redis url (set cache.redis-url-file or %s_CACHE_REDIS_URL): %w", envPrefix, err)
	}
	if redisURL == "" {
		return client, closer, nil
	}

	cache, err := maganghub.NewRedisProvinceCache(ctx, redisURL, config.Cache.TTL)
	if err != nil {
		// the province list still works without a cache
		logger.Warn("province cache is disabled", zap.Error(err))
		return client, closer, nil
	}

	logger.Debug("province cache enabled", zap.Duration("ttl", config.Cache.TTL))

	return client.WithProvinceCache(cache), func() { _ = cache.Close() }, nil
}

func newService(client *maganghub.Client, config *Config, logger *zap.Logger) *dashboard.Service {
	service := dashboard.New(client, logger)

	if config.BatchSize > 0 {
		service.WithBatchSize(config.BatchSize)
	}
	if config.List != nil && config.List.Exclude != nil {
		service.WithExcludedCompanies(config.List.Exclude.Companies)
	}

	return service
}
