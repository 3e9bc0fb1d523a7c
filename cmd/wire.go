package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	openaiadapter "github.com/kvasern/roost/internal/adapters/analysis/openai"
	redisadapter "github.com/kvasern/roost/internal/adapters/cache/redis"
	"github.com/kvasern/roost/internal/adapters/cookies"
	marketadapter "github.com/kvasern/roost/internal/adapters/market"
	statusadapter "github.com/kvasern/roost/internal/adapters/render/status"
	tomlrepo "github.com/kvasern/roost/internal/adapters/repo/toml"
	"github.com/kvasern/roost/internal/adapters/scraper"
	"github.com/kvasern/roost/internal/application"
)

const configDirName = ".roost"

type appConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccountsPath string
	CookiesDir   string

	Primary  openaiadapter.Endpoint
	Fallback openaiadapter.Endpoint

	MarketBaseURL string

	SearchMax     int
	TimelineMax   int
	CallTimeout   time.Duration
	QuarantineTTL time.Duration

	Debug bool
}

type app struct {
	cfg            appConfig
	statusRenderer func([]application.AccountStatus) (string, error)
}

// services bundles everything built at command run time. Construction dials
// Redis, so it is deferred until a command actually needs it.
type services struct {
	fetch    *application.FetchService
	analysis *application.AnalysisService
	pool     *application.AccountPool
	logger   *zap.Logger
}

func wireApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:            cfg,
		statusRenderer: statusadapter.Render,
	}, nil
}

func loadConfig() (appConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return appConfig{}, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(homeDir, configDirName))
	v.SetEnvPrefix("ROOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("accounts.path", filepath.Join(homeDir, configDirName, "accounts.toml"))
	v.SetDefault("cookies.dir", filepath.Join(homeDir, configDirName, "cookies"))
	v.SetDefault("analysis.base_url", "https://api.openai.com/v1")
	v.SetDefault("analysis.model", "gpt-4o")
	v.SetDefault("analysis.fallback_base_url", "")
	v.SetDefault("analysis.fallback_model", "")
	v.SetDefault("market.base_url", marketadapter.DefaultBaseURL)
	v.SetDefault("fetch.search_max", application.DefaultSearchMax)
	v.SetDefault("fetch.timeline_max", application.DefaultTimelineMax)
	v.SetDefault("fetch.call_timeout", application.DefaultCallTimeout)
	v.SetDefault("pool.quarantine_ttl", application.DefaultQuarantineTTL)
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return appConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return appConfig{
		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),
		AccountsPath:  v.GetString("accounts.path"),
		CookiesDir:    v.GetString("cookies.dir"),
		Primary: openaiadapter.Endpoint{
			BaseURL: v.GetString("analysis.base_url"),
			APIKey:  v.GetString("analysis.api_key"),
			Model:   v.GetString("analysis.model"),
		},
		Fallback: openaiadapter.Endpoint{
			BaseURL: v.GetString("analysis.fallback_base_url"),
			APIKey:  v.GetString("analysis.fallback_api_key"),
			Model:   v.GetString("analysis.fallback_model"),
		},
		MarketBaseURL: v.GetString("market.base_url"),
		SearchMax:     v.GetInt("fetch.search_max"),
		TimelineMax:   v.GetInt("fetch.timeline_max"),
		CallTimeout:   v.GetDuration("fetch.call_timeout"),
		QuarantineTTL: v.GetDuration("pool.quarantine_ttl"),
		Debug:         v.GetBool("debug"),
	}, nil
}

func (a *app) services(cmd *cobra.Command) (*services, error) {
	logger, err := a.buildLogger(cmd)
	if err != nil {
		return nil, err
	}

	rdb, err := redisadapter.NewClient(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	store := redisadapter.NewStore(rdb)

	roster, err := tomlrepo.NewRosterAt(a.cfg.AccountsPath)
	if err != nil {
		return nil, fmt.Errorf("wire account roster: %w", err)
	}

	identities, err := roster.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no accounts configured in %s", a.cfg.AccountsPath)
	}

	cookieStore := cookies.NewStore(a.cfg.CookiesDir)
	provisioner := scraper.NewProvisioner(cookieStore, logger)

	pool := application.NewAccountPool(identities, provisioner, store, logger, application.PoolConfig{
		QuarantineTTL: a.cfg.QuarantineTTL,
	})
	guard := application.NewCallGuard(a.cfg.CallTimeout, pool, logger)

	fetch := application.NewFetchService(pool, guard, store, application.DefaultCacheTTLs(), application.FetchConfig{
		SearchMax:   a.cfg.SearchMax,
		TimelineMax: a.cfg.TimelineMax,
	}, logger)

	summarizer := openaiadapter.NewClient(a.cfg.Primary, a.cfg.Fallback, nil, logger)
	market := marketadapter.NewDexScreener(a.cfg.MarketBaseURL, &http.Client{Timeout: 15 * time.Second})

	analysis := application.NewAnalysisService(summarizer, market, store, application.DefaultCacheTTLs().Analysis, logger)

	return &services{
		fetch:    fetch,
		analysis: analysis,
		pool:     pool,
		logger:   logger,
	}, nil
}

func (a *app) buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose && !a.cfg.Debug {
		return zap.NewNop(), nil
	}

	zapCfg := zap.NewDevelopmentConfig()
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
