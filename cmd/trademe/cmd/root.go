// Package cmd implements the trademe CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/trademe/internal/app"
	"github.com/donaldgifford/trademe/internal/config"
	"github.com/donaldgifford/trademe/internal/store"
	"github.com/donaldgifford/trademe/pkg/logger"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

// envKeyReplacer maps flag names to TRADEME_* variables, so
// --consumer-key is read from TRADEME_CONSUMER_KEY.
var envKeyReplacer = strings.NewReplacer("-", "_")

var rootCmd = &cobra.Command{
	Use:   "trademe",
	Short: "Command-line client for the Trade Me API",
	Long: "trademe is a command-line client for the Trade Me API.\n" +
		"It authorizes against your Trade Me account, browses categories,\n" +
		"searches listings and manages your watchlist and bids.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running
// request.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initViper)

	flags := rootCmd.PersistentFlags()
	flags.String("config", defaultConfigPath(), "config file")
	flags.String("env-file", ".env", "env file loaded before the config")
	flags.String("environment", "", "sandbox or production (overrides config)")
	flags.String("consumer-key", "", "OAuth consumer key (overrides config)")
	flags.String("consumer-secret", "", "OAuth consumer secret (overrides config)")
	flags.String("output", "table", "output format (table, json)")
	flags.BoolP("verbose", "v", false, "log API calls to stderr")

	for _, name := range []string{
		"config", "env-file", "environment", "consumer-key", "consumer-secret", "output", "verbose",
	} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(
		authCmd(),
		categoriesCmd(),
		searchCmd(),
		listingCmd(),
		memberCmd(),
		watchlistCmd(),
		bidCmd(),
		buyNowCmd(),
		summaryCmd(),
		versionCmd(),
	)
}

func initViper() {
	viper.SetEnvPrefix("TRADEME")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "trademe.yaml"
	}
	return filepath.Join(dir, "trademe", "config.yaml")
}

// loadConfig reads the config file when it exists and applies flag and
// TRADEME_* environment overrides. Without a file, the defaults plus the
// overrides must supply the credentials.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFiles(viper.GetString("env-file")); err != nil {
		return nil, err
	}

	path := viper.GetString("config")
	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, err
	}

	if v := viper.GetString("consumer-key"); v != "" {
		cfg.TradeMe.ConsumerKey = v
	}
	if v := viper.GetString("consumer-secret"); v != "" {
		cfg.TradeMe.ConsumerSecret = v
	}
	if v := viper.GetString("environment"); v != "" {
		cfg.TradeMe.Environment = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (config file %s): %w", path, err)
	}
	return cfg, nil
}

// session is everything a command needs to talk to Trade Me.
type session struct {
	cfg    *config.Config
	store  store.Store
	client *trademe.Client
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if viper.GetBool("verbose") {
		level = "debug"
	}
	log := logger.New(level, logger.FormatPretty)

	st, err := app.OpenStore(ctx, &cfg.TokenStore)
	if err != nil {
		return nil, err
	}

	client, err := app.NewClient(ctx, cfg, st, log, nil)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &session{cfg: cfg, store: st, client: client}, nil
}

func (s *session) Close() {
	s.store.Close()
}

// withSession runs fn with an open session and closes it afterwards.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
