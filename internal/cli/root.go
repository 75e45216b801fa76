// Package cli provides the scenectl command-line interface.
package cli

import (
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ha-image-scene/internal/config"
	"ha-image-scene/internal/homeassistant"
	"ha-image-scene/internal/storage"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	haURL     string
	haURLSet  bool
	token     string
	tokenPath string
	timeout   time.Duration
	verbose   bool
}

// NewRootCommand builds the scenectl command tree. Defaults come from the
// same environment the server reads.
func NewRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{
			HABaseURL:         "http://homeassistant.local:8123",
			HATimeoutSec:      10,
			TokenCachePath:    "./data/token.json",
			MaxImageDimension: 500,
			MinDistance:       0.12,
			EdgePadding:       0.08,
			DefaultBrightness: 200,
		}
	}

	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "scenectl",
		Short: "Build Home Assistant light scenes from image colors",
		Long: `scenectl samples colors from an image at one random point per light,
corrects them for RGB bulbs, and pushes the result to Home Assistant as a scene.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.haURLSet = cmd.Flags().Changed("ha-url")
		},
	}
	registerGlobalFlags(root.PersistentFlags(), opts, cfg)

	root.AddCommand(newAreasCommand(opts))
	root.AddCommand(newLightsCommand(opts))
	root.AddCommand(newApplyCommand(opts, cfg))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func registerGlobalFlags(fs *pflag.FlagSet, opts *globalOptions, cfg config.Config) {
	fs.StringVar(&opts.haURL, "ha-url", cfg.HABaseURL, "Home Assistant base URL")
	fs.StringVar(&opts.token, "token", cfg.HAToken, "long-lived access token (falls back to the token cache)")
	fs.StringVar(&opts.tokenPath, "token-cache", cfg.TokenCachePath, "path of the cached access token")
	fs.DurationVar(&opts.timeout, "timeout", time.Duration(cfg.HATimeoutSec)*time.Second, "Home Assistant request timeout")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
}

func (o *globalOptions) logger() hclog.Logger {
	level := hclog.Warn
	if o.verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "scenectl",
		Level:  level,
		Output: os.Stderr,
	})
}

// client resolves the token from the flag first, then the cache file. A
// cached token is sent to the instance it was stored for unless --ha-url was
// given explicitly.
func (o *globalOptions) client() *homeassistant.Client {
	baseURL, token := o.haURL, o.token
	if token == "" && o.tokenPath != "" {
		if store, err := storage.NewTokenStore(o.tokenPath); err == nil {
			cached := store.Get()
			token = cached.AccessToken
			if cached.BaseURL != "" && !o.haURLSet {
				baseURL = cached.BaseURL
			}
		}
	}
	return homeassistant.NewClient(baseURL, token, o.timeout, o.logger().Named("homeassistant"))
}
