package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/osmtree/osmtree/pkg/admin"
	"github.com/osmtree/osmtree/pkg/buildinfo"
	"github.com/osmtree/osmtree/pkg/cache"
	"github.com/osmtree/osmtree/pkg/config"
	"github.com/osmtree/osmtree/pkg/export"
	"github.com/osmtree/osmtree/pkg/integrations/nominatim"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
	"github.com/osmtree/osmtree/pkg/observability"
	"github.com/osmtree/osmtree/pkg/tree"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "osmtree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config config.Config

	configPath   string
	noCache      bool
	overpassURL  string
	nominatimURL string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. Debug level also traces cache and
// HTTP activity through the observability hooks.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "osmtree selects OpenStreetMap relation hierarchies and exports them",
		Long: `osmtree searches OpenStreetMap boundaries, builds administrative hierarchies
for the tree widget, and exports the selected relations as JSON or XML,
optionally enriched with tags and geometry from Overpass.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/osmtree/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the response cache")
	flags.StringVar(&c.overpassURL, "overpass-url", "", "Overpass interpreter endpoint")
	flags.StringVar(&c.nominatimURL, "nominatim-url", "", "Nominatim endpoint")

	// Register all subcommands
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.relationCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the configuration and applies flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.overpassURL != "" {
		cfg.OverpassURL = c.overpassURL
	}
	if c.nominatimURL != "" {
		cfg.NominatimURL = c.nominatimURL
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// =============================================================================
// Client Factories
// =============================================================================

// openCache opens the configured cache, falling back to no caching when the
// backend is unavailable.
func (c *CLI) openCache(ctx context.Context) cache.Cache {
	backend, err := c.Config.Cache.Open(ctx)
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return backend
}

func (c *CLI) newOverpass(backend cache.Cache) *overpass.Client {
	return overpass.NewClient(backend, overpass.Options{
		Endpoint:     c.Config.OverpassURL,
		UserAgent:    c.Config.UserAgent,
		QueryTimeout: c.Config.QueryTimeout,
		CacheTTL:     c.Config.Cache.TTL,
	})
}

func (c *CLI) newNominatim(backend cache.Cache) *nominatim.Client {
	return nominatim.NewClient(backend, nominatim.Options{
		Endpoint:  c.Config.NominatimURL,
		UserAgent: c.Config.UserAgent,
	})
}

// normalizer strips the configured widget prefix.
func (c *CLI) normalizer() tree.Normalizer {
	return tree.Normalizer{Prefix: c.Config.Prefix}
}

// newRunner creates an export runner backed by Overpass.
func (c *CLI) newRunner(backend cache.Cache) *export.Runner {
	r := export.NewRunner(c.newOverpass(backend), c.Logger)
	r.Normalizer = c.normalizer()
	return r
}

func (c *CLI) newBuilder(backend cache.Cache) *admin.Builder {
	b := admin.NewBuilder(c.newOverpass(backend), c.Logger)
	b.Prefix = c.Config.Prefix
	return b
}
