package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
	"github.com/creativedestruction/searchdash/internal/logger"
)

// version is set by SetVersion from main.
var version = "dev"

// Options are the global flags handed to the bootstrapper.
type Options struct {
	// ConfigDir overrides the directory holding config.toml.
	ConfigDir string

	// Memory runs against an in-process store seeded with demo documents.
	Memory bool

	// Offline asks for the settings service only; no store is opened.
	Offline bool
}

// Services are the core services the commands call.
type Services struct {
	Search   driving.SearchService
	Index    driving.IndexService
	Stats    driving.StatsService
	Settings driving.SettingsService

	// Close releases the store connection. May be nil.
	Close func() error
}

// Bootstrapper builds the services once global flags are parsed.
type Bootstrapper func(ctx context.Context, opts Options) (*Services, error)

var (
	rootOptions Options
	verbose     bool

	bootstrap Bootstrapper
	current   *Services
)

var rootCmd = &cobra.Command{
	Use:   "searchdash",
	Short: "Search tweets, Spaces and Discord messages stored in Redis",
	Long: `searchdash keeps a RediSearch index over the tweets, Twitter Spaces and
Discord messages stored as hashes in Redis, and searches it.

Documents are read from the Tweet:, Spaces: and discord_message: key prefixes.
The index is checked, created or rebuilt as needed before every search.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootOptions.ConfigDir, "config", "", "config directory (default ~/.searchdash)")
	rootCmd.PersistentFlags().BoolVar(&rootOptions.Memory, "memory", false, "use an in-memory store with demo data")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrapper registers the function that builds the services.
func SetBootstrapper(b Bootstrapper) {
	bootstrap = b
}

// SetServices installs ready-made services, bypassing the bootstrapper.
func SetServices(s *Services) {
	current = s
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if current != nil && current.Close != nil {
		if cerr := current.Close(); cerr != nil {
			logger.Warn("closing store: %v", cerr)
		}
	}
	return err
}

// services returns the installed services, bootstrapping them on first use.
func services(cmd *cobra.Command) (*Services, error) {
	return bootstrapServices(cmd, false)
}

// offlineServices is like services but does not connect to the store.
func offlineServices(cmd *cobra.Command) (*Services, error) {
	return bootstrapServices(cmd, true)
}

func bootstrapServices(cmd *cobra.Command, offline bool) (*Services, error) {
	if current != nil {
		return current, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}
	opts := rootOptions
	opts.Offline = offline
	s, err := bootstrap(commandContext(cmd), opts)
	if err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}
	current = s
	return s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
