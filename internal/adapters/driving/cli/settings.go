package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/creativedestruction/searchdash/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the Redis connection, index and search settings.

Settings are stored in config.toml. REDIS_ENDPOINT, REDIS_PORT and
REDIS_PASSWORD override the stored connection values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode [weighted|raw|fuzzy]",
	Short: "Set the default query mode",
	Long: `Set the query mode used when search is run without --mode.

Without an argument the available modes are listed and one is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsMode,
}

var settingsPolicyCmd = &cobra.Command{
	Use:   "policy [reuse|force-fresh]",
	Short: "Set the startup index policy",
	Long: `Set how an existing index is treated before searching.

  reuse       - keep an index that matches the schema, rebuild a stale one
  force-fresh - drop and rebuild the index every time`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsPolicy,
}

var settingsRedisCmd = &cobra.Command{
	Use:   "redis [host:port]",
	Short: "Set the Redis connection",
	Long: `Set the Redis address and password.

The password is read from the terminal without echo. Leave it empty to keep
the stored password.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsRedis,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsRedisCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsPolicyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := offlineServices(cmd)
	if err != nil {
		return err
	}
	if svc.Settings == nil {
		return errors.New("settings service not configured")
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Redis]")
	cmd.Printf("  Address: %s\n", settings.Redis.Addr)
	cmd.Printf("  Database: %d\n", settings.Redis.DB)
	if settings.Redis.Username != "" {
		cmd.Printf("  Username: %s\n", settings.Redis.Username)
	}
	if settings.Redis.Password != "" {
		cmd.Printf("  Password: %s\n", maskSecret(settings.Redis.Password))
	} else {
		cmd.Printf("  Password: (not set)\n")
	}
	cmd.Printf("  Command timeout: %s\n", settings.Redis.CommandTimeout)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Name: %s\n", settings.Index.Name)
	cmd.Printf("  Policy: %s\n", settings.Index.Policy)
	if settings.Index.ReindexRate > 0 {
		cmd.Printf("  Reindex rate: %g writes/s\n", settings.Index.ReindexRate)
	} else {
		cmd.Printf("  Reindex rate: unlimited\n")
	}
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Mode: %s\n", settings.Search.Mode.Description())
	cmd.Printf("  Page size: %d\n", settings.Search.PageSize)
	cmd.Printf("  Scores: %t\n", settings.Search.WithScores)
	cmd.Printf("  Strict totals: %t\n", settings.Search.StrictTotals)
	cmd.Println()

	cmd.Println("[Schema]")
	if len(settings.Schema.Fields) == 0 {
		cmd.Println("  built-in")
		return nil
	}
	for _, f := range settings.Schema.Fields {
		cmd.Printf("  %s (weight %g)\n", f.Name, f.Weight)
	}
	for _, p := range settings.Schema.Prefixes {
		cmd.Printf("  %s -> %s\n", p.Prefix, p.Shape)
	}
	return nil
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	svc, err := offlineServices(cmd)
	if err != nil {
		return err
	}
	if svc.Settings == nil {
		return errors.New("settings service not configured")
	}

	var selected domain.QueryMode
	if len(args) == 1 {
		if selected, err = domain.ParseQueryMode(args[0]); err != nil {
			return err
		}
	} else {
		cmd.Println("Select Query Mode")
		cmd.Println("-----------------")
		modes := domain.AllQueryModes()
		for i, mode := range modes {
			cmd.Printf("  %d. %s\n", i+1, mode.Description())
		}
		cmd.Print("\nEnter choice: ")
		idx := parseChoice(readLine(bufio.NewReader(cmd.InOrStdin())), len(modes), 0)
		if idx == 0 {
			return errors.New("invalid selection")
		}
		selected = modes[idx-1]
	}

	if err := svc.Settings.SetQueryMode(selected); err != nil {
		return fmt.Errorf("failed to set query mode: %w", err)
	}
	cmd.Printf("Query mode set to: %s\n", selected.Description())
	return nil
}

func runSettingsPolicy(cmd *cobra.Command, args []string) error {
	svc, err := offlineServices(cmd)
	if err != nil {
		return err
	}
	if svc.Settings == nil {
		return errors.New("settings service not configured")
	}

	policy := domain.IndexPolicy(strings.TrimSpace(args[0]))
	if err := svc.Settings.SetIndexPolicy(policy); err != nil {
		return fmt.Errorf("failed to set index policy: %w", err)
	}
	cmd.Printf("Index policy set to: %s\n", policy)
	return nil
}

func runSettingsRedis(cmd *cobra.Command, args []string) error {
	svc, err := offlineServices(cmd)
	if err != nil {
		return err
	}
	if svc.Settings == nil {
		return errors.New("settings service not configured")
	}

	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	addr := ""
	if len(args) == 1 {
		addr = strings.TrimSpace(args[0])
	} else {
		cmd.Printf("Address [%s]: ", settings.Redis.Addr)
		addr = readLine(reader)
	}
	if addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%w: redis address %q: %w", domain.ErrInvalidInput, addr, err)
		}
		settings.Redis.Addr = addr
	}

	cmd.Print("Password (empty to keep): ")
	if password := readPassword(cmd.InOrStdin(), reader); password != "" {
		settings.Redis.Password = password
	}
	cmd.Println()

	if err := svc.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Redis connection set to: %s\n", settings.Redis.Addr)
	return nil
}

// readPassword reads without echo when in is a terminal, else a plain line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:2] + "..." + secret[len(secret)-2:]
}
