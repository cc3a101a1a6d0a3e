package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a debug snapshot of the Redis database",
	Long: `Prints the number of keys in the database, a few sample keys, and one
random key with its hash.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	svc, err := services(cmd)
	if err != nil {
		return err
	}
	if svc.Stats == nil {
		return errors.New("stats service not configured")
	}

	stats, err := svc.Stats.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	cmd.Printf("Keys: %d\n", stats.Keys)
	if len(stats.SampleKeys) > 0 {
		cmd.Println("Sample keys:")
		for _, k := range stats.SampleKeys {
			cmd.Printf("  %s\n", k)
		}
	}
	if stats.RandomKey == "" {
		return nil
	}
	cmd.Printf("Random key: %s\n", stats.RandomKey)
	if len(stats.RandomDocument) > 0 {
		cmd.Print(formatFields(stats.RandomDocument))
	}
	return nil
}

// formatFields renders a hash as sorted key=value lines.
func formatFields(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "    %s = %s\n", name, fields[name])
	}
	return b.String()
}
