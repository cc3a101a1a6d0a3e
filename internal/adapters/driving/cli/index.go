package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driving"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the search index",
	Long: `Create, inspect, rebuild and drop the RediSearch index.

The index covers the Tweet:, Spaces: and discord_message: key prefixes.
Dropping it keeps every document.`,
}

var indexEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create or rebuild the index if needed, then reindex documents",
	Args:  cobra.NoArgs,
	RunE:  runIndexEnsure,
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the live index definition",
	Args:  cobra.NoArgs,
	RunE:  runIndexInfo,
}

var indexReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-write every document so the index picks it up",
	Args:  cobra.NoArgs,
	RunE:  runIndexReindex,
}

var indexDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the index, keeping documents",
	Args:  cobra.NoArgs,
	RunE:  runIndexDrop,
}

func init() {
	indexCmd.AddCommand(indexEnsureCmd)
	indexCmd.AddCommand(indexInfoCmd)
	indexCmd.AddCommand(indexReindexCmd)
	indexCmd.AddCommand(indexDropCmd)
	rootCmd.AddCommand(indexCmd)
}

func indexService(cmd *cobra.Command) (driving.IndexService, error) {
	svc, err := services(cmd)
	if err != nil {
		return nil, err
	}
	if svc.Index == nil {
		return nil, errors.New("index service not configured")
	}
	return svc.Index, nil
}

func runIndexEnsure(cmd *cobra.Command, _ []string) error {
	idx, err := indexService(cmd)
	if err != nil {
		return err
	}

	status, err := idx.EnsureIndexReady(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	printStatus(cmd, status)
	return nil
}

func runIndexInfo(cmd *cobra.Command, _ []string) error {
	idx, err := indexService(cmd)
	if err != nil {
		return err
	}

	info, err := idx.Info(commandContext(cmd))
	if err != nil {
		return err
	}

	cmd.Printf("Index: %s\n", info.Name)
	cmd.Printf("Documents: %d\n", info.NumDocs)
	cmd.Println("Prefixes:")
	for _, p := range info.Prefixes {
		cmd.Printf("  %s\n", p)
	}
	cmd.Println("Fields:")
	for _, f := range info.Fields {
		cmd.Printf("  %-14s %s weight %g\n", f.Name, f.EffectiveType(), f.Weight)
	}
	if verbose && len(info.Raw) > 0 {
		cmd.Println("Properties:")
		keys := make([]string, 0, len(info.Raw))
		for k := range info.Raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %s: %s\n", k, info.Raw[k])
		}
	}
	return nil
}

func runIndexReindex(cmd *cobra.Command, _ []string) error {
	idx, err := indexService(cmd)
	if err != nil {
		return err
	}

	status, err := idx.Reindex(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	printStatus(cmd, status)
	return nil
}

func runIndexDrop(cmd *cobra.Command, _ []string) error {
	idx, err := indexService(cmd)
	if err != nil {
		return err
	}

	if err := idx.Drop(commandContext(cmd)); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	cmd.Println("Index dropped. Documents were kept.")
	return nil
}

func printStatus(cmd *cobra.Command, status domain.IndexStatus) {
	switch status.Outcome {
	case domain.IndexOutcomeCreated:
		cmd.Println("Index created.")
	case domain.IndexOutcomeRecreated:
		cmd.Println("Index recreated.")
	case domain.IndexOutcomeAlreadyExists:
		cmd.Println("Index already exists.")
	}
	cmd.Printf("Reindexed %d documents.\n", status.Reindexed)
	if status.ReindexFailed > 0 {
		cmd.Printf("Warning: %d documents could not be reindexed.\n", status.ReindexFailed)
	}
}
