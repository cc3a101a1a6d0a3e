package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/creativedestruction/searchdash/internal/adapters/driving/tui"
	"github.com/creativedestruction/searchdash/internal/core/domain"
)

var tuiMode string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Search interactively",
	Long: `Open an interactive search screen.

Type a query and press enter. Tab cycles the query mode, left and right
move between pages, n starts a new search and q quits.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiMode, "mode", "m", "", "initial query mode: weighted, raw or fuzzy")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tui requires a terminal; use 'searchdash search' instead")
	}

	app, err := newTUIApp(cmd)
	if err != nil {
		return err
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// newTUIApp builds the app from the services, using the configured mode
// unless --mode is given.
func newTUIApp(cmd *cobra.Command) (*tui.App, error) {
	svc, err := services(cmd)
	if err != nil {
		return nil, err
	}

	mode := domain.QueryMode("")
	if tuiMode != "" {
		if mode, err = domain.ParseQueryMode(tuiMode); err != nil {
			return nil, err
		}
	} else if svc.Settings != nil {
		if settings, err := svc.Settings.Get(); err == nil {
			mode = settings.Search.Mode
		}
	}

	app, err := tui.NewApp(&tui.Ports{Search: svc.Search, Index: svc.Index, Mode: mode})
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app.WithContext(commandContext(cmd)), nil
}
