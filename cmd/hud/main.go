package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/twilight-hud/internal/bootstrap"
	"github.com/yanqian/twilight-hud/internal/domain/media"
	"github.com/yanqian/twilight-hud/internal/domain/twilight"
	"github.com/yanqian/twilight-hud/internal/interface/tui"
)

var (
	flagConfig  string
	flagTUI     bool
	flagSubject string
	flagTTL     time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "hud",
	Short:         "Twilight dashboard daemon",
	Long:          "hud tracks civil and nautical twilight, plays background audio, schedules SMS and narrates stories behind a local control API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the control API and scheduler",
	RunE:  runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed API token",
	RunE:  runToken,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (overrides CONFIG_PATH)")
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().BoolVar(&flagTUI, "tui", false, "run the terminal HUD in the foreground")
	}
	tokenCmd.Flags().StringVar(&flagSubject, "subject", "hud", "token subject")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 0, "token lifetime (defaults to the configured TTL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func applyConfigFlag() {
	if flagConfig != "" {
		os.Setenv("CONFIG_PATH", flagConfig)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	applyConfigFlag()
	if flagTUI && os.Getenv("LOG_FILE") == "" {
		os.Setenv("LOG_FILE", filepath.Join(os.TempDir(), "twilight-hud.log"))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer cleanup()

	var ui bootstrap.TerminalUI
	if flagTUI {
		ui = tuiRunner
	}
	return app.Run(ctx, ui)
}

func runToken(cmd *cobra.Command, _ []string) error {
	applyConfigFlag()
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "warn")
	}
	svc, err := initializeAuth()
	if err != nil {
		return fmt.Errorf("wire auth: %w", err)
	}
	tok, err := svc.Issue(flagSubject, flagTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
	return nil
}

var tuiRunner bootstrap.TerminalUI = func(ctx context.Context, source *twilight.Service, player *media.Service) error {
	return tui.Run(ctx, source, player)
}
