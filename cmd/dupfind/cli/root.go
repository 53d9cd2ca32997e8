package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "dupfind/internal/config/dupfind"
	"dupfind/internal/hashing"
	"dupfind/internal/orchestrator"
	"dupfind/internal/progressui"
	"dupfind/internal/ui"
	"dupfind/pkg/db/store"
	"dupfind/pkg/log"
)

func NewRootCommand(info VersionInfo) *cobra.Command {
	var (
		configPath string
		dbPath     string
		workers    int
		fullScan   bool
		dryRun     bool
		quiet      bool
		mode       string
	)

	mask := hashing.Size // default: Size on, everything else off

	cmd := &cobra.Command{
		Use:           "dupfind [path]",
		Short:         "Find duplicate files beneath a root directory",
		Long:          "dupfind builds and maintains a persistent file index to find duplicate files beneath a root directory, using a configurable mixture of size, modification time, creation time, file name, and content as the duplicate key.",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(configPath)
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), args[0], mask, dbPath, workers, fullScan, dryRun, quiet, mode)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored command output")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-json", false, "emit structured JSON log lines instead of plain text")

	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.no_color", cmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("log.json", cmd.PersistentFlags().Lookup("log-json"))

	defaults := config.GetDefault()
	cmd.Flags().Var(newBitToggle(&mask, hashing.Content), "content", "toggle the content bit: + include, - exclude")
	cmd.Flags().Var(newBitToggle(&mask, hashing.Size), "size", "toggle the size bit: + include, - exclude")
	cmd.Flags().Var(newBitToggle(&mask, hashing.Modified), "mtime", "toggle the modification-time bit: + include, - exclude")
	cmd.Flags().Var(newBitToggle(&mask, hashing.Created), "ctime", "toggle the creation-time bit: + include, - exclude")
	cmd.Flags().Var(newBitToggle(&mask, hashing.FileName), "name", "toggle the case-folded filename bit: + include, - exclude")
	cmd.Flags().IntVar(&workers, "workers", defaults.DefaultWorkers, "worker count")
	cmd.Flags().StringVar(&dbPath, "db", defaults.DefaultDB, "index path")
	cmd.Flags().BoolVar(&fullScan, "full-scan", false, "ignore cache; treat every path as new")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be deleted without touching disk")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress output")
	cmd.Flags().StringVar(&mode, "mode", "hash", "detector mode: hash (default) or size, a diagnostic mode that groups by size alone without a content fingerprint")

	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}

func runScan(ctx context.Context, root string, mask hashing.Components, dbPath string, workers int, fullScan, dryRun, quiet bool, mode string) error {
	var sizeOnly bool
	switch mode {
	case "hash", "":
		sizeOnly = false
	case "size":
		sizeOnly = true
	default:
		return fmt.Errorf("invalid --mode %q: must be \"hash\" or \"size\"", mode)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.NewLoggerService("dupfind", cfg.Log)

	runID := uuid.New()
	logger.Info("starting run", "run_id", runID.String(), "root", root, "mask", mask.String())

	idx, err := store.NewSQLiteStore(store.SQLiteConfig{Path: dbPath}, orchestrator.NowScanID())
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	bar := progressui.New(quiet)
	orch := orchestrator.New(logger)

	err = orch.Run(ctx, orchestrator.Options{
		Root:     root,
		Workers:  workers,
		Mask:     mask,
		FullScan: fullScan,
		SizeOnly: sizeOnly,
		DB:       idx,
		Sink:     bar,
		Consumer: &ui.Prompt{DryRun: dryRun},
	})
	bar.Finish()
	return err
}
