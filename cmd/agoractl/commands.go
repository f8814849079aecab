package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"agora/internal/config"
	graphRepo "agora/internal/domain/repositories/ideagraph"
	"agora/internal/repository"
	graphService "agora/internal/service/ideagraph"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// --- Global Command Variables ---
var (
	outputFormat string
	actingUser   string

	rootCmd = &cobra.Command{
		Use:   "agoractl",
		Short: "Administer agora discussions from the command line",
		Long: `agoractl talks to the configured store directly. It reads the same
environment variables as the server (STORE_DRIVER, DATABASE_URL, SQLITE_PATH, TYPOLOGY_FILE).`,
		SilenceUsage: true,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema for the configured store",
		RunE:  runMigrate,
	}

	discussionCmd = &cobra.Command{
		Use:   "discussion",
		Short: "Manage discussions",
	}
	discussionCreateCmd = &cobra.Command{
		Use:   "create [slug] [title]",
		Short: "Create a discussion together with its root idea",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiscussionCreate,
	}

	treeCmd = &cobra.Command{
		Use:   "tree [discussion-id]",
		Short: "Print the idea outline of a discussion",
		Args:  cobra.ExactArgs(1),
		RunE:  runTree,
	}
	checkCmd = &cobra.Command{
		Use:   "check [discussion-id]",
		Short: "Report orphaned and unreachable ideas",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	publishCmd = &cobra.Command{
		Use:   "publish [synthesis-id]",
		Short: "Freeze a draft synthesis into a published snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runPublish,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create a small demo discussion",
		RunE:  runSeed,
	}
)

var (
	openOpen    bool
	treeLocale  string
	migrateDrop bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&actingUser, "user", "agoractl", "user id recorded as creator of changes")

	migrateCmd.Flags().BoolVar(&migrateDrop, "drop", false, "drop all tables first (refused in prod)")
	discussionCreateCmd.Flags().BoolVar(&openOpen, "open", true, "allow anyone to contribute")
	discussionCmd.AddCommand(discussionCreateCmd)

	treeCmd.Flags().StringVar(&treeLocale, "locale", "", "preferred locale for titles")

	rootCmd.AddCommand(migrateCmd, discussionCmd, treeCmd, checkCmd, publishCmd, seedCmd)
}

// env bundles what every command needs from the configured store
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	repos    graphRepo.Repositories
	services *graphService.Services
	closers  []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

func openEnv(ctx context.Context, reset bool) (*env, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logCloser, err := config.NewLogger(cfg, "agoractl")
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	e := &env{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	types := config.DefaultTypeRegistry()
	if cfg.TypologyFile != "" {
		if types, err = config.LoadTypeRegistry(cfg.TypologyFile); err != nil {
			e.Close()
			return nil, err
		}
	}

	openStore := repository.Open
	if reset {
		openStore = repository.Reset
	}
	repos, storeCloser, err := openStore(ctx, cfg, logger)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.repos = repos
	e.closers = append(e.closers, storeCloser)

	services, err := graphService.SetupServices(repos, types, nil, logger)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.services = services
	return e, nil
}

// withEnv opens the store for the duration of a command
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, cmd.Name() == "migrate" && migrateDrop)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(ctx, e)
}

func printResult(w io.Writer, v any) error {
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
