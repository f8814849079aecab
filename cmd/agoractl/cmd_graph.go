package main

import (
	"context"
	"fmt"

	graphSvc "agora/internal/domain/services/ideagraph"

	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, func(_ context.Context, e *env) error {
		e.logger.Info("schema ready", "store", e.cfg.StoreDriver, "prefix", e.cfg.TablePrefix)
		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", e.cfg.StoreDriver)
		return nil
	})
}

func runDiscussionCreate(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		discussion, root, err := e.services.Discussions.CreateDiscussion(ctx, actingUser, &graphSvc.CreateDiscussionRequest{
			Slug:  args[0],
			Title: args[1],
			Open:  openOpen,
		})
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), map[string]any{
			"discussion": discussion,
			"root":       root,
		})
	})
}

func runTree(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		outline, err := e.services.Analysis.Outline(ctx, args[0], treeLocale)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), outline)
		return nil
	})
}

func runCheck(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		report, err := e.services.Graph.CheckIntegrity(ctx, args[0])
		if err != nil {
			return err
		}
		if err := printResult(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.Healthy() {
			return fmt.Errorf("discussion %s has %d unreachable ideas", args[0], len(report.Unreachable))
		}
		return nil
	})
}

func runPublish(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		published, err := e.services.Syntheses.Publish(ctx, actingUser, args[0])
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), published)
	})
}
