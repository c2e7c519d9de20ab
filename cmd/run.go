// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/internal/browser"
	"github.com/Oktaliem/ragproof/internal/journey"
	"github.com/Oktaliem/ragproof/internal/observability"
	"github.com/Oktaliem/ragproof/internal/ragapp"
	"github.com/Oktaliem/ragproof/internal/reporting"
)

var runCmd = &cobra.Command{
	Use:   "run [journey...]",
	Short: "Execute one or more journeys against the target deployment.",
	Long: `Executes the named journeys in order against the configured target.
Known journeys: smoke, index-lifecycle, qa, models, full.
With no arguments the full journey runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"full"}
		}
		return runJourneys(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runJourneys(parentCtx context.Context, names []string) error {
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := browser.NewManager(ctx, cfg.Browser, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 20*time.Second)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown reported errors.", zap.Error(err))
		}
	}()

	reporter, err := reporting.New(cfg.Report.Format, cfg.Report.OutputPath)
	if err != nil {
		return err
	}

	steps := ragapp.NewSteps(&cfg, logger)
	total, failed := 0, 0

	// Journeys run strictly one after another; each owns its sessions.
	for _, name := range names {
		j, err := steps.BuildJourney(name, logger)
		if err != nil {
			reporter.Close()
			return err
		}
		st := journey.NewState(manager, logger)
		report := j.Run(ctx, st)
		total++
		if !report.Succeeded {
			failed++
		}
		if err := reporter.Write(report); err != nil {
			logger.Warn("Failed to record journey report.", zap.Error(err))
		}
		if ctx.Err() != nil {
			logger.Warn("Run interrupted.", zap.Error(ctx.Err()))
			break
		}
	}

	if err := reporter.Close(); err != nil {
		logger.Warn("Failed to write run report.", zap.Error(err))
	} else if cfg.Report.OutputPath != "" {
		logger.Info("Run report written.", zap.String("path", cfg.Report.OutputPath))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d journeys failed", failed, total)
	}
	logger.Info("All journeys passed.", zap.Int("journeys", total))
	return nil
}
