package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-therapist/internal/adapters/console"
	"github.com/mikey/inbox-therapist/internal/adapters/mailfile"
	"github.com/mikey/inbox-therapist/internal/core"
	"github.com/mikey/inbox-therapist/internal/dashboard"
	"github.com/mikey/inbox-therapist/internal/di"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags, os.Stdout)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	reader *mailfile.Reader,
	service *core.MoodService,
	llmClient core.LLMClient,
	printer *console.Printer,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Close any resources that need closing
	if closer, ok := llmClient.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close LLM client", zap.Error(err))
			}
		}()
	}

	emails, err := reader.ReadPaths(ctx, flags.Paths)
	if err != nil {
		return fmt.Errorf("failed to read emails: %w", err)
	}
	printer.PrintBatch(emails)

	startTime := time.Now()
	result, err := service.AnalyzeBatch(ctx, emails)
	if err != nil {
		return err
	}
	duration := time.Since(startTime)

	view := dashboard.Build(*result, dashboard.Options{Field: flags.Sort, Direction: flags.Direction})
	printer.PrintView(view, llmClient.ModelName(), duration)

	if flags.ExportFile != "" {
		data, err := dashboard.Export(*result)
		if err != nil {
			return fmt.Errorf("failed to export result: %w", err)
		}
		if err := os.WriteFile(flags.ExportFile, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", flags.ExportFile, err)
		}
		logger.Info("Exported analysis", zap.String("file", flags.ExportFile))
	}

	return nil
}
