package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ytget/yt-harvester/internal/config"
	"github.com/ytget/yt-harvester/internal/dedupe"
	"github.com/ytget/yt-harvester/internal/executor"
	"github.com/ytget/yt-harvester/internal/logging"
	"github.com/ytget/yt-harvester/internal/model"
	"github.com/ytget/yt-harvester/internal/platform"
	"github.com/ytget/yt-harvester/internal/scheduler"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "yt-harvester: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yml", "path to the YAML configuration file")
	inputPath := flag.String("input", "", "file with one URL per line (in addition to arguments)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("yt-harvester starting", zap.String("version", version))

	urls, err := collectURLs(*inputPath, flag.Args())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given: pass them as arguments or via -input")
	}

	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		downloadDir, err = platform.GetHomeDownloadsDir()
		if err != nil {
			return err
		}
	}
	if err := platform.CreateDirectoryIfNotExists(downloadDir); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expanded, expandErrs := platform.NewPlaylistExpander().ExpandAll(ctx, urls)
	for _, expandErr := range expandErrs {
		logger.Warn("playlist could not be expanded", zap.Error(expandErr))
	}

	store, err := dedupe.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	exec := executor.NewYTDLP(downloadDir, cfg.OutputTemplate,
		time.Duration(cfg.CookieMaxAgeDays)*24*time.Hour, logger)

	sched, err := scheduler.New(cfg, exec, store, exec, logger)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("interrupt received, finishing in-flight downloads")
		sched.Stop()
	}()

	if err := sched.Start(ctx, expanded); err != nil {
		return err
	}

	state := sched.Wait()
	report := sched.Report()

	if err := writeReport(cfg.ReportPath, report); err != nil {
		logger.Error("failed to write run report", zap.Error(err))
	} else {
		logger.Info("run report written", zap.String("path", cfg.ReportPath))
	}

	if state == model.RunStateExhausted {
		return fmt.Errorf("all accounts disabled with %d items remaining; supply fresh cookies and re-run",
			report.Totals.Remaining)
	}
	return nil
}

// collectURLs merges command-line arguments with the optional input file.
func collectURLs(inputPath string, args []string) ([]string, error) {
	urls := make([]string, 0, len(args))
	urls = append(urls, args...)

	if inputPath == "" {
		return urls, nil
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return urls, nil
}

// writeReport serializes the final run report to disk as JSON.
func writeReport(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
