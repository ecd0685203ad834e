package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/initializ/edgard/config"
	"github.com/initializ/edgard/history"
	"github.com/initializ/edgard/installer"
	rt "github.com/initializ/edgard/runtime"
	"github.com/initializ/edgard/server"
)

var (
	serveListen       string
	serveShutdownWait time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the installation control panel",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
	serveCmd.Flags().DurationVar(&serveShutdownWait, "shutdown-wait", 30*time.Second, "how long to wait for a running installation on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	logger := rt.NewJSONLogger(os.Stderr, verbose)

	result := config.Validate(cfg)
	for _, w := range result.Warnings {
		logger.Warn("config", map[string]any{"warning": w})
	}
	if !result.IsValid() {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", e)
		}
		return fmt.Errorf("config validation failed: %d error(s)", len(result.Errors))
	}

	envVars, err := rt.LoadEnvFile(cfg.Installer.EnvFile)
	if err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}

	supCfg := installer.Config{
		ScriptPath: cfg.Installer.Script,
		Shell:      cfg.Installer.Shell,
		Env:        envVars,
		PausePoll:  cfg.PausePoll(),
		AccessURLs: cfg.AccessURLs,
		Adguard: installer.ExtraComponent{
			Command: cfg.Adguard.Command,
			Shell:   cfg.Adguard.Shell,
		},
		Logger: logger,
	}
	srvCfg := server.Config{
		Addr:    cfg.Listen,
		Version: appVersion,
		Defaults: installer.StartOptions{
			InstallPath:    cfg.Defaults.InstallPath,
			AutoUpdate:     cfg.Defaults.AutoUpdate,
			InstallAdguard: cfg.Defaults.InstallAdguard,
		},
		Logger: logger,
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer func() { _ = store.Close() }()
		supCfg.Recorder = store
		srvCfg.History = store
	}

	sup := installer.New(supCfg)
	srv := server.NewServer(srvCfg, sup)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		if !sup.Snapshot().Running {
			return nil
		}
		logger.Info("waiting for running installation", map[string]any{"timeout": serveShutdownWait.String()})
		waitCtx, cancel := context.WithTimeout(context.Background(), serveShutdownWait)
		defer cancel()
		if err := sup.Wait(waitCtx); err != nil {
			logger.Warn("installation still running at shutdown", map[string]any{"error": err.Error()})
		}
		return nil
	})
	return g.Wait()
}
