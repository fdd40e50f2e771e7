// Package main implements a countdown page server that counts down to a
// configured target instant and streams the remaining time to browsers.
//
// Usage:
//
//	zwfm-countdown [-config path/to/config.json] [-tui]
//
// If -config is not specified, the server looks for config.json in the same
// directory as the binary. With -tui the countdown is shown in the terminal
// instead of being served over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/oszuidwest/zwfm-countdown/internal/config"
	"github.com/oszuidwest/zwfm-countdown/internal/fragment"
	"github.com/oszuidwest/zwfm-countdown/internal/util"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.json next to binary)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	terminal := flag.Bool("tui", false, "Show the countdown in the terminal instead of serving it")
	flag.Parse()

	if *showVersion {
		fmt.Printf("zwfm-countdown %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		return
	}

	if err := run(*configPath, *terminal); err != nil {
		slog.Error("countdown failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, terminal bool) error {
	if configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			return util.WrapError("get executable path", err)
		}
		configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}
	slog.Info("using config file", "path", configPath)

	cfg := config.New(configPath)
	if err := cfg.Load(); err != nil {
		return err
	}
	target, err := cfg.Target()
	if err != nil {
		return err
	}

	if terminal {
		return runTUI(target)
	}

	loader, err := newFragmentLoader(cfg)
	if err != nil {
		return err
	}
	srv, err := NewServer(cfg, target, webRoot(), loader)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := srv.Start()
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	srv.Close()

	slog.Info("shutdown complete")
	return nil
}

// newFragmentLoader picks the fragment source: a remote base URL, a local
// directory, or the fragments embedded in the binary.
func newFragmentLoader(cfg *config.Config) (fragment.Loader, error) {
	snap := cfg.Snapshot()
	switch {
	case snap.FragmentsBaseURL != "":
		slog.Info("loading fragments over HTTP", "base_url", snap.FragmentsBaseURL)
		return fragment.NewHTTPLoader(snap.FragmentsBaseURL)
	case snap.FragmentsDir != "":
		slog.Info("loading fragments from directory", "dir", snap.FragmentsDir)
		return fragment.NewFSLoader(os.DirFS(snap.FragmentsDir)), nil
	default:
		return fragment.NewFSLoader(webRoot()), nil
	}
}
