// Package daemon wires together config, logging, and the reactor into the
// single long-lived process invoked by `drvsh run`. The shape — load
// config, start one long-running loop, wait on a signal or the loop's own
// exit — follows the teacher's internal/daemon/daemon.go.
package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ehrlich-b/drvsh/internal/config"
	"github.com/ehrlich-b/drvsh/internal/logger"
	"github.com/ehrlich-b/drvsh/internal/reactor"
)

// Run starts the shell against cfg.BaseDir, reading commands from stdin and
// writing output to stdout, until EOF, base-directory deletion, or a
// terminal signal.
func Run(cfg *config.Config) error {
	if cfg.BaseDir == "" {
		return fmt.Errorf("daemon: no base directory configured")
	}

	r, err := reactor.New(cfg.BaseDir, cfg.Suffix, cfg.ConnectTimeout, cfg.ReconnectBaseDelay, cfg.ReconnectMaxDelay, os.Stdin, os.Stdout, logger.Log)
	if err != nil {
		return fmt.Errorf("daemon: build reactor: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run()
	}()

	logger.Info("drvsh started", "base_dir", cfg.BaseDir, "suffix", cfg.Suffix)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	case err := <-errCh:
		return err
	}
}
