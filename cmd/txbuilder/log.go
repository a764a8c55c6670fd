// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/BoostyLabs/utxobuilder/bitcoin/txbuilder"
)

// logWriter writes log lines to stderr and to log file rotator when it is set.
type logWriter struct {
	stderr  io.Writer
	rotator *rotator.Rotator
}

func (w *logWriter) Write(p []byte) (int, error) {
	_, _ = w.stderr.Write(p)
	if w.rotator != nil {
		_, _ = w.rotator.Write(p)
	}

	return len(p), nil
}

// Close closes log file rotator if it has been created.
func (w *logWriter) Close() error {
	if w.rotator != nil {
		return w.rotator.Close()
	}

	return nil
}

// initLogging sets up logger of the builder package and returns writer to close on exit.
func initLogging(cfg *config, stderr io.Writer) (*logWriter, btclog.Logger, error) {
	w := &logWriter{stderr: stderr}
	if cfg.LogFile != "" {
		logDir, _ := filepath.Split(cfg.LogFile)
		if logDir != "" {
			if err := os.MkdirAll(logDir, 0700); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}

		r, err := rotator.New(cfg.LogFile, int64(cfg.MaxLogFileSize*1024), false, cfg.MaxLogFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create file rotator: %w", err)
		}
		w.rotator = r
	}

	level, ok := btclog.LevelFromString(cfg.LogLevel)
	if !ok {
		return nil, nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	backend := btclog.NewBackend(w)

	builderLog := backend.Logger(txbuilder.Subsystem)
	builderLog.SetLevel(level)
	txbuilder.UseLogger(builderLog)

	mainLog := backend.Logger("MAIN")
	mainLog.SetLevel(level)

	return w, mainLog, nil
}
