// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/jessevdk/go-flags"
)

type config struct {
	Job            string `long:"job" short:"j" env:"TXBUILDER_JOB" required:"true" description:"Path to YAML job file, '-' reads stdin"`
	Network        string `long:"network" env:"TXBUILDER_NETWORK" description:"Network name (mainnet, testnet, regtest), overrides the job file"`
	Incomplete     bool   `long:"incomplete" description:"Build transaction even when inputs lack signatures"`
	PSBT           bool   `long:"psbt" description:"Print base64 PSBT of the builder state instead of transaction hex"`
	Dump           bool   `long:"dump" description:"Dump built transaction and inputs info to stderr"`
	LogFile        string `long:"logfile" env:"TXBUILDER_LOGFILE" description:"Also write logs to this file"`
	LogLevel       string `long:"loglevel" env:"TXBUILDER_LOGLEVEL" default:"info" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
	MaxLogFileSize int    `long:"maxlogfilesize" default:"10" description:"Maximum log file size in MB"`
	MaxLogFiles    int    `long:"maxlogfiles" default:"3" description:"Maximum number of rolled log files"`
}

func main() {
	cfg := config{}
	if _, err := flags.Parse(&cfg); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	if err := run(&cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run builds transaction described by the job and prints it to stdout.
func run(cfg *config, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	logs, logger, err := initLogging(cfg, stderr)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, logs.Close())
	}()

	j, err := readJob(cfg.Job, stdin)
	if err != nil {
		return err
	}

	txb, err := j.builder(cfg.Network)
	if err != nil {
		return err
	}

	if cfg.Dump {
		spew.Fdump(stderr, txb.Inputs())
	}

	if cfg.PSBT {
		encoded, err := txb.PSBTBase64()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(stdout, encoded)
		return err
	}

	build := txb.Build
	if cfg.Incomplete {
		build = txb.BuildIncomplete
	}

	tx, err := build()
	if err != nil {
		return err
	}

	if cfg.Dump {
		spew.Fdump(stderr, tx)
	}
	logger.Infof("built transaction %s: %d inputs, %d outputs, %d vbytes", tx.ID(), len(tx.Inputs), len(tx.Outputs), tx.VirtualSize())

	_, err = fmt.Fprintln(stdout, tx.Hex())
	return err
}

func readJob(path string, stdin io.Reader) (*job, error) {
	if path == "-" {
		return parseJob(stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return parseJob(file)
}
