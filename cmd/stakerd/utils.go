// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/nftstaker/log"
	"github.com/vechain/nftstaker/logdb"
	"github.com/vechain/nftstaker/lvldb"
)

func initLogger(w io.Writer, lvl int, jsonLogs bool) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(lvl)
	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(w, &level)
	} else {
		useColor := false
		if f, ok := w.(*os.File); ok {
			useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
		}
		handler = log.NewTerminalHandlerWithLevel(w, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("flag value %d exceeds max int", val)
	}
	return int(val), nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".nftstaker")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

// openDatabases opens the state and event databases, in memory with --mem.
func openDatabases(ctx *cli.Context) (*lvldb.LevelDB, *logdb.LogDB, string, error) {
	if ctx.Bool(memFlag.Name) {
		mainDB, err := lvldb.NewMem()
		if err != nil {
			return nil, nil, "", errors.Wrap(err, "open main database")
		}
		logDB, err := logdb.NewMem()
		if err != nil {
			mainDB.Close()
			return nil, nil, "", errors.Wrap(err, "open log database")
		}
		return mainDB, logDB, "memory", nil
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, nil, "", err
	}

	cacheMB := ctx.Int(cacheFlag.Name)
	dir := filepath.Join(dataDir, "main.db")
	mainDB, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, nil, "", errors.WithMessagef(err, "open main database [%v]", dir)
	}

	dir = filepath.Join(dataDir, "logs.db")
	logDB, err := logdb.New(dir)
	if err != nil {
		mainDB.Close()
		return nil, nil, "", errors.WithMessagef(err, "open log database [%v]", dir)
	}
	return mainDB, logDB, dataDir, nil
}

func printStartupMessage(
	w io.Writer,
	cfg *config,
	dataDir string,
	apiURL string,
	metricsURL string,
	adminURL string,
) {
	fmt.Fprintf(w, `Starting %v
    Ledger      [ %v ]
    Registry    [ %v ]
    Admin       [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin API   [ %v ]
`,
		fullVersion(),
		cfg.LedgerAddress,
		cfg.RegistryAddress,
		cfg.Admin,
		dataDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

func orDisabled(url string) string {
	if url == "" {
		return "Disabled"
	}
	return url
}
