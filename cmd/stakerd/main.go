// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// stakerd serves the NFT staking ledger and its token registry over HTTP.
package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/nftstaker/api"
	"github.com/vechain/nftstaker/api/doc"
	"github.com/vechain/nftstaker/cmd/stakerd/httpserver"
	"github.com/vechain/nftstaker/co"
	"github.com/vechain/nftstaker/log"
	"github.com/vechain/nftstaker/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "stakerd")

	defaultFlags = []cli.Flag{
		dataDirFlag,
		memFlag,
		cacheFlag,
		configFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiLogsLimitFlag,
		apiRequestTTLFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		enableAPILogsFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	if version == "" {
		version = doc.Version()
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakerd",
		Usage:     "NFT staking ledger service",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags:     defaultFlags,
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:  "sign",
				Usage: "sign a request for the actions API",
				Flags: []cli.Flag{
					keyFileFlag,
					contractFlag,
					actionFlag,
					targetFlag,
					fromFlag,
					toFlag,
					tokenFlag,
					approvedFlag,
					ttlFlag,
				},
				Action: signAction,
			},
			{
				Name:   "keygen",
				Usage:  "generate a private key",
				Flags:  []cli.Flag{outFlag},
				Action: keygenAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { logger.Info("exited") }()

	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(os.Stderr, lvl, ctx.Bool(jsonLogsFlag.Name))

	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "-"+configFlag.Name)
	}

	// metrics must be initialized before any meter is touched
	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.WithMessage(err, "start metrics server")
		}
		metricsURL = url
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	mainDB, logDB, dataDir, err := openDatabases(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	reg, ledger, err := newComponents(cfg, mainDB)
	if err != nil {
		return err
	}

	var goes co.Goes
	stopFollow := goes.Loop(logDB.Follow(reg.Emitter(), ledger.Emitter()))
	defer func() { logger.Info("waiting for event log..."); stopFollow() }()

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs)
		if err != nil {
			return errors.WithMessage(err, "start admin server")
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	apiHandler, apiCloser := api.New(ledger, reg, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		RequestMaxTTL:        ctx.Duration(apiRequestTTLFlag.Name),
	})
	defer func() { logger.Info("closing subscriptions..."); apiCloser() }()

	apiURL, srvCloser, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		apiHandler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(os.Stdout, cfg, dataDir, apiURL, metricsURL, adminURL)

	<-exitSignal.Done()
	return nil
}
