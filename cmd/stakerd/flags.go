// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/nftstaker/api"
	"github.com/vechain/nftstaker/api/auth"
	"github.com/vechain/nftstaker/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger and event databases",
	}
	memFlag = cli.BoolFlag{
		Name:  "mem",
		Usage: "keep all state in memory, nothing is persisted",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "megabytes of ram allocated to the state database cache",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the yaml config file",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8679",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: api.DefaultLogsLimit,
		Usage: "limit the number of logs returned by /logs API",
	}
	apiRequestTTLFlag = cli.DurationFlag{
		Name:  "api-request-ttl",
		Value: auth.DefaultMaxTTL,
		Usage: "longest validity a signed request may claim",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with execution time(ms) above threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests resulting in 5xx status codes",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	// sign / keygen
	keyFileFlag = cli.StringFlag{
		Name:  "key-file",
		Usage: "file holding the hex encoded private key",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "file to write the new hex encoded private key to",
	}
	contractFlag = cli.StringFlag{
		Name:  "contract",
		Usage: "address of the ledger or the registry the request is meant for",
	}
	actionFlag = cli.StringFlag{
		Name:  "action",
		Usage: "action to sign, e.g. stake",
	}
	targetFlag = cli.StringFlag{
		Name:  "target",
		Usage: "target address argument",
	}
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "from address argument",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "to address argument",
	}
	tokenFlag = cli.StringFlag{
		Name:  "token",
		Usage: "token id argument",
	}
	approvedFlag = cli.BoolFlag{
		Name:  "approved",
		Usage: "approved argument of setApprovalForAll",
	}
	ttlFlag = cli.DurationFlag{
		Name:  "ttl",
		Value: time.Minute,
		Usage: "validity of the signed request",
	}
)
