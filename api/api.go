// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/nftstaker/api/auth"
	"github.com/vechain/nftstaker/api/doc"
	"github.com/vechain/nftstaker/api/logs"
	"github.com/vechain/nftstaker/api/middleware"
	"github.com/vechain/nftstaker/api/staking"
	"github.com/vechain/nftstaker/api/subscriptions"
	"github.com/vechain/nftstaker/api/tokens"
	"github.com/vechain/nftstaker/log"
	"github.com/vechain/nftstaker/logdb"
	"github.com/vechain/nftstaker/registry"
	stakingLedger "github.com/vechain/nftstaker/staking"
)

var logger = log.WithContext("pkg", "api")

const DefaultLogsLimit = 1000

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	LogsLimit            uint64
	RequestMaxTTL        time.Duration
}

// New return api router
func New(
	ledger *stakingLedger.Ledger,
	registry *registry.Registry,
	logDB *logdb.LogDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	if opts.LogsLimit == 0 {
		opts.LogsLimit = DefaultLogsLimit
	}
	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/staker.yaml", http.StatusTemporaryRedirect)
		})

	// both components share the replay set, a request is bound to one of them by its signing hash
	verifier := auth.NewVerifier(opts.RequestMaxTTL)

	staking.New(ledger, verifier).
		Mount(router, "/staking")
	tokens.New(registry, verifier).
		Mount(router, "/tokens")
	if logDB != nil {
		logs.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	subs := subscriptions.New(origins, registry.Emitter(), ledger.Emitter())
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader, "x-staker-ver"}),
	)(handler)
	handler = versionHandler(handler)
	handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}

func versionHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-staker-ver", doc.Version())
		h.ServeHTTP(w, r)
	})
}
