// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pborman/uuid"

	"github.com/vechain/nftstaker/log"
)

const RequestIDHeader = "X-Request-Id"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

// RequestLoggerMiddleware logs requests when enabled, plus the slow ones and, if
// log5xxErrors is set, the ones answered with a server error. Every response
// carries a request id that is also logged.
func RequestLoggerMiddleware(
	logger log.Logger,
	enabled *atomic.Bool,
	slowQueriesThreshold time.Duration,
	log5xxErrors bool,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewRandom().String()
			}
			w.Header().Set(RequestIDHeader, id)

			if !enabled.Load() && slowQueriesThreshold == 0 && !log5xxErrors {
				next.ServeHTTP(w, r)
				return
			}

			var bodyBytes []byte
			if r.Body != nil {
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "id", id, "err", err)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			slow := slowQueriesThreshold > 0 && duration > slowQueriesThreshold
			failed := log5xxErrors && sw.status >= http.StatusInternalServerError
			if enabled.Load() || slow || failed {
				logger.Info("API Request",
					"id", id,
					"durationMs", duration.Milliseconds(),
					"uri", r.URL.String(),
					"method", r.Method,
					"status", sw.status,
					"body", string(bodyBytes),
				)
			}
		})
	}
}
