// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/nftstaker/log"
)

// mockLogger records the context of Info and Warn calls.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger                     { return m }
func (m *mockLogger) New(_ ...any) log.Logger                      { return m }
func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any)         {}
func (m *mockLogger) Write(_ slog.Level, _ string, _ ...any)       {}
func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (m *mockLogger) Handler() slog.Handler                        { return nil }
func (m *mockLogger) Trace(_ string, _ ...any)                     {}
func (m *mockLogger) Debug(_ string, _ ...any)                     {}
func (m *mockLogger) Error(_ string, _ ...any)                     {}
func (m *mockLogger) Crit(_ string, _ ...any)                      {}

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) value(key string) any {
	for i := 0; i+1 < len(m.loggedData); i += 2 {
		if m.loggedData[i] == key {
			return m.loggedData[i+1]
		}
	}
	return nil
}

func TestRequestLoggerHandler(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) }
	slow := func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(15 * time.Millisecond)
		ok(w, r)
	}
	fail := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }
	reject := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) }

	tests := []struct {
		name          string
		handler       http.HandlerFunc
		enabled       bool
		slowThreshold time.Duration
		log5xxErrors  bool
		shouldLog     bool
		status        int
	}{
		{"enabled", ok, true, 0, false, true, http.StatusOK},
		{"disabled", ok, false, 0, false, false, http.StatusOK},
		{"slow query", slow, false, 10 * time.Millisecond, false, true, http.StatusOK},
		{"fast query under threshold", ok, false, time.Second, false, false, http.StatusOK},
		{"5xx logged", fail, false, 0, true, true, http.StatusInternalServerError},
		{"5xx not logged", fail, false, 0, false, false, http.StatusInternalServerError},
		{"4xx not logged", reject, false, 0, true, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			enabled := &atomic.Bool{}
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, enabled, tt.slowThreshold, tt.log5xxErrors)(tt.handler)
			req := httptest.NewRequest(http.MethodPost, "/staking/actions", strings.NewReader(`{"action":"stake"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Equal(t, rr.Header().Get(RequestIDHeader), logger.value("id"))
			assert.Equal(t, "/staking/actions", logger.value("uri"))
			assert.Equal(t, http.MethodPost, logger.value("method"))
			assert.Equal(t, tt.status, logger.value("status"))
			assert.Equal(t, `{"action":"stake"}`, logger.value("body"))
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	enabled := &atomic.Bool{}
	enabled.Store(true)
	logger := &mockLogger{}

	handler := RequestLoggerMiddleware(logger, enabled, 0, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write(body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("echo"))
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc", logger.value("id"))
	// the handler still sees the body
	assert.Equal(t, "echo", rr.Body.String())
}
