// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/nftstaker/log"
)

func TestLogLevelHandler(t *testing.T) {
	tests := []struct {
		name             string
		method           string
		body             any
		expectedStatus   int
		expectedLevel    string
		expectedErrorMsg string
	}{
		{"set debug", http.MethodPost, map[string]string{"level": "debug"}, http.StatusOK, "DEBUG", ""},
		{"set trace", http.MethodPost, map[string]string{"level": "TRACE"}, http.StatusOK, "TRACE", ""},
		{"set crit", http.MethodPost, map[string]string{"level": "crit"}, http.StatusOK, "CRIT", ""},
		{"invalid level", http.MethodPost, map[string]string{"level": "loud"}, http.StatusBadRequest, "", "Invalid verbosity level"},
		{"unknown field", http.MethodPost, map[string]string{"verbosity": "debug"}, http.StatusBadRequest, "", `Invalid request body: json: unknown field "verbosity"`},
		{"get", http.MethodGet, nil, http.StatusOK, "INFO", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logLevel slog.LevelVar
			logLevel.Set(log.LevelInfo)

			var body []byte
			if tt.body != nil {
				var err error
				body, err = json.Marshal(tt.body)
				require.NoError(t, err)
			}
			req := httptest.NewRequest(tt.method, "/admin/loglevel", bytes.NewReader(body))

			rr := httptest.NewRecorder()
			router := mux.NewRouter()
			New(&logLevel).Mount(router, "/admin/loglevel")
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedLevel != "" {
				var response Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.Equal(t, tt.expectedLevel, response.CurrentLevel)
				assert.Equal(t, tt.expectedLevel, levelName(logLevel.Level()))
			} else {
				assert.Equal(t, tt.expectedErrorMsg, strings.Trim(rr.Body.String(), "\n"))
			}
		})
	}
}
