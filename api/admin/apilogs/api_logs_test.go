// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPILogsHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		startValue bool
		body       []byte
		status     int
		endValue   bool
	}{
		{"enable", http.MethodPost, false, []byte(`{"enabled":true}`), http.StatusOK, true},
		{"disable", http.MethodPost, true, []byte(`{"enabled":false}`), http.StatusOK, false},
		{"get", http.MethodGet, true, nil, http.StatusOK, true},
		{"bad body", http.MethodPost, true, []byte(`{"enabled":"yes"}`), http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := &atomic.Bool{}
			enabled.Store(tt.startValue)

			router := mux.NewRouter()
			New(enabled).Mount(router, "/admin/apilogs")

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, "/admin/apilogs", bytes.NewReader(tt.body)))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.endValue, enabled.Load())
			if tt.status == http.StatusOK {
				var status LogStatus
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
				assert.Equal(t, tt.endValue, status.Enabled)
			}
		})
	}
}
