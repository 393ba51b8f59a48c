package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProvider_UsesHostLabel(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequests.WithLabelValues("evm", "rpc.example:8545", "error"))
	ObserveProvider("evm", "http://rpc.example:8545/v1/key", errors.New("boom"))
	after := testutil.ToFloat64(ProviderRequests.WithLabelValues("evm", "rpc.example:8545", "error"))
	assert.Equal(t, before+1, after)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "api.trongrid.io", hostOf("https://api.trongrid.io"))
	assert.Equal(t, "not a url", hostOf("not a url"))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ObserveCheck("url", "SAFE", time.Now())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "scamscan_checks_total"))
}
