package vetting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamscan-engine/classify"
	"scamscan-engine/ledger"
	"scamscan-engine/registration"
)

func TestCheckHandler(t *testing.T) {
	evm := &fakeConnector{snaps: []ledger.Snapshot{{Network: "ethereum", Status: ledger.StatusEmpty, ScamSignals: []string{}}}}
	e, _, _ := newTestEngine(registration.Info{}, page(0), fakeLedgers{classify.FamilyEVM: evm})
	h := NewHandler(e)

	t.Run("missing value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/check?type=auto", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing 'value' parameter"}`, rec.Body.String())
	})

	t.Run("blank value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/check?value=%20%20", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing 'value' parameter"}`, rec.Body.String())
	})

	t.Run("bad type", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/check?type=email&value=a@b.c", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unsupported type")
	})

	t.Run("address", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/check?type=auto&value="+zeroAddress, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, zeroAddress, body["input"])
		assert.Equal(t, "wallet", body["type"])
		assert.Equal(t, float64(10), body["riskScore"])
		assert.Equal(t, "SAFE", body["verdict"])
		assert.Equal(t, []any{}, body["warnings"])

		details := body["details"].(map[string]any)
		assert.Equal(t, "evm", details["chain"])
		onChain := details["onChain"].(map[string]any)
		assert.Equal(t, "wallet", onChain["type"])
		assert.NotContains(t, body, "whitelistedDomain")
	})
}

func TestPingHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil).Ping(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
