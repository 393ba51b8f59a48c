package ledger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type rpcHandler func(params []json.RawMessage) (any, error)

// newRPCServer serves JSON-RPC 2.0. A handler error becomes a JSON-RPC
// error object with code 3, the shape nodes use for reverts.
func newRPCServer(t *testing.T, handlers map[string]rpcHandler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		h, ok := handlers[req.Method]
		if !ok {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		} else if res, err := h(req.Params); err != nil {
			resp["error"] = map[string]any{"code": 3, "message": err.Error()}
		} else {
			resp["result"] = res
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newDownServer answers every request with the given status.
func newDownServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func constant(v any) rpcHandler {
	return func([]json.RawMessage) (any, error) { return v, nil }
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
