package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/routemanager/internal/core"
	"github.com/edvin/routemanager/internal/graph"
	"github.com/edvin/routemanager/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(zerolog.Nop(), core.NewServices(graph.NewMemoryStore()))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestServer_Root(t *testing.T) {
	ts := newTestServer(t)

	status, body := do(t, ts, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Welcome to MPBGP EVPN Route Manager"}`, string(body))
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	status, _ := do(t, ts, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)

	status, body := do(t, ts, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"graph_store":"ok"}`, string(body))

	status, _ = do(t, ts, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_Scenario(t *testing.T) {
	ts := newTestServer(t)
	base := "/api/v1/vrfs"

	status, _ := do(t, ts, http.MethodPost, base+"/", `{"name":"vrf-1","namespace":"default","rd":"65000:1"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, ts, http.MethodPost, base+"/default/vrf-1/targets/import", `{"rt":"65000:100"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, ts, http.MethodPost, base+"/default/vrf-1/targets/export", `{"rt":"65000:200"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, ts, http.MethodPost, base+"/default/vrf-1/prefixes", `{"cidr":"10.1.0.0/24"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := do(t, ts, http.MethodGet, base+"/default/vrf-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"name": "vrf-1",
		"namespace": "default",
		"rd": "65000:1",
		"imports": ["65000:100"],
		"exports": ["65000:200"],
		"prefixes": ["10.1.0.0/24"]
	}`, string(body))

	status, body = do(t, ts, http.MethodDelete, base+"/default/vrf-1/targets/import/65000:100", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Import RT 65000:100 removed"}`, string(body))

	status, _ = do(t, ts, http.MethodDelete, base+"/default/vrf-1/prefixes", `{"cidr":"10.1.0.0/24"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, ts, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, status)
	var list []model.VRFRecord
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Imports)
	assert.Equal(t, []string{"65000:200"}, list[0].Exports)
	assert.Empty(t, list[0].Prefixes)

	status, _ = do(t, ts, http.MethodDelete, base+"/default/vrf-1", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, ts, http.MethodGet, base+"/default/vrf-1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_ErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	base := "/api/v1/vrfs"

	status, _ := do(t, ts, http.MethodPost, base, `{"name":"vrf-1","rd":"65000:1"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, ts, http.MethodPost, base, `{"name":"vrf-1","rd":"65000:2"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, ts, http.MethodPost, base, `{"name":"vrf-1","rd":"abc"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, _ = do(t, ts, http.MethodPost, base+"/default/missing/targets/import", `{"rt":"65000:100"}`)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, ts, http.MethodDelete, base+"/default/missing/targets/export/65000:100", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, ts, http.MethodPost, base+"/default/vrf-1/prefixes", `{"cidr":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestServer_PathValuesDecodedOnce(t *testing.T) {
	ts := newTestServer(t)
	base := "/api/v1/vrfs"

	status, _ := do(t, ts, http.MethodPost, base, `{"name":"a%41","rd":"65000:1"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := do(t, ts, http.MethodGet, base+"/default/a%2541", "")
	require.Equal(t, http.StatusOK, status, string(body))
	var rec model.VRFRecord
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, "a%41", rec.Name)

	status, _ = do(t, ts, http.MethodGet, base+"/default/aA", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, ts, http.MethodPost, base+"/default/a%2541/targets/import", `{"rt":"65000:100"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, ts, http.MethodDelete, base+"/default/a%2541/targets/import/65000%3A100", "")
	assert.Equal(t, http.StatusOK, status)

	_, body = do(t, ts, http.MethodGet, base+"/default/a%2541", "")
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Empty(t, rec.Imports)
}
