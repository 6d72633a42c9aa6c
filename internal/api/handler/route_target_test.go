package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rtRequest(method, rt string) *http.Request {
	var body any
	if method == http.MethodPost {
		body = map[string]string{"rt": rt}
	}
	r := newRequest(method, "/vrfs/default/vrf-1/targets/import", body)
	return withChiURLParams(r, map[string]string{"namespace": "default", "name": "vrf-1", "rt": rt})
}

func TestRouteTargetAddImport(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	h := NewRouteTarget(svc)

	for range 2 {
		rec := httptest.NewRecorder()
		h.AddImport(rec, rtRequest(http.MethodPost, "65000:100"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Import RT 65000:100 added"}`, rec.Body.String())
	}

	vrf, err := svc.Get(context.Background(), "default", "vrf-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"65000:100"}, vrf.Imports)
}

func TestRouteTargetAddExport(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	h := NewRouteTarget(svc)
	rec := httptest.NewRecorder()

	h.AddExport(rec, rtRequest(http.MethodPost, "192.168.1.1:100"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Export RT 192.168.1.1:100 added"}`, rec.Body.String())
}

func TestRouteTargetAdd_Invalid(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	h := NewRouteTarget(svc)
	rec := httptest.NewRecorder()

	h.AddImport(rec, rtRequest(http.MethodPost, "65000"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "rt", decodeErrorResponse(rec)["field"])
}

func TestRouteTargetAdd_VRFNotFound(t *testing.T) {
	h := NewRouteTarget(newTestVRFService())
	rec := httptest.NewRecorder()

	h.AddExport(rec, rtRequest(http.MethodPost, "65000:100"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteTargetRemove(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	require.NoError(t, svc.AddImportRT(context.Background(), "default", "vrf-1", "65000:100"))
	h := NewRouteTarget(svc)

	rec := httptest.NewRecorder()
	h.RemoveImport(rec, rtRequest(http.MethodDelete, "65000:100"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Import RT 65000:100 removed"}`, rec.Body.String())

	// Removing again, or removing an unknown export, is still a success.
	rec = httptest.NewRecorder()
	h.RemoveImport(rec, rtRequest(http.MethodDelete, "65000:100"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.RemoveExport(rec, rtRequest(http.MethodDelete, "65000:999"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Export RT 65000:999 removed"}`, rec.Body.String())

	vrf, err := svc.Get(context.Background(), "default", "vrf-1")
	require.NoError(t, err)
	assert.Empty(t, vrf.Imports)
}

func TestRouteTargetRemove_VRFNotFound(t *testing.T) {
	h := NewRouteTarget(newTestVRFService())
	rec := httptest.NewRecorder()

	h.RemoveImport(rec, rtRequest(http.MethodDelete, "65000:100"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
