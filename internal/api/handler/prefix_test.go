package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefixRequest(method, namespace, name string, body any) *http.Request {
	return withVRF(newRequest(method, "/vrfs/"+namespace+"/"+name+"/prefixes", body), namespace, name)
}

func TestPrefixAdd(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	h := NewPrefix(svc)
	rec := httptest.NewRecorder()

	h.Add(rec, prefixRequest(http.MethodPost, "default", "vrf-1", map[string]string{"cidr": "10.1.0.0/24"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Prefix 10.1.0.0/24 added"}`, rec.Body.String())
}

func TestPrefixAdd_Duplicate(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	seedVRF(t, svc, "default", "vrf-2", "65000:2")
	require.NoError(t, svc.AddPrefix(context.Background(), "default", "vrf-1", "10.1.0.0/24"))
	h := NewPrefix(svc)

	rec := httptest.NewRecorder()
	h.Add(rec, prefixRequest(http.MethodPost, "default", "vrf-1", map[string]string{"cidr": "10.1.0.0/24"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Prefix already exists in this VRF", decodeErrorResponse(rec)["error"])

	rec = httptest.NewRecorder()
	h.Add(rec, prefixRequest(http.MethodPost, "default", "vrf-2", map[string]string{"cidr": "10.1.0.0/24"}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPrefixAdd_Invalid(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	h := NewPrefix(svc)
	rec := httptest.NewRecorder()

	h.Add(rec, prefixRequest(http.MethodPost, "default", "vrf-1", map[string]string{"cidr": "not-an-ip"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Equal(t, "cidr", body["field"])
	assert.Equal(t, "Invalid CIDR format", body["error"])
}

func TestPrefixAdd_VRFNotFound(t *testing.T) {
	h := NewPrefix(newTestVRFService())
	rec := httptest.NewRecorder()

	h.Add(rec, prefixRequest(http.MethodPost, "default", "nope", map[string]string{"cidr": "10.0.0.0/24"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrefixRemove(t *testing.T) {
	svc := newTestVRFService()
	seedVRF(t, svc, "default", "vrf-1", "65000:1")
	require.NoError(t, svc.AddPrefix(context.Background(), "default", "vrf-1", "10.1.0.0/24"))
	h := NewPrefix(svc)

	rec := httptest.NewRecorder()
	h.Remove(rec, prefixRequest(http.MethodDelete, "default", "vrf-1", map[string]string{"cidr": "10.1.0.0/24"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Prefix 10.1.0.0/24 removed"}`, rec.Body.String())

	// Absent prefix is a no-op.
	rec = httptest.NewRecorder()
	h.Remove(rec, prefixRequest(http.MethodDelete, "default", "vrf-1", map[string]string{"cidr": "10.1.0.0/24"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	vrf, err := svc.Get(context.Background(), "default", "vrf-1")
	require.NoError(t, err)
	assert.Empty(t, vrf.Prefixes)
}

func TestPrefixRemove_VRFNotFound(t *testing.T) {
	h := NewPrefix(newTestVRFService())
	rec := httptest.NewRecorder()

	h.Remove(rec, prefixRequest(http.MethodDelete, "default", "nope", map[string]string{"cidr": "10.0.0.0/24"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
