package request

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/routemanager/internal/validate"
)

func decodeBody(t *testing.T, body string, v any) error {
	t.Helper()
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)
	return Decode(r, v)
}

func requireFieldError(t *testing.T, err error, field string) *validate.Error {
	t.Helper()
	require.Error(t, err)
	ve, ok := err.(*validate.Error)
	require.True(t, ok, "expected *validate.Error, got %T", err)
	assert.Equal(t, field, ve.Field)
	return ve
}

func TestDecode_CreateVRF_Valid(t *testing.T) {
	var req CreateVRF
	err := decodeBody(t, `{"name":"vrf-1","namespace":"tenant-a","rd":"65000:1"}`, &req)
	require.NoError(t, err)
	assert.Equal(t, CreateVRF{Name: "vrf-1", Namespace: "tenant-a", RD: "65000:1"}, req)
}

func TestDecode_CreateVRF_NamespaceOptional(t *testing.T) {
	var req CreateVRF
	require.NoError(t, decodeBody(t, `{"name":"vrf-1","rd":"192.168.1.1:100"}`, &req))
	assert.Empty(t, req.Namespace)
}

func TestDecode_InvalidJSON(t *testing.T) {
	var req CreateVRF
	ve := requireFieldError(t, decodeBody(t, `{not valid json}`, &req), "body")
	assert.Contains(t, ve.Message, "invalid JSON")
}

func TestDecode_EmptyBody(t *testing.T) {
	var req Prefix
	ve := requireFieldError(t, decodeBody(t, ``, &req), "body")
	assert.Contains(t, ve.Message, "invalid JSON")
}

func TestDecode_MissingName(t *testing.T) {
	var req CreateVRF
	ve := requireFieldError(t, decodeBody(t, `{"rd":"65000:1"}`, &req), "name")
	assert.Equal(t, "field required", ve.Message)
}

func TestDecode_InvalidRD(t *testing.T) {
	for _, rd := range []string{"abc", "65000", "999.999.999.999:100"} {
		t.Run(rd, func(t *testing.T) {
			var req CreateVRF
			ve := requireFieldError(t, decodeBody(t, `{"name":"vrf-1","rd":"`+rd+`"}`, &req), "rd")
			assert.Contains(t, ve.Message, "Invalid RD format")
			assert.Equal(t, rd, ve.Value)
		})
	}
}

func TestDecode_InvalidRT(t *testing.T) {
	var req RouteTarget
	ve := requireFieldError(t, decodeBody(t, `{"rt":"abc"}`, &req), "rt")
	assert.Contains(t, ve.Message, "Invalid RT format")
}

func TestDecode_ValidRT(t *testing.T) {
	for _, rt := range []string{"65000:100", "192.168.1.1:100", "0:0"} {
		var req RouteTarget
		assert.NoError(t, decodeBody(t, `{"rt":"`+rt+`"}`, &req), rt)
	}
}

func TestDecode_Prefix(t *testing.T) {
	var req Prefix
	require.NoError(t, decodeBody(t, `{"cidr":"10.0.0.5/24"}`, &req))
	assert.Equal(t, "10.0.0.5/24", req.CIDR)

	ve := requireFieldError(t, decodeBody(t, `{"cidr":"not-an-ip"}`, &req), "cidr")
	assert.Equal(t, "Invalid CIDR format", ve.Message)

	requireFieldError(t, decodeBody(t, `{}`, &req), "cidr")
}
